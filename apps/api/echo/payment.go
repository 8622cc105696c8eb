package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	"github.com/anwesha-dev/campusflow-ai/services/events"
)

type paymentApi struct {
	conf     *core.Config
	logger   core.Logger
	ctrl     *fee.Controller
	hub      *eventsvc.Hub
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, deps Deps, jwt, session echo.MiddlewareFunc) {
	api := paymentApi{
		conf:     deps.Conf,
		logger:   deps.Logger,
		ctrl:     deps.Payments,
		hub:      deps.Events,
		validate: deps.Validate,
	}

	// the events stream authenticates through the query string
	g.GET("/payments/events", api.events, queryTokenMiddleware, jwt, session)

	pg := g.Group("/payments", jwt, session)
	pg.GET("", api.state)

	// only students pay
	sg := pg.Group("", roleMiddleware(auth.RoleStudent))
	sg.POST("/select", api.selectInstallment)
	sg.PUT("/method", api.chooseMethod)
	sg.POST("/submit", api.submit)
	sg.POST("/cancel", api.cancel)
	sg.POST("/dismiss", api.dismiss)
}

func (api *paymentApi) state(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.ctrl.State())
}

func (api *paymentApi) selectInstallment(ctx echo.Context) error {
	var data SelectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	flow, err := api.ctrl.Select(ctx.Request().Context(), data.InstallmentID)
	if err != nil {
		return errors.Wrap(err, "selecting installment")
	}
	return ctx.JSON(http.StatusOK, flow)
}

func (api *paymentApi) chooseMethod(ctx echo.Context) error {
	var data MethodRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MethodRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	flow, err := api.ctrl.ChooseMethod(data.Method)
	if err != nil {
		return errors.Wrap(err, "choosing method")
	}
	return ctx.JSON(http.StatusOK, flow)
}

func (api *paymentApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	done, err := api.ctrl.Submit(reqCtx, fee.Payer{Name: usr.Name, Email: usr.Email})
	if err != nil {
		return errors.Wrap(err, "submitting payment")
	}
	if !data.Wait {
		return ctx.JSON(http.StatusAccepted, SubmitResponse{Flow: api.ctrl.State()})
	}

	select {
	case rcpt, ok := <-done:
		if !ok {
			return errReceiptNotReady
		}
		return ctx.JSON(http.StatusOK, SubmitResponse{Flow: api.ctrl.State(), Receipt: &rcpt})
	case <-reqCtx.Done():
		// the payment goes on; the client reads the outcome from the flow state
		return ctx.JSON(http.StatusAccepted, SubmitResponse{Flow: api.ctrl.State()})
	}
}

func (api *paymentApi) cancel(ctx echo.Context) error {
	flow, err := api.ctrl.Cancel()
	if err != nil {
		return errors.Wrap(err, "cancelling payment")
	}
	return ctx.JSON(http.StatusOK, flow)
}

func (api *paymentApi) dismiss(ctx echo.Context) error {
	flow, err := api.ctrl.Dismiss()
	if err != nil {
		return errors.Wrap(err, "dismissing payment")
	}
	return ctx.JSON(http.StatusOK, flow)
}
