package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

type adminApi struct {
	logger core.Logger
	svc    *fee.Service
}

func registerAdminAPI(g *echo.Group, deps Deps, jwt, session echo.MiddlewareFunc) {
	api := adminApi{logger: deps.Logger, svc: deps.FeeSvc}

	ag := g.Group("/admin", jwt, session, roleMiddleware(auth.RoleAdmin))
	ag.POST("/late-fee/evaluate", api.evaluateLateFee)
}

func (api *adminApi) evaluateLateFee(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	applied, err := api.svc.EvaluateLateFee(reqCtx)
	if err != nil {
		return errors.Wrap(err, "evaluating late fee")
	}
	sum, err := api.svc.Summary(reqCtx)
	if err != nil {
		return errors.Wrap(err, "getting summary")
	}
	if usr, err := getContextUser(ctx); err == nil {
		api.logger.Info(fmt.Sprintf("late fee evaluated by %s: applied=%t", usr.ID, applied))
	}
	return ctx.JSON(http.StatusOK, LateFeeResponse{Applied: applied, Summary: sum})
}
