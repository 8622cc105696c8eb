package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type feeApi struct {
	svc *fee.Service
}

func registerFeeAPI(g *echo.Group, deps Deps, jwt, session echo.MiddlewareFunc) {
	api := feeApi{svc: deps.FeeSvc}

	fg := g.Group("/fees", jwt, session)
	fg.GET("/summary", api.summary)
	fg.GET("/timeline", api.timeline)
	fg.GET("/methods", api.methods)
	fg.GET("/installments", api.installments)
	fg.GET("/installments/:id", api.installment)

	tg := g.Group("/transactions", jwt, session)
	tg.GET("", api.transactions)
	tg.GET("/export", api.export)
	tg.GET("/:id", api.transaction)
	tg.GET("/:id/qr", api.qrCode)
}

func (api *feeApi) summary(ctx echo.Context) error {
	sum, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *feeApi) timeline(ctx echo.Context) error {
	steps, err := api.svc.Timeline(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting timeline")
	}
	return ctx.JSON(http.StatusOK, steps)
}

func (api *feeApi) methods(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, fee.Methods)
}

func (api *feeApi) installments(ctx echo.Context) error {
	insts, err := api.svc.Installments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying installments")
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *feeApi) installment(ctx echo.Context) error {
	inst, err := api.svc.Installment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting installment")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *feeApi) queryTransactions(ctx echo.Context) ([]fee.Transaction, error) {
	filter := new(fee.TransactionFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, errors.Wrap(err, "binding to TransactionFilter")
	}
	txns, err := api.svc.Transactions(ctx.Request().Context(), *filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	return txns, nil
}

func (api *feeApi) transactions(ctx echo.Context) error {
	txns, err := api.queryTransactions(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, txns)
}

func (api *feeApi) transaction(ctx echo.Context) error {
	txn, err := api.svc.Transaction(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting transaction")
	}
	return ctx.JSON(http.StatusOK, fee.NewReceiptView(txn))
}

func (api *feeApi) qrCode(ctx echo.Context) error {
	txn, err := api.svc.Transaction(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting transaction")
	}
	png, err := fee.ReceiptQRCode(txn)
	if err != nil {
		return errors.Wrap(err, "rendering QR code")
	}
	return ctx.Blob(http.StatusOK, "image/png", png)
}

func (api *feeApi) export(ctx echo.Context) error {
	txns, err := api.queryTransactions(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = fee.ExportTransactions(&buf, txns); err != nil {
		return errors.Wrap(err, "exporting transactions")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.xlsx"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
