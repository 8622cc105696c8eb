package echoapi_test

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	"github.com/anwesha-dev/campusflow-ai/testutil"
)

func Test_feeApi(t *testing.T) {
	app := setup(t)
	student := app.login(t, auth.RoleStudent)
	admin := app.login(t, auth.RoleAdmin)

	d := func(s string) fee.Date { return testutil.MustDate(t, s) }
	txn1 := fee.Transaction{ID: "txn-1", Date: d("2026-02-15"), TransactionID: "TXN20260215001", Amount: 75000, Method: "Net Banking", Status: fee.StatusCompleted}
	txn2 := fee.Transaction{ID: "txn-2", Date: d("2026-02-10"), TransactionID: "TXN20260210001", Amount: 35000, Method: "Credit Card", Status: fee.StatusCompleted}
	mess := fee.Installment{ID: "inst-3", Name: "Mess Fee", Amount: 12000, DueDate: d("2026-02-28")}

	summary := fee.NewSummary(fee.FeeState{TotalPayable: 127000, TotalPaid: 110000, DueDate: d("2026-02-28")}, testutil.EvaluationDate)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/fees/summary", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "summary", path: "/v1/fees/summary", token: student, wantData: marshallObj(t, summary)},
		{name: "summary (admin)", path: "/v1/fees/summary", token: admin, wantData: marshallObj(t, summary)},
		{name: "timeline", path: "/v1/fees/timeline", token: student, wantData: marshallObj(t, fee.Timeline(summary))},
		{name: "methods", path: "/v1/fees/methods", token: student, wantData: marshallObj(t, fee.Methods)},
		{name: "installment", path: "/v1/fees/installments/inst-3", token: student, wantData: marshallObj(t, mess)},
		{
			name: "installment (unknown)", path: "/v1/fees/installments/inst-9", token: student,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "installment not found"}),
		},
		{name: "transactions", path: "/v1/transactions", token: student, wantData: marshallObj(t, []fee.Transaction{txn1, txn2})},
		{name: "transactions (all)", path: "/v1/transactions?status=all&sort=amount", token: student, wantData: marshallObj(t, []fee.Transaction{txn1, txn2})},
		{name: "transactions (failed)", path: "/v1/transactions?status=failed", token: student, wantData: []byte(`[]`)},
		{
			name: "transactions (bad filter)", path: "/v1/transactions?status=lost&sort=method", token: student,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"status": "status must be one of [all, pending, completed, failed]",
				"sort":   "sort must be one of [date, amount]",
			}),
		},
		{name: "transaction by code", path: "/v1/transactions/TXN20260210001", token: student, wantData: marshallObj(t, fee.NewReceiptView(txn2))},
		{name: "transaction by id", path: "/v1/transactions/txn-1", token: student, wantData: marshallObj(t, fee.NewReceiptView(txn1))},
		{
			name: "transaction (unknown)", path: "/v1/transactions/TXN0", token: student,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "transaction not found"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("installments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/installments", student)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		insts, err := app.svc.Installments(req.Context())
		require.NoError(t, err)
		assert.JSONEq(t, string(marshallObj(t, insts)), rec.Body.String())
	})
}

func Test_feeApi_qrCode(t *testing.T) {
	app := setup(t)
	req, rec := newAuthRequest(http.MethodGet, "/v1/transactions/TXN20260215001/qr", app.login(t, auth.RoleStudent))
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func Test_feeApi_export(t *testing.T) {
	app := setup(t)
	req, rec := newAuthRequest(http.MethodGet, "/v1/transactions/export?sort=amount", app.login(t, auth.RoleAdmin))
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transactions.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "TXN20260215001", rows[1][1])
	assert.Equal(t, "TXN20260210001", rows[2][1])
}

func Test_feeApi_lateFee(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Fees.EvaluationDate = time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	app := setup(t, conf)
	student := app.login(t, auth.RoleStudent)

	req, rec := newAuthRequest(http.MethodGet, "/v1/fees/summary", student)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"late_fee":500`)
	assert.Contains(t, rec.Body.String(), `"remaining_balance":17500`)
	assert.Contains(t, rec.Body.String(), `"is_overdue":true`)
}
