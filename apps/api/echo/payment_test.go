package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/anwesha-dev/campusflow-ai/apps/api/echo"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	"github.com/anwesha-dev/campusflow-ai/testutil"
)

func Test_paymentApi_flow(t *testing.T) {
	app := setup(t)
	student := app.login(t, auth.RoleStudent)
	admin := app.login(t, auth.RoleAdmin)
	conflict := func(err error) []byte { return marshallObj(t, httpErr{Error: err.Error()}) }

	tests := []httpTest{
		{name: "Auth required", path: "/v1/payments", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "idle", path: "/v1/payments", token: admin, wantData: []byte(`{"state":"idle"}`)},
		{
			name: "students only", method: http.MethodPost, path: "/v1/payments/select", token: admin,
			body:     marshallObj(t, SelectRequest{InstallmentID: "inst-3"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "method before select", method: http.MethodPut, path: "/v1/payments/method", token: student,
			body:     marshallObj(t, MethodRequest{Method: fee.MethodUPI}),
			wantCode: http.StatusConflict, wantData: conflict(fee.ErrNoSelection),
		},
		{
			name: "select nothing", method: http.MethodPost, path: "/v1/payments/select", token: student, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"installment_id": "this field is required"}),
		},
		{
			name: "select bad id", method: http.MethodPost, path: "/v1/payments/select", token: student,
			body:     marshallObj(t, SelectRequest{InstallmentID: "inst 3!"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"installment_id": "only lowercase letters, digits and dashes are allowed"}),
		},
		{
			name: "select paid", method: http.MethodPost, path: "/v1/payments/select", token: student,
			body:     marshallObj(t, SelectRequest{InstallmentID: "inst-1"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "installment is already paid"}),
		},
		{
			name: "select unknown", method: http.MethodPost, path: "/v1/payments/select", token: student,
			body:     marshallObj(t, SelectRequest{InstallmentID: "inst-7"}),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "installment not found"}),
		},
		{
			name: "select", method: http.MethodPost, path: "/v1/payments/select", token: student,
			body: marshallObj(t, SelectRequest{InstallmentID: "INST-3"}),
			wantData: marshallObj(t, fee.Flow{
				State:       fee.StateMethodSelection,
				Installment: &fee.Installment{ID: "inst-3", Name: "Mess Fee", Amount: 12000, DueDate: testutil.MustDate(t, "2026-02-28")},
			}),
		},
		{
			name: "submit without method", method: http.MethodPost, path: "/v1/payments/submit", token: student,
			wantCode: http.StatusConflict, wantData: conflict(fee.ErrMethodRequired),
		},
		{
			name: "bad method", method: http.MethodPut, path: "/v1/payments/method", token: student,
			body:     []byte(`{"method":"cash"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"method": "method must be one of [upi, card, netbanking, wallet]"}),
		},
		{name: "method", method: http.MethodPut, path: "/v1/payments/method", token: student, body: []byte(`{"method":"UPI"}`)},
		{
			name: "dismiss too early", method: http.MethodPost, path: "/v1/payments/dismiss", token: student,
			wantCode: http.StatusConflict, wantData: conflict(fee.ErrNothingToDismiss),
		},
	}
	runHTTPTests(t, app, tests)
	require.Equal(t, fee.MethodUPI, app.ctrl.State().Method)

	// submit and wait for the receipt
	req, rec := newAuthRequest(http.MethodPost, "/v1/payments/submit", student, []byte(`{"wait":true}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Receipt)
	assert.Equal(t, fee.StateSuccess, res.Flow.State)
	assert.Equal(t, int64(12000), res.Receipt.Transaction.Amount)
	assert.Equal(t, "UPI", res.Receipt.Transaction.Method)
	assert.Equal(t, int64(122000), res.Receipt.Summary.TotalPaid)
	assert.Equal(t, int64(5000), res.Receipt.Summary.RemainingBalance)
	assert.False(t, res.Receipt.Summary.IsFullyPaid)

	tests = []httpTest{
		{
			name: "select before dismiss", method: http.MethodPost, path: "/v1/payments/select", token: student,
			body:     marshallObj(t, SelectRequest{InstallmentID: "inst-4"}),
			wantCode: http.StatusConflict, wantData: conflict(fee.ErrDismissRequired),
		},
		{name: "dismiss", method: http.MethodPost, path: "/v1/payments/dismiss", token: student, wantData: []byte(`{"state":"idle"}`)},
		{
			name: "new transaction listed", path: "/v1/transactions/" + res.Receipt.Transaction.TransactionID, token: student,
			wantData: marshallObj(t, fee.NewReceiptView(res.Receipt.Transaction)),
		},
		{
			name: "mess fee paid", method: http.MethodPost, path: "/v1/payments/select", token: student,
			body:     marshallObj(t, SelectRequest{InstallmentID: "inst-3"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "installment is already paid"}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_paymentApi_submitAsync(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Fees.ProcessingDelay = 200 * time.Millisecond
	app := setup(t, conf)
	student := app.login(t, auth.RoleStudent)

	for _, step := range []struct {
		method, path, body string
	}{
		{http.MethodPost, "/v1/payments/select", `{"installment_id":"inst-4"}`},
		{http.MethodPut, "/v1/payments/method", `{"method":"wallet"}`},
	} {
		req, rec := newAuthRequest(step.method, step.path, student, []byte(step.body))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{name: "submit", method: http.MethodPost, path: "/v1/payments/submit", token: student, wantCode: http.StatusAccepted},
		{
			name: "double submit", method: http.MethodPost, path: "/v1/payments/submit", token: student,
			wantCode: http.StatusConflict, wantData: marshallObj(t, httpErr{Error: fee.ErrFlowBusy.Error()}),
		},
		{
			name: "cancel while processing", method: http.MethodPost, path: "/v1/payments/cancel", token: student,
			wantCode: http.StatusConflict, wantData: marshallObj(t, httpErr{Error: fee.ErrFlowBusy.Error()}),
		},
	}
	runHTTPTests(t, app, tests)

	app.ctrl.Close()
	assert.Equal(t, fee.StateSuccess, app.ctrl.State().State)
	sum, err := app.svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(115000), sum.TotalPaid)
}

func Test_paymentApi_cancel(t *testing.T) {
	app := setup(t)
	student := app.login(t, auth.RoleStudent)

	tests := []httpTest{
		{name: "select", method: http.MethodPost, path: "/v1/payments/select", token: student, body: []byte(`{"installment_id":"inst-3"}`)},
		{name: "cancel", method: http.MethodPost, path: "/v1/payments/cancel", token: student, wantData: []byte(`{"state":"idle"}`)},
		{
			name: "cancel again", method: http.MethodPost, path: "/v1/payments/cancel", token: student,
			wantCode: http.StatusConflict, wantData: marshallObj(t, httpErr{Error: fee.ErrNoSelection.Error()}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_paymentApi_events(t *testing.T) {
	app := setup(t)
	student := app.login(t, auth.RoleStudent)
	srv := newTestServer(t, app)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/payments/events"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+student, nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial StreamMessage
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "initial_state", initial.Type)
	assert.Equal(t, fee.StateIdle, initial.Flow.State)

	_ = conn.SetReadDeadline(time.Time{})
	events := make(chan fee.Event, 64)
	go func() {
		defer close(events)
		for {
			var evt fee.Event
			if err := conn.ReadJSON(&evt); err != nil {
				return
			}
			select {
			case events <- evt:
			default:
			}
		}
	}()

	// the handler registers the client right after the initial message: re-select until it is
	assert.Eventually(t, func() bool {
		req, rec := newAuthRequest(http.MethodPost, "/v1/payments/select", student, []byte(`{"installment_id":"inst-3"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		select {
		case evt, ok := <-events:
			return ok && evt.Type == fee.EventPaymentState && evt.State == fee.StateMethodSelection && evt.InstallmentID == "inst-3"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}
