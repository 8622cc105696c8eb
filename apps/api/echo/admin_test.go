package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/anwesha-dev/campusflow-ai/apps/api/echo"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/testutil"
)

func Test_adminApi_evaluateLateFee(t *testing.T) {
	path := "/v1/admin/late-fee/evaluate"

	t.Run("admin only", func(t *testing.T) {
		app := setup(t)
		runHTTPTests(t, app, []httpTest{
			{name: "Auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
			{
				name: "student", method: http.MethodPost, path: path, token: app.login(t, auth.RoleStudent),
				wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
			},
		})
	})

	tests := []struct {
		name        string
		evalOn      time.Time
		wantApplied bool
		wantLateFee int64
	}{
		{name: "before due date", evalOn: testutil.EvaluationDate},
		{name: "after due date", evalOn: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), wantApplied: true, wantLateFee: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testutil.NewConfig()
			conf.Fees.EvaluationDate = tt.evalOn
			app := setup(t, conf)
			admin := app.login(t, auth.RoleAdmin)

			req, rec := newAuthRequest(http.MethodPost, path, admin)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var res LateFeeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.wantApplied, res.Applied)
			assert.Equal(t, tt.wantLateFee, res.Summary.LateFee)

			// one-shot
			req, rec = newAuthRequest(http.MethodPost, path, admin)
			app.ServeHTTP(rec, req)
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.False(t, res.Applied)
			assert.Equal(t, tt.wantLateFee, res.Summary.LateFee)
		})
	}
}
