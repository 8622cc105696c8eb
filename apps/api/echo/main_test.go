package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/anwesha-dev/campusflow-ai/apps/api/echo"
	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	"github.com/anwesha-dev/campusflow-ai/services/email"
	"github.com/anwesha-dev/campusflow-ai/services/events"
	"github.com/anwesha-dev/campusflow-ai/storage/database/inmem"
	"github.com/anwesha-dev/campusflow-ai/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	conf     *core.Config
	sessions *auth.Sessions
	svc      *fee.Service
	ctrl     *fee.Controller
}

func setup(t *testing.T, conf ...*core.Config) *testApp {
	c := testutil.NewConfig()
	if len(conf) > 0 {
		c = conf[0]
	}
	logger := testutil.NopLogger{}

	// set up DB & repos
	db, seed := testutil.OpenDB(t, c)
	repo := inmemdb.NewFeeRepository(db)

	// set up services
	sessions := auth.NewSessions(testutil.NewDirectory(t, seed))
	svc := fee.NewService(repo, c, logger)
	hub := eventsvc.NewHub(logger)
	ctrl := fee.NewController(svc, fee.ControllerDeps{
		Conf:     c,
		Logger:   logger,
		Notifier: hub,
		Mailer:   emailsvc.NewConsoleServiceMock(c, logger),
	})
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// set up server
	srv := NewServer(Deps{
		Conf:           c,
		Logger:         logger,
		Sessions:       sessions,
		FeeSvc:         svc,
		Payments:       ctrl,
		Events:         hub,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() {
		ctrl.Close()
		_ = srv.Close()
	})
	return &testApp{Server: srv, conf: c, sessions: sessions, svc: svc, ctrl: ctrl}
}

// login opens a session for the seed user of role and returns its token.
func (app *testApp) login(t *testing.T, role auth.Role) string {
	creds := map[auth.Role][2]string{
		auth.RoleStudent: {"student@campus.edu", "student123"},
		auth.RoleAdmin:   {"admin@campus.edu", "admin123"},
	}[role]
	sess := app.sessions.Open()
	if !sess.Login(creds[0], creds[1], role) {
		t.Fatalf("login(%s) failed", role)
	}
	usr, _ := sess.User()
	token, err := GenerateToken(app.conf, NewClaims(app.conf, sess.ID(), usr))
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}
	return token
}

func newTestServer(t *testing.T, app *testApp) *httptest.Server {
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return srv
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
