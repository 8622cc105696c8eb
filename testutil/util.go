package testutil

import (
	"testing"
	"time"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	"github.com/anwesha-dev/campusflow-ai/storage/database/inmem"
)

// EvaluationDate is the day tests are evaluated on, before the seed due date.
var EvaluationDate = time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func NewConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		Build:     "test",
		AppName:   "CampusFlow",
		SecretKey: "test-secret",
		LogLevel:  "error",
		Server: core.ServerConfig{
			Host:               "localhost",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Fees: core.FeesConfig{
			LateFee:         500,
			EvaluationDate:  EvaluationDate,
			LateFeeSchedule: "@daily",
		},
	}
}

// OpenDB returns a fresh ledger loaded from the bundled seed.
func OpenDB(t *testing.T, conf *core.Config) (*inmemdb.DB, *inmemdb.Seed) {
	t.Helper()
	seed, err := inmemdb.LoadSeed(conf)
	if err != nil {
		t.Fatalf("LoadSeed(): %v", err)
	}
	db, err := inmemdb.Open(seed)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	return db, seed
}

// NewFeeService wires a Service over a freshly seeded ledger.
func NewFeeService(t *testing.T, conf *core.Config) (*fee.Service, fee.Repository) {
	t.Helper()
	db, _ := OpenDB(t, conf)
	repo := inmemdb.NewFeeRepository(db)
	return fee.NewService(repo, conf, NopLogger{}), repo
}

func NewDirectory(t *testing.T, seed *inmemdb.Seed) *auth.Directory {
	t.Helper()
	dir, err := auth.NewDirectory(seed.Users...)
	if err != nil {
		t.Fatalf("NewDirectory(): %v", err)
	}
	return dir
}

func MustDate(t *testing.T, s string) fee.Date {
	t.Helper()
	d, err := fee.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}
