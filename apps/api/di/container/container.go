package container

import (
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/anwesha-dev/campusflow-ai/apps/api/echo"
	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	emailsvc "github.com/anwesha-dev/campusflow-ai/services/email"
	eventsvc "github.com/anwesha-dev/campusflow-ai/services/events"
	logsvc "github.com/anwesha-dev/campusflow-ai/services/logger"
	inmemdb "github.com/anwesha-dev/campusflow-ai/storage/database/inmem"
)

type ServerParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	Sessions   *auth.Sessions
	FeeSvc     *fee.Service
	Payments   *fee.Controller
	Events     *eventsvc.Hub
	Validate   *validator.Validate
	Translator ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(conf), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config) (*inmemdb.DB, *inmemdb.Seed, error) {
	seed, err := inmemdb.LoadSeed(conf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading seed")
	}
	db, err := inmemdb.Open(seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening ledger")
	}
	return db, seed, nil
}

func newSessions(seed *inmemdb.Seed) (*auth.Sessions, error) {
	dir, err := auth.NewDirectory(seed.Users...)
	if err != nil {
		return nil, errors.Wrap(err, "loading accounts")
	}
	return auth.NewSessions(dir), nil
}

func newController(svc *fee.Service, conf *core.Config, logger core.Logger, hub *eventsvc.Hub, mailer core.EmailService) *fee.Controller {
	return fee.NewController(svc, fee.ControllerDeps{
		Conf:     conf,
		Logger:   logger,
		Notifier: hub,
		Mailer:   mailer,
	})
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.Deps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Sessions:   p.Sessions,
		FeeSvc:     p.FeeSvc,
		Payments:   p.Payments,
		Events:     p.Events,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDB))
	must(c.Provide(inmemdb.NewFeeRepository))
	must(c.Provide(newSessions))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(eventsvc.NewHub))
	must(c.Provide(fee.NewService))
	must(c.Provide(fee.NewLateFeeScheduler))
	must(c.Provide(newController))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
