package fee

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/anwesha-dev/campusflow-ai/core"
)

// LateFeeScheduler re-evaluates the late fee periodically, so that it is applied
// even when nobody looks at the balance.
type LateFeeScheduler struct {
	cron   *cron.Cron
	svc    *Service
	logger core.Logger
}

func NewLateFeeScheduler(svc *Service, conf *core.Config, logger core.Logger) (*LateFeeScheduler, error) {
	s := &LateFeeScheduler{cron: cron.New(), svc: svc, logger: logger}
	if _, err := s.cron.AddFunc(conf.Fees.LateFeeSchedule, s.run); err != nil {
		return nil, errors.Wrapf(err, "scheduling late fee evaluation %q", conf.Fees.LateFeeSchedule)
	}
	return s, nil
}

func (s *LateFeeScheduler) run() {
	if _, err := s.svc.EvaluateLateFee(context.Background()); err != nil {
		s.logger.Error(fmt.Sprintf("scheduled late fee evaluation: %v", err), err)
	}
}

func (s *LateFeeScheduler) Start() {
	s.run() // evaluate at startup too
	s.cron.Start()
}

// Stop stops scheduling; the returned context is done once a running evaluation finishes.
func (s *LateFeeScheduler) Stop() context.Context {
	return s.cron.Stop()
}
