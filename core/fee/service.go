package fee

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core"
)

type Service struct {
	repo    Repository
	logger  core.Logger
	lateFee int64
	evalOn  time.Time // zero: wall clock
	nowFunc func() time.Time
}

func NewService(repo Repository, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		lateFee: conf.Fees.LateFee,
		evalOn:  conf.Fees.EvaluationDate,
		nowFunc: time.Now,
	}
}

// Today is the evaluation date: the configured one if any, the current UTC day otherwise.
func (svc *Service) Today() time.Time {
	if !svc.evalOn.IsZero() {
		return DateOf(svc.evalOn).Time
	}
	return DateOf(svc.nowFunc().UTC()).Time
}

// EvaluateLateFee applies the flat late fee once the evaluation date is past the due date.
func (svc *Service) EvaluateLateFee(ctx context.Context) (bool, error) {
	st, err := svc.repo.FeeState(ctx)
	if err != nil {
		return false, errors.Wrap(err, "getting fee state")
	}
	if !svc.Today().After(st.DueDate.Time) || st.LateFee != 0 {
		return false, nil
	}
	applied, err := svc.repo.ApplyLateFee(ctx, svc.lateFee)
	if err != nil {
		return false, errors.Wrap(err, "applying late fee")
	}
	if applied {
		svc.logger.Info(fmt.Sprintf("late fee of %d applied: due date %s passed", svc.lateFee, st.DueDate))
	}
	return applied, nil
}

// Summary evaluates the late fee and returns the current figures.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	if _, err := svc.EvaluateLateFee(ctx); err != nil {
		return Summary{}, err
	}
	st, err := svc.repo.FeeState(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "getting fee state")
	}
	return NewSummary(st, svc.Today()), nil
}

func (svc *Service) Timeline(ctx context.Context) ([]TimelineStep, error) {
	sum, err := svc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return Timeline(sum), nil
}

func (svc *Service) Installments(ctx context.Context) ([]Installment, error) {
	return svc.repo.QueryInstallments(ctx)
}

func (svc *Service) Installment(ctx context.Context, id string) (Installment, error) {
	return svc.repo.GetInstallment(ctx, core.CleanString(id, true /* lower */))
}

func (svc *Service) Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return svc.repo.QueryTransactions(ctx, filter)
}

func (svc *Service) Transaction(ctx context.Context, id string) (Transaction, error) {
	return svc.repo.GetTransaction(ctx, core.CleanString(id))
}
