package fee_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	"github.com/anwesha-dev/campusflow-ai/testutil"
)

func TestService_Summary(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewFeeService(t, testutil.NewConfig())

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(127000), sum.TotalPayable)
	assert.Equal(t, int64(110000), sum.TotalPaid)
	assert.Equal(t, int64(0), sum.LateFee)
	assert.Equal(t, int64(17000), sum.RemainingBalance)
	assert.False(t, sum.IsFullyPaid)
	assert.False(t, sum.IsOverdue)
	assert.Equal(t, 8, sum.DaysLeft)
	assert.InDelta(t, 86.61, sum.ProgressPercentage, 0.01)
}

func TestService_LateFee(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()
	conf.Fees.EvaluationDate = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, repo := testutil.NewFeeService(t, conf)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), sum.LateFee)
	assert.Equal(t, int64(17500), sum.RemainingBalance)
	assert.True(t, sum.IsOverdue)
	assert.Equal(t, 0, sum.DaysLeft)

	// applied once only
	applied, err := svc.EvaluateLateFee(ctx)
	require.NoError(t, err)
	assert.False(t, applied)
	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(17500), sum.RemainingBalance)

	st, err := repo.FeeState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), st.LateFee)
}

func TestService_NoLateFeeOnDueDate(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()
	conf.Fees.EvaluationDate = time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	svc, _ := testutil.NewFeeService(t, conf)

	applied, err := svc.EvaluateLateFee(ctx)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestService_DueDateOverride(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()
	conf.Fees.DueDate = time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
	svc, _ := testutil.NewFeeService(t, conf)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-15", sum.DueDate.String())
	assert.True(t, sum.IsOverdue)
	assert.Equal(t, int64(500), sum.LateFee)
}

func TestService_Today(t *testing.T) {
	conf := testutil.NewConfig()
	conf.Fees.EvaluationDate = time.Time{}
	svc, _ := testutil.NewFeeService(t, conf)

	y, m, d := time.Now().UTC().Date()
	assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), svc.Today())
}

func TestService_Installments(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewFeeService(t, testutil.NewConfig())

	insts, err := svc.Installments(ctx)
	require.NoError(t, err)
	require.Len(t, insts, 4)
	var names []string
	for _, inst := range insts {
		names = append(names, inst.Name)
	}
	assert.Equal(t, []string{"Semester 1 Tuition", "Hostel Fee", "Mess Fee", "Security Deposit"}, names)

	inst, err := svc.Installment(ctx, " INST-4 ")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), inst.Outstanding())

	_, err = svc.Installment(ctx, "inst-5")
	assert.Equal(t, fee.ErrInstallmentNotFound, err)
}

func TestService_Transactions(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewFeeService(t, testutil.NewConfig())

	txns, err := svc.Transactions(ctx, fee.TransactionFilter{Status: "all", SortBy: "amount"})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(75000), txns[0].Amount)

	_, err = svc.Transactions(ctx, fee.TransactionFilter{Status: "lost"})
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)

	txn, err := svc.Transaction(ctx, "TXN20260210001")
	require.NoError(t, err)
	assert.Equal(t, "txn-2", txn.ID)

	_, err = svc.Transaction(ctx, "TXN00000000000")
	assert.Equal(t, fee.ErrTransactionNotFound, err)
}

func TestLateFeeScheduler(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()
	conf.Fees.EvaluationDate = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	svc, repo := testutil.NewFeeService(t, conf)

	sched, err := fee.NewLateFeeScheduler(svc, conf, testutil.NopLogger{})
	require.NoError(t, err)
	sched.Start()
	<-sched.Stop().Done()

	st, err := repo.FeeState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), st.LateFee)

	conf.Fees.LateFeeSchedule = "every now and then"
	_, err = fee.NewLateFeeScheduler(svc, conf, testutil.NopLogger{})
	assert.Error(t, err)
}
