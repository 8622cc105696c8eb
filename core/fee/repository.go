package fee

import (
	"context"
	"errors"
)

var (
	// errors
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInstallmentSettled  = errors.New("installment is already paid")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrNoSelection         = errors.New("select an unpaid installment first")
	ErrMethodRequired      = errors.New("select a payment method first")
	ErrFlowBusy            = errors.New("a payment is being processed")
	ErrDismissRequired     = errors.New("dismiss the completed payment first")
	ErrNothingToDismiss    = errors.New("no completed payment to dismiss")
)

// Payment is a settlement applied by the payment flow in one step.
type Payment struct {
	InstallmentID string
	Transaction   Transaction
}

type Repository interface {
	FeeState(ctx context.Context) (FeeState, error)
	// RecordPayment increments the running total paid by amount.
	RecordPayment(ctx context.Context, amount int64) (FeeState, error)
	// ApplyLateFee sets the late fee iff none is set yet. It is never cleared.
	ApplyLateFee(ctx context.Context, amount int64) (applied bool, err error)

	// QueryInstallments returns installments in their seed order.
	QueryInstallments(ctx context.Context) ([]Installment, error)
	GetInstallment(ctx context.Context, id string) (Installment, error)
	// SettleInstallment marks the installment fully paid, leaving the others untouched.
	SettleInstallment(ctx context.Context, id string) (Installment, error)

	QueryTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	// GetTransaction finds a transaction by record id or by display code.
	GetTransaction(ctx context.Context, id string) (Transaction, error)
	// AppendTransaction puts txn at the front of the log.
	AppendTransaction(ctx context.Context, txn Transaction) error

	// ApplyPayment settles the installment, appends the transaction and records its amount atomically.
	ApplyPayment(ctx context.Context, p Payment) (Installment, FeeState, error)
}
