package inmemdb

import (
	"context"

	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

type feeRepository struct {
	db *feeTables
}

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db.fee}
}

func (repo *feeRepository) FeeState(_ context.Context) (fee.FeeState, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.state, nil
}

func (repo *feeRepository) RecordPayment(_ context.Context, amount int64) (fee.FeeState, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.state.TotalPaid += amount
	return repo.db.state, nil
}

func (repo *feeRepository) ApplyLateFee(_ context.Context, amount int64) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if repo.db.state.LateFee != 0 {
		return false, nil
	}
	repo.db.state.LateFee = amount
	return true, nil
}

func (repo *feeRepository) QueryInstallments(_ context.Context) ([]fee.Installment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	insts := make([]fee.Installment, len(repo.db.installments))
	copy(insts, repo.db.installments)
	return insts, nil
}

func (repo *feeRepository) GetInstallment(_ context.Context, id string) (fee.Installment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	if idx := repo.installmentIndex(id); idx >= 0 {
		return repo.db.installments[idx], nil
	}
	return fee.Installment{}, fee.ErrInstallmentNotFound
}

func (repo *feeRepository) SettleInstallment(_ context.Context, id string) (fee.Installment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.settle(id)
}

func (repo *feeRepository) QueryTransactions(_ context.Context, filter fee.TransactionFilter) ([]fee.Transaction, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return filter.Apply(repo.db.transactions), nil
}

func (repo *feeRepository) GetTransaction(_ context.Context, id string) (fee.Transaction, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	for _, txn := range repo.db.transactions {
		if txn.ID == id || txn.TransactionID == id {
			return txn, nil
		}
	}
	return fee.Transaction{}, fee.ErrTransactionNotFound
}

func (repo *feeRepository) AppendTransaction(_ context.Context, txn fee.Transaction) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.prepend(txn)
	return nil
}

func (repo *feeRepository) ApplyPayment(_ context.Context, p fee.Payment) (fee.Installment, fee.FeeState, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	inst, err := repo.settle(p.InstallmentID)
	if err != nil {
		return fee.Installment{}, fee.FeeState{}, err
	}
	repo.prepend(p.Transaction)
	repo.db.state.TotalPaid += p.Transaction.Amount
	return inst, repo.db.state, nil
}

// helpers below must be called with the mutex held

func (repo *feeRepository) installmentIndex(id string) int {
	for i, inst := range repo.db.installments {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

func (repo *feeRepository) settle(id string) (fee.Installment, error) {
	idx := repo.installmentIndex(id)
	if idx < 0 {
		return fee.Installment{}, fee.ErrInstallmentNotFound
	}
	repo.db.installments[idx].Paid = repo.db.installments[idx].Amount
	return repo.db.installments[idx], nil
}

func (repo *feeRepository) prepend(txn fee.Transaction) {
	txns := make([]fee.Transaction, 0, len(repo.db.transactions)+1)
	txns = append(txns, txn)
	repo.db.transactions = append(txns, repo.db.transactions...)
}
