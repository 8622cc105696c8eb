package inmemdb

import (
	"sync"

	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

type (
	DB struct {
		fee *feeTables
	}

	// feeTables hold the ledger of the single student the dashboard is about.
	// One mutex guards all three so that a payment is applied atomically.
	feeTables struct {
		state        fee.FeeState
		installments []fee.Installment // seed order
		transactions []fee.Transaction // newest first
		mutex        sync.RWMutex
	}
)

// Open returns a DB holding a copy of the seed ledger.
func Open(seed *Seed) (*DB, error) {
	ledger, err := seed.Ledger()
	if err != nil {
		return nil, err
	}
	db := &DB{
		fee: &feeTables{
			state:        ledger.State,
			installments: ledger.Installments,
			transactions: ledger.Transactions,
		},
	}
	return db, nil
}
