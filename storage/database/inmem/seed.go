package inmemdb

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

//go:embed seed.yaml
var defaultSeed []byte

type (
	// Seed is the mock data the app starts from.
	Seed struct {
		FeeState     seedFeeState      `yaml:"fee_state"`
		Installments []seedInstallment `yaml:"installments"`
		Transactions []seedTransaction `yaml:"transactions"`
		Users        []auth.Credential `yaml:"users"`

		dueDate string // override of fee_state.due_date
	}

	seedFeeState struct {
		TotalPayable int64  `yaml:"total_payable"`
		TotalPaid    int64  `yaml:"total_paid"`
		Scholarship  int64  `yaml:"scholarship"`
		LateFee      int64  `yaml:"late_fee"`
		DueDate      string `yaml:"due_date"`
	}

	seedInstallment struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		Amount  int64  `yaml:"amount"`
		Paid    int64  `yaml:"paid"`
		DueDate string `yaml:"due_date"`
	}

	seedTransaction struct {
		ID            string `yaml:"id"`
		Date          string `yaml:"date"`
		TransactionID string `yaml:"transaction_id"`
		Amount        int64  `yaml:"amount"`
		Method        string `yaml:"method"`
		Status        string `yaml:"status"`
	}

	Ledger struct {
		State        fee.FeeState
		Installments []fee.Installment
		Transactions []fee.Transaction
	}
)

// LoadSeed parses the seed at conf.Fees.SeedFile, or the bundled one when unset.
func LoadSeed(conf *core.Config) (*Seed, error) {
	data := defaultSeed
	if conf.Fees.SeedFile != "" {
		var err error
		if data, err = os.ReadFile(conf.Fees.SeedFile); err != nil {
			return nil, errors.Wrap(err, "reading seed file")
		}
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	if !conf.Fees.DueDate.IsZero() {
		seed.dueDate = conf.Fees.DueDate.Format(core.DateLayout)
	}
	return seed, nil
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, errors.Wrap(err, "parsing seed")
	}
	return &seed, nil
}

// Ledger converts the seed into fee records, checking their invariants.
func (s *Seed) Ledger() (Ledger, error) {
	var (
		ledger Ledger
		err    error
	)

	dueDate := s.FeeState.DueDate
	if s.dueDate != "" {
		dueDate = s.dueDate
	}
	ledger.State = fee.FeeState{
		TotalPayable: s.FeeState.TotalPayable,
		TotalPaid:    s.FeeState.TotalPaid,
		Scholarship:  s.FeeState.Scholarship,
		LateFee:      s.FeeState.LateFee,
	}
	if ledger.State.DueDate, err = fee.ParseDate(dueDate); err != nil {
		return Ledger{}, errors.Wrap(err, "fee_state.due_date")
	}

	seen := make(map[string]bool, len(s.Installments))
	for _, si := range s.Installments {
		if seen[si.ID] {
			return Ledger{}, fmt.Errorf("installment %q: duplicate id", si.ID)
		}
		seen[si.ID] = true
		if si.Paid < 0 || si.Paid > si.Amount {
			return Ledger{}, fmt.Errorf("installment %q: paid %d out of [0, %d]", si.ID, si.Paid, si.Amount)
		}
		inst := fee.Installment{ID: si.ID, Name: si.Name, Amount: si.Amount, Paid: si.Paid}
		if inst.DueDate, err = fee.ParseDate(si.DueDate); err != nil {
			return Ledger{}, errors.Wrapf(err, "installment %q due_date", si.ID)
		}
		ledger.Installments = append(ledger.Installments, inst)
	}

	for _, st := range s.Transactions {
		txn := fee.Transaction{
			ID:            st.ID,
			TransactionID: st.TransactionID,
			Amount:        st.Amount,
			Method:        st.Method,
			Status:        fee.Status(st.Status),
		}
		if txn.Date, err = fee.ParseDate(st.Date); err != nil {
			return Ledger{}, errors.Wrapf(err, "transaction %q date", st.ID)
		}
		ledger.Transactions = append(ledger.Transactions, txn)
	}
	return ledger, nil
}
