package fee

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/anwesha-dev/campusflow-ai/core"
)

// Date is a calendar day (UTC), serialized as "2006-01-02".
type Date struct {
	time.Time
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(core.DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Installment is one payable line item of the total fee obligation.
type Installment struct {
	ID      string
	Name    string
	Amount  int64 // payable, fixed
	Paid    int64 // paid to date
	DueDate Date
}

func (inst Installment) IsPaid() bool { return inst.Paid >= inst.Amount }

func (inst Installment) Outstanding() int64 { return inst.Amount - inst.Paid }

func (inst Installment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Amount      int64  `json:"amount"`
		Paid        int64  `json:"paid"`
		Outstanding int64  `json:"outstanding"`
		DueDate     Date   `json:"due_date"`
		IsPaid      bool   `json:"is_paid"`
	}{inst.ID, inst.Name, inst.Amount, inst.Paid, inst.Outstanding(), inst.DueDate, inst.IsPaid()})
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var Statuses = []Status{StatusPending, StatusCompleted, StatusFailed}

// Transaction is an entry of the append-only payment history.
type Transaction struct {
	ID            string `json:"id"`
	Date          Date   `json:"date"`
	TransactionID string `json:"transaction_id"` // display code
	Amount        int64  `json:"amount"`
	Method        string `json:"method"` // display label
	Status        Status `json:"status"`
}

type FeeState struct {
	TotalPayable int64 `json:"total_payable"`
	TotalPaid    int64 `json:"total_paid"`
	Scholarship  int64 `json:"scholarship"`
	LateFee      int64 `json:"late_fee"`
	DueDate      Date  `json:"due_date"`
}

func (st FeeState) RemainingBalance() int64 {
	return st.TotalPayable - st.TotalPaid + st.LateFee
}

// Summary is the derived view of a FeeState on a given day.
type Summary struct {
	FeeState
	RemainingBalance   int64   `json:"remaining_balance"` // may be negative once overpaid
	DisplayBalance     int64   `json:"display_balance"`   // never negative
	IsFullyPaid        bool    `json:"is_fully_paid"`
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysLeft           int     `json:"days_left"`
	IsOverdue          bool    `json:"is_overdue"`
	EvaluatedOn        Date    `json:"evaluated_on"`
}

func NewSummary(st FeeState, today time.Time) Summary {
	day := DateOf(today)
	remaining := st.RemainingBalance()
	sum := Summary{
		FeeState:           st,
		RemainingBalance:   remaining,
		DisplayBalance:     remaining,
		IsFullyPaid:        remaining <= 0,
		ProgressPercentage: progress(st.TotalPaid, st.TotalPayable),
		IsOverdue:          day.After(st.DueDate.Time),
		EvaluatedOn:        day,
	}
	if sum.DisplayBalance < 0 {
		sum.DisplayBalance = 0
	}
	if left := math.Ceil(st.DueDate.Sub(day.Time).Hours() / 24); left > 0 {
		sum.DaysLeft = int(left)
	}
	return sum
}

func progress(paid, payable int64) float64 {
	if payable <= 0 {
		return 0
	}
	pct := float64(paid) / float64(payable) * 100
	return math.Max(0, math.Min(100, pct))
}

type TimelineStep struct {
	Status    string `json:"status"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

var (
	invoiceGeneratedOn = Date{time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)}
	paymentInitiatedOn = Date{time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)}
)

// Timeline lists the billing milestones shown next to the balance.
func Timeline(sum Summary) []TimelineStep {
	completedOn := "Pending"
	if sum.IsFullyPaid {
		completedOn = sum.EvaluatedOn.String()
	}
	return []TimelineStep{
		{Status: "Invoice Generated", Date: invoiceGeneratedOn.String(), Completed: true},
		{Status: "Payment Initiated", Date: paymentInitiatedOn.String(), Completed: sum.TotalPaid > 0},
		{Status: "Payment Completed", Date: completedOn, Completed: sum.IsFullyPaid},
	}
}

type SortBy string

const (
	SortByDate   SortBy = "date"
	SortByAmount SortBy = "amount"
)

// TransactionFilter selects and orders the transaction history for display.
type TransactionFilter struct {
	Status Status `query:"status"` // "" or "all": any
	SortBy SortBy `query:"sort"`   // "" defaults to date
}

func (f *TransactionFilter) Clean() {
	f.Status = Status(core.CleanString(string(f.Status), true /* lower */))
	f.SortBy = SortBy(core.CleanString(string(f.SortBy), true /* lower */))
	if f.Status == "all" {
		f.Status = ""
	}
	if f.SortBy == "" {
		f.SortBy = SortByDate
	}
}

func (f TransactionFilter) Validate() error {
	var flds []core.FieldError
	if f.Status != "" && !validStatus(f.Status) {
		flds = append(flds, core.FieldError{Field: "status", Error: "status must be one of [all, pending, completed, failed]"})
	}
	if f.SortBy != "" && f.SortBy != SortByDate && f.SortBy != SortByAmount {
		flds = append(flds, core.FieldError{Field: "sort", Error: "sort must be one of [date, amount]"})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// Apply returns the matching transactions, newest (or largest) first. Ties keep log order.
func (f TransactionFilter) Apply(txns []Transaction) []Transaction {
	res := make([]Transaction, 0, len(txns))
	for _, txn := range txns {
		if f.Status == "" || txn.Status == f.Status {
			res = append(res, txn)
		}
	}
	if f.SortBy == SortByAmount {
		sort.SliceStable(res, func(i, j int) bool { return res[i].Amount > res[j].Amount })
	} else {
		sort.SliceStable(res, func(i, j int) bool { return res[i].Date.After(res[j].Date.Time) })
	}
	return res
}

func validStatus(s Status) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}
