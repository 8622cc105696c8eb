package fee

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core"
)

// FlowState is a state of the payment flow.
type FlowState string

const (
	StateIdle            FlowState = "idle"
	StateMethodSelection FlowState = "method_selection"
	StateProcessing      FlowState = "processing"
	StateSuccess         FlowState = "success"
)

const EventPaymentState = "payment_state"

type (
	// Payer is who gets the receipt of a submitted payment.
	Payer struct {
		Name  string
		Email string
	}

	Receipt struct {
		Transaction Transaction `json:"transaction"`
		Installment Installment `json:"installment"`
		Summary     Summary     `json:"summary"`
	}

	// Flow is a snapshot of the Controller.
	Flow struct {
		State       FlowState    `json:"state"`
		Installment *Installment `json:"installment,omitempty"`
		Method      Method       `json:"method,omitempty"`
		Receipt     *Receipt     `json:"receipt,omitempty"`
	}

	Event struct {
		Type          string    `json:"type"`
		State         FlowState `json:"state"`
		InstallmentID string    `json:"installment_id,omitempty"`
		TransactionID string    `json:"transaction_id,omitempty"`
		Seq           uint64    `json:"seq"` // 1, 2, ... in transition order
		Timestamp     time.Time `json:"timestamp"`
	}

	// Notifier receives every state transition of the flow.
	// Notify is called with the Controller locked: it must not block or call back into it.
	Notifier interface {
		Notify(evt Event)
	}

	ControllerDeps struct {
		Conf     *core.Config
		Logger   core.Logger
		Notifier Notifier          // optional
		Mailer   core.EmailService // optional
	}
)

// Controller drives the only mutations of installments, transactions and the total paid:
// idle -> method_selection -> processing -> success -> idle.
type Controller struct {
	svc      *Service
	conf     *core.Config
	logger   core.Logger
	notifier Notifier
	mailer   core.EmailService
	delay    time.Duration
	intn     func(n int) int // mockable
	wg       sync.WaitGroup

	mu          sync.Mutex
	seq         uint64
	state       FlowState
	installment *Installment
	method      Method
	receipt     *Receipt
}

func NewController(svc *Service, deps ControllerDeps) *Controller {
	return &Controller{
		svc:      svc,
		conf:     deps.Conf,
		logger:   deps.Logger,
		notifier: deps.Notifier,
		mailer:   deps.Mailer,
		delay:    deps.Conf.Fees.ProcessingDelay,
		intn:     rand.Intn,
		state:    StateIdle,
	}
}

func (c *Controller) State() Flow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Select targets an unpaid installment and clears any chosen method.
func (c *Controller) Select(ctx context.Context, installmentID string) (Flow, error) {
	inst, err := c.svc.Installment(ctx, installmentID)
	if err != nil {
		return Flow{}, err
	}
	if inst.IsPaid() {
		return Flow{}, ErrInstallmentSettled
	}

	c.mu.Lock()
	switch c.state {
	case StateProcessing:
		c.mu.Unlock()
		return Flow{}, ErrFlowBusy
	case StateSuccess:
		c.mu.Unlock()
		return Flow{}, ErrDismissRequired
	}
	c.state = StateMethodSelection
	c.installment = &inst
	c.method = ""
	c.receipt = nil
	flow := c.snapshot()
	c.publish(flow)
	c.mu.Unlock()

	return flow, nil
}

func (c *Controller) ChooseMethod(method Method) (Flow, error) {
	if !method.Valid() {
		return Flow{}, ErrInvalidMethod
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkSelecting(); err != nil {
		return Flow{}, err
	}
	c.method = method
	return c.snapshot(), nil
}

// Cancel abandons the selection. Processing payments cannot be cancelled.
func (c *Controller) Cancel() (Flow, error) {
	c.mu.Lock()
	if err := c.checkSelecting(); err != nil {
		c.mu.Unlock()
		return Flow{}, err
	}
	c.reset()
	flow := c.snapshot()
	c.publish(flow)
	c.mu.Unlock()

	return flow, nil
}

// Submit starts processing the selected installment with the chosen method.
// The returned channel delivers the Receipt once the simulated payment settles.
func (c *Controller) Submit(ctx context.Context, payer Payer) (<-chan Receipt, error) {
	c.mu.Lock()
	if err := c.checkSelecting(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.method == "" {
		c.mu.Unlock()
		return nil, ErrMethodRequired
	}
	c.state = StateProcessing
	inst, method := *c.installment, c.method
	flow := c.snapshot()
	c.publish(flow)
	c.mu.Unlock()


	done := make(chan Receipt, 1)
	taskCtx := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)

		if c.delay > 0 {
			<-time.After(c.delay)
		}
		rcpt, err := c.complete(taskCtx, inst, method)
		if err != nil {
			c.logger.Error(fmt.Sprintf("completing payment of %s: %v", inst.ID, err), err)
			return
		}
		c.sendReceipt(payer, rcpt)
		done <- rcpt
	}()
	return done, nil
}

// Dismiss acknowledges a completed payment and returns the flow to idle.
func (c *Controller) Dismiss() (Flow, error) {
	c.mu.Lock()
	switch c.state {
	case StateProcessing:
		c.mu.Unlock()
		return Flow{}, ErrFlowBusy
	case StateSuccess:
	default:
		c.mu.Unlock()
		return Flow{}, ErrNothingToDismiss
	}
	c.reset()
	flow := c.snapshot()
	c.publish(flow)
	c.mu.Unlock()

	return flow, nil
}

// Close waits for an in-flight payment to settle.
func (c *Controller) Close() {
	c.wg.Wait()
}

func (c *Controller) complete(ctx context.Context, inst Installment, method Method) (Receipt, error) {
	today := c.svc.Today()
	txn := Transaction{
		ID:            "txn-" + uuid.NewString(),
		Date:          DateOf(today),
		TransactionID: NewTransactionCode(today, c.intn),
		Amount:        inst.Outstanding(),
		Method:        method.Label(),
		Status:        StatusCompleted,
	}

	settled, st, err := c.svc.repo.ApplyPayment(ctx, Payment{InstallmentID: inst.ID, Transaction: txn})
	if err != nil {
		// nothing was applied: let the payer try again
		c.mu.Lock()
		c.state = StateMethodSelection
		flow := c.snapshot()
		c.publish(flow)
		c.mu.Unlock()
		return Receipt{}, errors.Wrap(err, "applying payment")
	}
	rcpt := Receipt{Transaction: txn, Installment: settled, Summary: NewSummary(st, today)}

	c.mu.Lock()
	c.state = StateSuccess
	c.receipt = &rcpt
	flow := c.snapshot()
	c.publish(flow)
	c.mu.Unlock()

	c.logger.Info(fmt.Sprintf("payment %s of %d for %s completed via %s", txn.TransactionID, txn.Amount, inst.ID, txn.Method))
	return rcpt, nil
}

func (c *Controller) checkSelecting() error {
	switch c.state {
	case StateMethodSelection:
		return nil
	case StateProcessing:
		return ErrFlowBusy
	case StateSuccess:
		return ErrDismissRequired
	default:
		return ErrNoSelection
	}
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.installment = nil
	c.method = ""
	c.receipt = nil
}

// snapshot must be called with c.mu held.
func (c *Controller) snapshot() Flow {
	flow := Flow{State: c.state, Method: c.method}
	if c.installment != nil {
		inst := *c.installment
		flow.Installment = &inst
	}
	if c.receipt != nil {
		rcpt := *c.receipt
		flow.Receipt = &rcpt
	}
	return flow
}

// publish must be called with c.mu held so subscribers see transitions in order.
func (c *Controller) publish(flow Flow) {
	if c.notifier == nil {
		return
	}
	c.seq++
	evt := Event{Type: EventPaymentState, State: flow.State, Seq: c.seq, Timestamp: time.Now().UTC()}
	if flow.Installment != nil {
		evt.InstallmentID = flow.Installment.ID
	}
	if flow.Receipt != nil {
		evt.TransactionID = flow.Receipt.Transaction.TransactionID
	}
	c.notifier.Notify(evt)
}

// NewTransactionCode builds a display code: "TXN", the day as YYYYMMDD and a random 3-digit suffix.
// Codes are not guaranteed unique; Transaction.ID is.
func NewTransactionCode(day time.Time, intn func(n int) int) string {
	return fmt.Sprintf("TXN%s%03d", day.Format("20060102"), intn(1000))
}
