// Package ticket holds the draft-submission controllers for the order ticket
// and the security-definition request form.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"traderterm/internal/oms"
	"traderterm/internal/rules"
)

// State is the submission state of a controller.
type State int

const (
	// StateEditing means the draft is open for user input.
	StateEditing State = iota
	// StateSubmitting means a create call is in flight; further submits are
	// rejected until it resolves.
	StateSubmitting
)

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission has not resolved yet.
var ErrSubmitInFlight = errors.New("submission already in flight")

// OrderService is the slice of the order-service client the controllers use.
type OrderService interface {
	CreateOrder(ctx context.Context, req oms.CreateOrderRequest) (*oms.Order, error)
	CreateSecurityDefinitionRequest(ctx context.Context, req oms.SecurityDefinitionRequest) error
}

// Recorder persists a local audit record of an accepted submission. A nil
// Recorder disables journaling.
type Recorder interface {
	RecordSubmission(ctx context.Context, kind, symbol string, payload any) error
}

// NewOrderDraft returns a draft with the ticket's default selections.
func NewOrderDraft(session string) oms.OrderDraft {
	return oms.OrderDraft{
		Side:         oms.SideBuy,
		OrdType:      oms.OrdTypeMarket,
		SecurityType: oms.SecurityTypeCommonStock,
		TIF:          oms.TIFDay,
		PutOrCall:    "1",
		Session:      session,
	}
}

// OrderTicket owns one order draft and its submission lifecycle. Disabled
// fields keep their last value; they are only excluded from validation and
// the outgoing request is built from whatever the draft holds.
type OrderTicket struct {
	mu       sync.Mutex
	draft    oms.OrderDraft
	ruleSet  rules.FieldRuleSet
	state    State
	svc      OrderService
	recorder Recorder
	log      *slog.Logger
}

// NewOrderTicket creates a controller with a fresh default draft for the
// given session.
func NewOrderTicket(svc OrderService, recorder Recorder, log *slog.Logger, session string) *OrderTicket {
	draft := NewOrderDraft(session)
	return &OrderTicket{
		draft:    draft,
		ruleSet:  rules.Rules(draft.SecurityType, draft.OrdType),
		svc:      svc,
		recorder: recorder,
		log:      log,
	}
}

// Draft returns a copy of the current draft.
func (t *OrderTicket) Draft() oms.OrderDraft {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// Rules returns the field-rule set for the draft's current selections.
func (t *OrderTicket) Rules() rules.FieldRuleSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ruleSet
}

// State returns the controller's submission state.
func (t *OrderTicket) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetDraft replaces the draft with edited values and recomputes the field
// rules from its instrument-type and order-type selection.
func (t *OrderTicket) SetDraft(draft oms.OrderDraft) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = draft
	t.ruleSet = rules.Rules(draft.SecurityType, draft.OrdType)
}

// Submit validates the draft under the current rule set and, if valid,
// issues exactly one create call. A ValidationError blocks the call and the
// draft is retained unchanged; a network failure also retains the draft. On
// success the draft is reset to a fresh one for the same session.
func (t *OrderTicket) Submit(ctx context.Context) (*oms.Order, error) {
	t.mu.Lock()
	if t.state == StateSubmitting {
		t.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	req, err := buildOrderRequest(t.draft, t.ruleSet)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}

	t.state = StateSubmitting
	session := t.draft.Session
	t.mu.Unlock()

	order, err := t.svc.CreateOrder(ctx, req)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateEditing
	if err != nil {
		t.log.Warn("order submission failed", "symbol", req.Symbol, "error", err)
		return nil, err
	}

	if t.recorder != nil {
		if rerr := t.recorder.RecordSubmission(ctx, "order", req.Symbol, req); rerr != nil {
			t.log.Warn("journaling order failed", "symbol", req.Symbol, "error", rerr)
		}
	}

	t.draft = NewOrderDraft(session)
	t.ruleSet = rules.Rules(t.draft.SecurityType, t.draft.OrdType)
	t.log.Info("order submitted", "id", order.ID, "symbol", order.Symbol)
	return order, nil
}

// buildOrderRequest validates the draft and produces the typed wire request.
func buildOrderRequest(d oms.OrderDraft, rs rules.FieldRuleSet) (oms.CreateOrderRequest, error) {
	var req oms.CreateOrderRequest

	if d.Symbol == "" {
		return req, &oms.ValidationError{Field: "symbol", Reason: "required"}
	}

	qty, err := decimal.NewFromString(d.Quantity)
	if err != nil {
		return req, &oms.ValidationError{Field: "quantity", Reason: "must be a number"}
	}
	if !qty.IsPositive() {
		return req, &oms.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	if rs.MaturityMonthYear.Required && d.MaturityMonthYear == "" {
		return req, &oms.ValidationError{Field: "maturity_month_year", Reason: "required"}
	}
	if rs.StrikePrice.Required && d.StrikePrice == "" {
		return req, &oms.ValidationError{Field: "strike_price", Reason: "required"}
	}
	if rs.Price.Required && d.Price == "" {
		return req, &oms.ValidationError{Field: "price", Reason: "required"}
	}
	if rs.StopPrice.Required && d.StopPrice == "" {
		return req, &oms.ValidationError{Field: "stop_price", Reason: "required"}
	}

	var maturityDay int
	if rs.MaturityDay.Enabled && d.MaturityDay != "" {
		maturityDay, err = strconv.Atoi(d.MaturityDay)
		if err != nil {
			return req, &oms.ValidationError{Field: "maturity_day", Reason: "must be an integer"}
		}
	}

	var putOrCall int
	if rs.PutOrCall.Enabled {
		if rs.PutOrCall.Required && d.PutOrCall == "" {
			return req, &oms.ValidationError{Field: "put_or_call", Reason: "required"}
		}
		if d.PutOrCall != "" {
			putOrCall, err = strconv.Atoi(d.PutOrCall)
			if err != nil {
				return req, &oms.ValidationError{Field: "put_or_call", Reason: "must be an integer"}
			}
		}
	}

	return oms.CreateOrderRequest{
		Side:              d.Side,
		Quantity:          json.Number(qty.String()),
		Symbol:            d.Symbol,
		SecurityType:      d.SecurityType,
		OrdType:           d.OrdType,
		Price:             d.Price,
		StopPrice:         d.StopPrice,
		Account:           d.Account,
		TIF:               d.TIF,
		Session:           d.Session,
		MaturityMonthYear: d.MaturityMonthYear,
		MaturityDay:       maturityDay,
		PutOrCall:         putOrCall,
		StrikePrice:       d.StrikePrice,
	}, nil
}
