package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"traderterm/internal/oms"
)

// fakeService records create calls and returns a scripted result.
type fakeService struct {
	createCalls  int
	secdefCalls  int
	lastOrderReq oms.CreateOrderRequest
	lastSecdef   oms.SecurityDefinitionRequest
	err          error
}

func (s *fakeService) CreateOrder(_ context.Context, req oms.CreateOrderRequest) (*oms.Order, error) {
	s.createCalls++
	s.lastOrderReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &oms.Order{ID: 1, Symbol: req.Symbol, Open: string(req.Quantity)}, nil
}

func (s *fakeService) CreateSecurityDefinitionRequest(_ context.Context, req oms.SecurityDefinitionRequest) error {
	s.secdefCalls++
	s.lastSecdef = req
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func validFutureDraft() oms.OrderDraft {
	return oms.OrderDraft{
		Side:              oms.SideBuy,
		Quantity:          "100",
		Symbol:            "GCZ6",
		SecurityType:      oms.SecurityTypeFuture,
		OrdType:           oms.OrdTypeStopLimit,
		Price:             "1200.50",
		StopPrice:         "1199",
		Account:           "ACCT1",
		TIF:               oms.TIFDay,
		Session:           "FIX.4.4:CLIENT->SERVER",
		MaturityMonthYear: "202612",
		MaturityDay:       "15",
	}
}

func TestSubmitRequiredFieldMissing(t *testing.T) {
	svc := &fakeService{}
	tk := NewOrderTicket(svc, nil, discardLogger(), "SESSION")

	draft := validFutureDraft()
	draft.MaturityMonthYear = ""
	tk.SetDraft(draft)

	_, err := tk.Submit(context.Background())
	var verr *oms.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}
	if verr.Field != "maturity_month_year" {
		t.Errorf("ValidationError.Field = %q, want %q", verr.Field, "maturity_month_year")
	}
	if svc.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", svc.createCalls)
	}
	if got := tk.Draft(); got != draft {
		t.Errorf("draft changed after validation failure: %+v", got)
	}
}

func TestSubmitQuantityMustBePositive(t *testing.T) {
	svc := &fakeService{}
	tk := NewOrderTicket(svc, nil, discardLogger(), "SESSION")

	for _, qty := range []string{"", "abc", "0", "-5"} {
		draft := validFutureDraft()
		draft.Quantity = qty
		tk.SetDraft(draft)

		_, err := tk.Submit(context.Background())
		var verr *oms.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Submit() with quantity %q: error = %v, want ValidationError", qty, err)
		}
		if verr.Field != "quantity" {
			t.Errorf("quantity %q: ValidationError.Field = %q, want %q", qty, verr.Field, "quantity")
		}
	}
	if svc.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", svc.createCalls)
	}
}

func TestSubmitDisabledFieldsNotValidated(t *testing.T) {
	svc := &fakeService{}
	tk := NewOrderTicket(svc, nil, discardLogger(), "SESSION")

	// Common stock + market order: maturity, put-or-call, strike, limit and
	// stop price are all disabled. Stale values in disabled fields must not
	// block submission.
	tk.SetDraft(oms.OrderDraft{
		Side:         oms.SideSell,
		Quantity:     "10",
		Symbol:       "IBM",
		SecurityType: oms.SecurityTypeCommonStock,
		OrdType:      oms.OrdTypeMarket,
		PutOrCall:    "not-a-number", // stale, disabled
		TIF:          oms.TIFGTC,
		Session:      "SESSION",
	})

	if _, err := tk.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v, want nil", err)
	}
	if svc.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", svc.createCalls)
	}
	if svc.lastOrderReq.PutOrCall != 0 {
		t.Errorf("PutOrCall = %d, want 0 for disabled field", svc.lastOrderReq.PutOrCall)
	}
}

func TestSubmitBuildsTypedRequest(t *testing.T) {
	svc := &fakeService{}
	tk := NewOrderTicket(svc, nil, discardLogger(), "SESSION")
	tk.SetDraft(validFutureDraft())

	if _, err := tk.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if svc.createCalls != 1 {
		t.Fatalf("create calls = %d, want 1", svc.createCalls)
	}

	req := svc.lastOrderReq
	if req.Quantity != json.Number("100") {
		t.Errorf("Quantity = %v, want 100", req.Quantity)
	}
	if req.MaturityDay != 15 {
		t.Errorf("MaturityDay = %d, want 15", req.MaturityDay)
	}
	if req.Symbol != "GCZ6" || req.OrdType != oms.OrdTypeStopLimit {
		t.Errorf("request = %+v", req)
	}

	// The quantity must serialize as a JSON number, not a string.
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshaling request: %v", err)
	}
	if _, ok := raw["quantity"].(float64); !ok {
		t.Errorf("quantity serialized as %T, want number", raw["quantity"])
	}
}

func TestSubmitNetworkFailureRetainsDraft(t *testing.T) {
	svc := &fakeService{err: &oms.NetworkError{Op: "POST /orders", Err: errors.New("connection refused")}}
	tk := NewOrderTicket(svc, nil, discardLogger(), "SESSION")

	draft := validFutureDraft()
	tk.SetDraft(draft)

	_, err := tk.Submit(context.Background())
	var nerr *oms.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("Submit() error = %v, want NetworkError", err)
	}
	if got := tk.Draft(); got != draft {
		t.Errorf("draft changed after network failure: %+v", got)
	}
	if tk.State() != StateEditing {
		t.Errorf("state = %v, want StateEditing", tk.State())
	}
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	svc := &fakeService{}
	tk := NewOrderTicket(svc, nil, discardLogger(), "SESSION")
	tk.SetDraft(validFutureDraft())

	order, err := tk.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if order.ID != 1 {
		t.Errorf("order.ID = %d, want 1", order.ID)
	}

	want := NewOrderDraft("FIX.4.4:CLIENT->SERVER")
	if got := tk.Draft(); got != want {
		t.Errorf("draft after success = %+v, want fresh default %+v", got, want)
	}
}

func TestSecDefSubmit(t *testing.T) {
	svc := &fakeService{}
	f := NewSecDefForm(svc, nil, discardLogger(), "SESSION")
	f.SetDraft(oms.SecurityDefinitionRequestDraft{
		SecurityRequestType: "3",
		SecurityType:        oms.SecurityTypeOption,
		Symbol:              "SPY",
		Session:             "SESSION",
	})

	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if svc.secdefCalls != 1 {
		t.Fatalf("secdef calls = %d, want 1", svc.secdefCalls)
	}
	if svc.lastSecdef.SecurityRequestType != 3 {
		t.Errorf("SecurityRequestType = %d, want 3", svc.lastSecdef.SecurityRequestType)
	}
	if got := f.Draft(); got != NewSecDefDraft("SESSION") {
		t.Errorf("draft after success = %+v, want fresh default", got)
	}
}

func TestSecDefSubmitFailureRetainsDraft(t *testing.T) {
	svc := &fakeService{err: errors.New("boom")}
	f := NewSecDefForm(svc, nil, discardLogger(), "SESSION")

	draft := oms.SecurityDefinitionRequestDraft{
		SecurityRequestType: "1",
		SecurityType:        oms.SecurityTypeFuture,
		Symbol:              "GC",
		Session:             "SESSION",
	}
	f.SetDraft(draft)

	if err := f.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want failure")
	}
	if got := f.Draft(); got != draft {
		t.Errorf("draft changed after failure: %+v", got)
	}
}

// fakeRecorder counts journal writes.
type fakeRecorder struct {
	entries []string // "kind:symbol"
}

func (r *fakeRecorder) RecordSubmission(_ context.Context, kind, symbol string, _ any) error {
	r.entries = append(r.entries, kind+":"+symbol)
	return nil
}

func TestSubmitJournalsOncePerAcceptedOrder(t *testing.T) {
	svc := &fakeService{}
	rec := &fakeRecorder{}
	tk := NewOrderTicket(svc, rec, discardLogger(), "SESSION")
	tk.SetDraft(validFutureDraft())

	if _, err := tk.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.entries) != 1 || rec.entries[0] != "order:GCZ6" {
		t.Fatalf("journal entries = %v, want [order:GCZ6]", rec.entries)
	}
}

func TestSubmitFailureJournalsNothing(t *testing.T) {
	rec := &fakeRecorder{}

	// Validation failure blocks the call before any side effect.
	svc := &fakeService{}
	tk := NewOrderTicket(svc, rec, discardLogger(), "SESSION")
	draft := validFutureDraft()
	draft.Symbol = ""
	tk.SetDraft(draft)
	if _, err := tk.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want ValidationError")
	}

	// Network failure leaves no record either.
	svc = &fakeService{err: &oms.NetworkError{Op: "POST /orders", Err: errors.New("connection refused")}}
	tk = NewOrderTicket(svc, rec, discardLogger(), "SESSION")
	tk.SetDraft(validFutureDraft())
	if _, err := tk.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want NetworkError")
	}

	if len(rec.entries) != 0 {
		t.Errorf("journal entries = %v, want none", rec.entries)
	}
}

func TestSecDefSubmitJournalsOnce(t *testing.T) {
	svc := &fakeService{}
	rec := &fakeRecorder{}
	f := NewSecDefForm(svc, rec, discardLogger(), "SESSION")
	f.SetDraft(oms.SecurityDefinitionRequestDraft{
		SecurityRequestType: "3",
		SecurityType:        oms.SecurityTypeOption,
		Symbol:              "SPY",
		Session:             "SESSION",
	})

	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.entries) != 1 || rec.entries[0] != "secdef:SPY" {
		t.Fatalf("journal entries = %v, want [secdef:SPY]", rec.entries)
	}

	svc.err = errors.New("boom")
	f.SetDraft(oms.SecurityDefinitionRequestDraft{Symbol: "GC", Session: "SESSION"})
	if err := f.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want failure")
	}
	if len(rec.entries) != 1 {
		t.Errorf("journal entries after failure = %v, want just the first", rec.entries)
	}
}
