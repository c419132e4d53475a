package ticket

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"traderterm/internal/oms"
)

// NewSecDefDraft returns a security-definition draft with the form's default
// selections.
func NewSecDefDraft(session string) oms.SecurityDefinitionRequestDraft {
	return oms.SecurityDefinitionRequestDraft{
		SecurityRequestType: "0",
		SecurityType:        oms.SecurityTypeCommonStock,
		Session:             session,
	}
}

// SecDefForm owns one security-definition request draft. The field set is
// fixed and always enabled; the server decides what it actually needs, so
// every field is treated as optional here.
type SecDefForm struct {
	mu       sync.Mutex
	draft    oms.SecurityDefinitionRequestDraft
	state    State
	svc      OrderService
	recorder Recorder
	log      *slog.Logger
}

// NewSecDefForm creates a controller with a fresh default draft for the
// given session.
func NewSecDefForm(svc OrderService, recorder Recorder, log *slog.Logger, session string) *SecDefForm {
	return &SecDefForm{
		draft:    NewSecDefDraft(session),
		svc:      svc,
		recorder: recorder,
		log:      log,
	}
}

// Draft returns a copy of the current draft.
func (f *SecDefForm) Draft() oms.SecurityDefinitionRequestDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// State returns the controller's submission state.
func (f *SecDefForm) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetDraft replaces the draft with edited values.
func (f *SecDefForm) SetDraft(draft oms.SecurityDefinitionRequestDraft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
}

// Submit issues the security-definition request. On failure the draft is
// retained unchanged; on success it resets to a fresh one.
func (f *SecDefForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}

	reqType := 0
	if f.draft.SecurityRequestType != "" {
		var err error
		reqType, err = strconv.Atoi(f.draft.SecurityRequestType)
		if err != nil {
			f.mu.Unlock()
			return &oms.ValidationError{Field: "security_request_type", Reason: "must be an integer"}
		}
	}

	req := oms.SecurityDefinitionRequest{
		SecurityRequestType: reqType,
		SecurityType:        f.draft.SecurityType,
		Symbol:              f.draft.Symbol,
		Session:             f.draft.Session,
	}
	f.state = StateSubmitting
	session := f.draft.Session
	f.mu.Unlock()

	err := f.svc.CreateSecurityDefinitionRequest(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateEditing
	if err != nil {
		f.log.Warn("security-definition request failed", "symbol", req.Symbol, "error", err)
		return err
	}

	if f.recorder != nil {
		if rerr := f.recorder.RecordSubmission(ctx, "secdef", req.Symbol, req); rerr != nil {
			f.log.Warn("journaling security-definition request failed", "symbol", req.Symbol, "error", rerr)
		}
	}

	f.draft = NewSecDefDraft(session)
	f.log.Info("security-definition request submitted", "symbol", req.Symbol)
	return nil
}
