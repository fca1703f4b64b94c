package quotes

import (
	"fmt"
	"time"
)

// Ledger records submitted quotes against requests and drives the quote
// state machine: submitted -> validated -> accepted, or -> rejected.
type Ledger struct {
	clock func() time.Time
}

func NewLedger(clock func() time.Time) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{clock: clock}
}

// Submit records a provider's quote against a sent request. The provider must
// be one the request was addressed to, and the request must still be open.
func (l *Ledger) Submit(req *QuoteRequest, in QuoteInput) (*Quote, error) {
	if req.Status != RequestSent && req.Status != RequestReceived {
		return nil, newError(CodeTransition, "request %s is %q, quotes can only be submitted against sent requests", req.RequestID, req.Status)
	}
	if l.clock().After(req.ExpiryDate) {
		return nil, newError(CodeExpired, "request %s expired at %s", req.RequestID, req.ExpiryDate.Format(time.RFC3339))
	}
	if !req.Providers.Includes(in.Provider) {
		return nil, newError(CodeValidation, "provider type %q was not solicited by request %s", in.Provider, req.RequestID)
	}

	q := &Quote{
		QuoteRequestID:          req.ID,
		DamagedPartID:           req.DamagedPartID,
		Provider:                in.Provider,
		ProviderName:            in.ProviderName,
		PartType:                in.PartType,
		EstimatedDeliveryDays:   in.EstimatedDeliveryDays,
		EstimatedCompletionDays: in.EstimatedCompletionDays,
		ValidUntil:              in.ValidUntil,
		Status:                  QuoteSubmitted,
		SubmittedAt:             l.clock(),
	}
	l.setCosts(q, in)
	return q, nil
}

// UpdateCosts replaces the cost components of a not-yet-accepted quote and
// recomputes the total.
func (l *Ledger) UpdateCosts(q *Quote, in QuoteInput) error {
	if q.Status == QuoteAccepted || q.Status == QuoteRejected {
		return newError(CodeTransition, "quote %s is %q and can no longer change", q.ID, q.Status)
	}
	l.setCosts(q, in)
	return nil
}

func (l *Ledger) setCosts(q *Quote, in QuoteInput) {
	q.PartCost = in.PartCost
	q.LaborCost = in.LaborCost
	q.PaintCost = in.PaintCost
	q.AdditionalCosts = in.AdditionalCosts
	q.TotalCost = in.PartCost + in.LaborCost + in.PaintCost + in.AdditionalCosts
}

// Validate checks a submitted quote and, when it passes, moves it to
// validated. Failures come back as a problem list and the quote stays
// submitted; a failed validation is a caller-visible condition, not an
// internal error.
func (l *Ledger) Validate(q *Quote) []string {
	if q.Status != QuoteSubmitted {
		return []string{fmt.Sprintf("quote is %q, only submitted quotes can be validated", q.Status)}
	}
	var problems []string
	if q.PartCost <= 0 {
		problems = append(problems, "part_cost must be greater than zero")
	}
	if q.LaborCost < 0 {
		problems = append(problems, "labor_cost must not be negative")
	}
	if q.EstimatedDeliveryDays <= 0 {
		problems = append(problems, "estimated_delivery_days must be greater than zero")
	}
	if !q.ValidUntil.After(l.clock()) {
		problems = append(problems, "valid_until is in the past")
	}
	if len(problems) > 0 {
		return problems
	}
	q.Status = QuoteValidated
	return nil
}

// Accept marks a validated quote accepted and its parent request received.
func (l *Ledger) Accept(q *Quote, req *QuoteRequest) error {
	if q.Status != QuoteValidated {
		return newError(CodeTransition, "quote %s is %q, only validated quotes can be accepted", q.ID, q.Status)
	}
	if req.ID != q.QuoteRequestID {
		return newError(CodeMismatch, "quote %s does not belong to request %s", q.ID, req.RequestID)
	}
	q.Status = QuoteAccepted
	req.Status = RequestReceived
	return nil
}

// Reject marks a quote rejected. Accepted quotes cannot be rejected.
func (l *Ledger) Reject(q *Quote) error {
	if q.Status == QuoteAccepted {
		return newError(CodeTransition, "quote %s is already accepted", q.ID)
	}
	q.Status = QuoteRejected
	return nil
}

// IsValid reports whether a quote is still usable: not rejected and not past
// its validity date.
func (l *Ledger) IsValid(q *Quote) bool {
	return q.Status != QuoteRejected && !l.clock().After(q.ValidUntil)
}
