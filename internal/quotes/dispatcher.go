package quotes

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiryHorizon is how long a new request stays open unless the caller
// overrides it.
const DefaultExpiryHorizon = 7 * 24 * time.Hour

type DispatcherConfig struct {
	ExpiryHorizon time.Duration
	Clock         func() time.Time
}

// Dispatcher creates QuoteRequests and drives their state machine:
// draft -> sent -> received, with expired reachable from draft or sent once
// the expiry date passes.
type Dispatcher struct {
	cfg DispatcherConfig
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.ExpiryHorizon <= 0 {
		cfg.ExpiryHorizon = DefaultExpiryHorizon
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Dispatcher{cfg: cfg}
}

// BatchCreate makes one draft request per part id, all carrying the same
// provider selection. A zero expiry uses the configured horizon.
func (d *Dispatcher) BatchCreate(assessmentID string, partIDs []string, sel ProviderSelection, expiry time.Time) ([]*QuoteRequest, error) {
	if !sel.Any() {
		return nil, newError(CodeValidation, "at least one provider type must be selected")
	}
	now := d.cfg.Clock()
	if expiry.IsZero() {
		expiry = now.Add(d.cfg.ExpiryHorizon)
	}
	out := make([]*QuoteRequest, 0, len(partIDs))
	for _, partID := range partIDs {
		out = append(out, &QuoteRequest{
			RequestID:     newRequestID(now),
			DamagedPartID: partID,
			AssessmentID:  assessmentID,
			Providers:     sel,
			Status:        RequestDraft,
			ExpiryDate:    expiry,
			CreatedAt:     now,
		})
	}
	return out, nil
}

// Send transitions a draft request to sent, stamping who dispatched it and
// when. Requests past their expiry date are moved to expired instead.
func (d *Dispatcher) Send(r *QuoteRequest, dispatchedBy string) error {
	if d.ExpireIfDue(r) {
		return newError(CodeExpired, "request %s expired at %s", r.RequestID, r.ExpiryDate.Format(time.RFC3339))
	}
	if r.Status != RequestDraft {
		return newError(CodeTransition, "cannot send request %s in status %q", r.RequestID, r.Status)
	}
	if !r.Providers.Any() {
		return newError(CodeValidation, "request %s has no provider selected", r.RequestID)
	}
	r.Status = RequestSent
	r.DispatchedBy = dispatchedBy
	r.DispatchedAt = d.cfg.Clock()
	return nil
}

// ExtendExpiry pushes the expiry date out by the given number of days.
// Only requests not yet received can be extended; extending an expired
// request reopens it to its prior in-flight status.
func (d *Dispatcher) ExtendExpiry(r *QuoteRequest, days int) error {
	if days <= 0 {
		return newError(CodeValidation, "extension must be a positive number of days")
	}
	if r.Status == RequestReceived {
		return newError(CodeTransition, "request %s already received", r.RequestID)
	}
	r.ExpiryDate = r.ExpiryDate.Add(time.Duration(days) * 24 * time.Hour)
	if r.Status == RequestExpired && d.cfg.Clock().Before(r.ExpiryDate) {
		if r.DispatchedAt.IsZero() {
			r.Status = RequestDraft
		} else {
			r.Status = RequestSent
		}
	}
	return nil
}

// ExpireIfDue moves an overdue draft or sent request to expired.
// It reports whether the request is now expired.
func (d *Dispatcher) ExpireIfDue(r *QuoteRequest) bool {
	switch r.Status {
	case RequestExpired:
		return true
	case RequestDraft, RequestSent:
		if d.cfg.Clock().After(r.ExpiryDate) {
			r.Status = RequestExpired
			return true
		}
	}
	return false
}

// newRequestID builds a globally unique id with a timestamp prefix so ids
// sort by creation time. The format itself is not a contract.
func newRequestID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return "QR-" + now.UTC().Format("20060102150405") + "-" + suffix
}
