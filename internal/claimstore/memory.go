package claimstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/market"
	"github.com/clearviewclaims/appraisal/internal/quotes"
)

// MemStore is the in-memory implementation. A single mutex covers every
// operation, which also serializes concurrent part identification for the
// same assessment.
type MemStore struct {
	mu sync.Mutex

	parts    map[string]*assessment.DamagedPart
	partKeys map[partKey]string
	requests map[string]*quotes.QuoteRequest
	quotes   map[string]*quotes.Quote
	averages map[string]market.MarketAverage

	clock func() time.Time
}

type partKey struct {
	assessmentID string
	name         string
	category     assessment.PartCategory
}

func keyFor(p assessment.DamagedPart) partKey {
	return partKey{
		assessmentID: p.AssessmentID,
		name:         strings.ToLower(strings.TrimSpace(p.PartName)),
		category:     p.Category,
	}
}

func NewMemStore() *MemStore {
	return &MemStore{
		parts:    map[string]*assessment.DamagedPart{},
		partKeys: map[partKey]string{},
		requests: map[string]*quotes.QuoteRequest{},
		quotes:   map[string]*quotes.Quote{},
		averages: map[string]market.MarketAverage{},
		clock:    time.Now,
	}
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) UpsertDamagedPart(part assessment.DamagedPart) (assessment.DamagedPart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertPartLocked(part), nil
}

func (s *MemStore) upsertPartLocked(part assessment.DamagedPart) assessment.DamagedPart {
	key := keyFor(part)
	if id, ok := s.partKeys[key]; ok {
		existing := s.parts[id]
		part.ID = existing.ID
		part.IdentifiedAt = existing.IdentifiedAt
	} else {
		if part.ID == "" {
			part.ID = uuid.NewString()
		}
		if part.IdentifiedAt.IsZero() {
			part.IdentifiedAt = s.clock()
		}
		s.partKeys[key] = part.ID
	}
	cp := part
	s.parts[part.ID] = &cp
	return part
}

func (s *MemStore) GetDamagedPart(id string) (assessment.DamagedPart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[id]
	if !ok {
		return assessment.DamagedPart{}, ErrNotFound
	}
	return *p, nil
}

func (s *MemStore) ListDamagedParts(assessmentID string) ([]assessment.DamagedPart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []assessment.DamagedPart
	for _, p := range s.parts {
		if p.AssessmentID == assessmentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartName < out[j].PartName })
	return out, nil
}

func (s *MemStore) SaveQuoteRequest(req *quotes.QuoteRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *MemStore) GetQuoteRequest(id string) (quotes.QuoteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return quotes.QuoteRequest{}, ErrNotFound
	}
	return *r, nil
}

func (s *MemStore) ListQuoteRequests(assessmentID string) ([]quotes.QuoteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []quotes.QuoteRequest
	for _, r := range s.requests {
		if r.AssessmentID == assessmentID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out, nil
}

func (s *MemStore) SaveQuote(q *quotes.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	cp := *q
	s.quotes[q.ID] = &cp
	return nil
}

func (s *MemStore) GetQuote(id string) (quotes.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return quotes.Quote{}, ErrNotFound
	}
	return *q, nil
}

func (s *MemStore) ListQuotesForPart(partID string) ([]quotes.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []quotes.Quote
	for _, q := range s.quotes {
		if q.DamagedPartID == partID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) SaveMarketAverage(avg market.MarketAverage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.averages[avg.DamagedPartID] = avg
	return nil
}

func (s *MemStore) GetMarketAverage(partID string) (market.MarketAverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	avg, ok := s.averages[partID]
	if !ok {
		return market.MarketAverage{}, ErrNotFound
	}
	return avg, nil
}

func (s *MemStore) ExpireStale(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, r := range s.requests {
		if (r.Status == quotes.RequestDraft || r.Status == quotes.RequestSent) && now.After(r.ExpiryDate) {
			r.Status = quotes.RequestExpired
			changed++
		}
	}
	return changed, nil
}

// requestsSnapshot copies every request row; the SQLite store uses it to
// persist the outcome of an expiry sweep.
func (s *MemStore) requestsSnapshot() []quotes.QuoteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]quotes.QuoteRequest, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, *r)
	}
	return out
}

var _ API = (*MemStore)(nil)
