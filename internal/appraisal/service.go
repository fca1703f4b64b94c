// Package appraisal wires the damage→parts→quotes→recommendation pipeline
// together over a claim store. Each operation is synchronous and finishes
// before returning; the store rows are the only shared state.
package appraisal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/claimstore"
	"github.com/clearviewclaims/appraisal/internal/market"
	"github.com/clearviewclaims/appraisal/internal/quotes"
	"github.com/clearviewclaims/appraisal/internal/recommend"
)

const tracerName = "github.com/clearviewclaims/appraisal/internal/appraisal"

type ServiceConfig struct {
	Severities    assessment.SeverityTable
	Mappings      assessment.PartMappings
	Labor         assessment.LaborTable
	ExpiryHorizon time.Duration
	Scoring       recommend.Config
	Clock         func() time.Time
}

type Service struct {
	store      claimstore.API
	extractor  *assessment.Extractor
	dispatcher *quotes.Dispatcher
	ledger     *quotes.Ledger
	engine     *recommend.Engine
	tracer     trace.Tracer
	clock      func() time.Time

	// Serializes part identification per assessment; running it twice in
	// parallel for the same assessment would race the upsert loop.
	identifyMu sync.Mutex
	identify   map[string]*sync.Mutex
}

func NewService(store claimstore.API, cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		store:      store,
		extractor:  assessment.NewExtractor(cfg.Severities, cfg.Mappings, assessment.NewLaborEstimator(cfg.Labor)),
		dispatcher: quotes.NewDispatcher(quotes.DispatcherConfig{ExpiryHorizon: cfg.ExpiryHorizon, Clock: cfg.Clock}),
		ledger:     quotes.NewLedger(cfg.Clock),
		engine:     recommend.NewEngine(cfg.Scoring),
		tracer:     otel.Tracer(tracerName),
		clock:      cfg.Clock,
		identify:   map[string]*sync.Mutex{},
	}
}

func (s *Service) assessmentLock(assessmentID string) *sync.Mutex {
	s.identifyMu.Lock()
	defer s.identifyMu.Unlock()
	mu, ok := s.identify[assessmentID]
	if !ok {
		mu = &sync.Mutex{}
		s.identify[assessmentID] = mu
	}
	return mu
}

// IdentifyDamagedParts runs extraction and consolidation over a bundle and
// upserts the result. Re-running for the same assessment refreshes rows
// instead of duplicating them.
func (s *Service) IdentifyDamagedParts(ctx context.Context, bundle assessment.Bundle) ([]assessment.DamagedPart, error) {
	_, span := s.tracer.Start(ctx, "appraisal.IdentifyDamagedParts",
		trace.WithAttributes(attribute.String("assessment.id", bundle.AssessmentID)))
	defer span.End()

	if bundle.AssessmentID == "" {
		return nil, spanErr(span, fmt.Errorf("assessment id is required"))
	}
	if bundle.Status != assessment.StatusCompleted && bundle.Status != assessment.StatusUnderReview {
		return nil, spanErr(span, fmt.Errorf("assessment %s is %q; parts can only be identified once it is completed or under review",
			bundle.AssessmentID, bundle.Status))
	}

	mu := s.assessmentLock(bundle.AssessmentID)
	mu.Lock()
	defer mu.Unlock()

	candidates := s.extractor.ExtractAll(bundle)
	parts := assessment.Consolidate(candidates)
	out := make([]assessment.DamagedPart, 0, len(parts))
	for _, p := range parts {
		p.AssessmentID = bundle.AssessmentID
		saved, err := s.store.UpsertDamagedPart(p)
		if err != nil {
			return nil, spanErr(span, fmt.Errorf("save part %q: %w", p.PartName, err))
		}
		out = append(out, saved)
	}
	span.SetAttributes(attribute.Int("parts.count", len(out)))
	return out, nil
}

// BatchCreateRequests creates and dispatches one quote request per part.
// Every part must belong to the given assessment.
func (s *Service) BatchCreateRequests(ctx context.Context, assessmentID string, partIDs []string, sel quotes.ProviderSelection, dispatchedBy string) ([]quotes.QuoteRequest, error) {
	_, span := s.tracer.Start(ctx, "appraisal.BatchCreateRequests",
		trace.WithAttributes(attribute.String("assessment.id", assessmentID), attribute.Int("parts.count", len(partIDs))))
	defer span.End()

	for _, partID := range partIDs {
		part, err := s.store.GetDamagedPart(partID)
		if err != nil {
			return nil, spanErr(span, fmt.Errorf("part %s: %w", partID, err))
		}
		if part.AssessmentID != assessmentID {
			return nil, spanErr(span, fmt.Errorf("part %s belongs to assessment %s, not %s", partID, part.AssessmentID, assessmentID))
		}
	}

	reqs, err := s.dispatcher.BatchCreate(assessmentID, partIDs, sel, time.Time{})
	if err != nil {
		return nil, spanErr(span, err)
	}
	out := make([]quotes.QuoteRequest, 0, len(reqs))
	for _, r := range reqs {
		if err := s.dispatcher.Send(r, dispatchedBy); err != nil {
			return nil, spanErr(span, err)
		}
		if err := s.store.SaveQuoteRequest(r); err != nil {
			return nil, spanErr(span, fmt.Errorf("save request %s: %w", r.RequestID, err))
		}
		out = append(out, *r)
	}
	return out, nil
}

// SubmitQuote records a provider's quote against a stored request.
func (s *Service) SubmitQuote(ctx context.Context, requestID string, in quotes.QuoteInput) (quotes.Quote, error) {
	_, span := s.tracer.Start(ctx, "appraisal.SubmitQuote",
		trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	req, err := s.store.GetQuoteRequest(requestID)
	if err != nil {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("request %s: %w", requestID, err))
	}
	part, err := s.store.GetDamagedPart(req.DamagedPartID)
	if err != nil {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("part %s: %w", req.DamagedPartID, err))
	}
	if part.AssessmentID != req.AssessmentID {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("request %s references part %s from a different assessment", req.RequestID, part.ID))
	}

	q, err := s.ledger.Submit(&req, in)
	if err != nil {
		return quotes.Quote{}, spanErr(span, err)
	}
	if err := s.store.SaveQuote(q); err != nil {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("save quote: %w", err))
	}
	return *q, nil
}

// ValidateQuote checks a submitted quote. Field problems come back in the
// second return value with a nil error; the quote stays submitted. On
// success the part's market average is recomputed and stored.
func (s *Service) ValidateQuote(ctx context.Context, quoteID string) (quotes.Quote, []string, error) {
	ctx, span := s.tracer.Start(ctx, "appraisal.ValidateQuote",
		trace.WithAttributes(attribute.String("quote.id", quoteID)))
	defer span.End()

	q, err := s.store.GetQuote(quoteID)
	if err != nil {
		return quotes.Quote{}, nil, spanErr(span, fmt.Errorf("quote %s: %w", quoteID, err))
	}
	if problems := s.ledger.Validate(&q); len(problems) > 0 {
		span.SetAttributes(attribute.Int("validation.problems", len(problems)))
		return q, problems, nil
	}
	if err := s.store.SaveQuote(&q); err != nil {
		return quotes.Quote{}, nil, spanErr(span, fmt.Errorf("save quote: %w", err))
	}
	if _, err := s.CalculateMarketAverage(ctx, q.DamagedPartID); err != nil {
		return quotes.Quote{}, nil, spanErr(span, fmt.Errorf("recompute market average: %w", err))
	}
	return q, nil, nil
}

// AcceptQuote accepts a validated quote and marks its request received.
func (s *Service) AcceptQuote(ctx context.Context, quoteID string) (quotes.Quote, error) {
	_, span := s.tracer.Start(ctx, "appraisal.AcceptQuote",
		trace.WithAttributes(attribute.String("quote.id", quoteID)))
	defer span.End()

	q, err := s.store.GetQuote(quoteID)
	if err != nil {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("quote %s: %w", quoteID, err))
	}
	req, err := s.store.GetQuoteRequest(q.QuoteRequestID)
	if err != nil {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("request %s: %w", q.QuoteRequestID, err))
	}
	if err := s.ledger.Accept(&q, &req); err != nil {
		return quotes.Quote{}, spanErr(span, err)
	}
	if err := s.store.SaveQuote(&q); err != nil {
		return quotes.Quote{}, spanErr(span, err)
	}
	if err := s.store.SaveQuoteRequest(&req); err != nil {
		return quotes.Quote{}, spanErr(span, err)
	}
	return q, nil
}

// RejectQuote rejects a quote that has not been accepted.
func (s *Service) RejectQuote(ctx context.Context, quoteID string) (quotes.Quote, error) {
	_, span := s.tracer.Start(ctx, "appraisal.RejectQuote",
		trace.WithAttributes(attribute.String("quote.id", quoteID)))
	defer span.End()

	q, err := s.store.GetQuote(quoteID)
	if err != nil {
		return quotes.Quote{}, spanErr(span, fmt.Errorf("quote %s: %w", quoteID, err))
	}
	if err := s.ledger.Reject(&q); err != nil {
		return quotes.Quote{}, spanErr(span, err)
	}
	if err := s.store.SaveQuote(&q); err != nil {
		return quotes.Quote{}, spanErr(span, err)
	}
	return q, nil
}

// CalculateMarketAverage recomputes and stores the market statistics for one
// part. A part with no validated quotes gets a zero-filled average, not an
// error.
func (s *Service) CalculateMarketAverage(ctx context.Context, partID string) (market.MarketAverage, error) {
	_, span := s.tracer.Start(ctx, "appraisal.CalculateMarketAverage",
		trace.WithAttributes(attribute.String("part.id", partID)))
	defer span.End()

	if _, err := s.store.GetDamagedPart(partID); err != nil {
		return market.MarketAverage{}, spanErr(span, fmt.Errorf("part %s: %w", partID, err))
	}
	qs, err := s.store.ListQuotesForPart(partID)
	if err != nil {
		return market.MarketAverage{}, spanErr(span, err)
	}
	avg := market.Calculate(partID, qs)
	if err := s.store.SaveMarketAverage(avg); err != nil {
		return market.MarketAverage{}, spanErr(span, err)
	}
	span.SetAttributes(attribute.Int("quotes.count", avg.QuoteCount))
	return avg, nil
}

// GenerateRecommendation ranks a part's validated quotes under a strategy.
func (s *Service) GenerateRecommendation(ctx context.Context, partID string, strategy recommend.Strategy) (recommend.Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "appraisal.GenerateRecommendation",
		trace.WithAttributes(attribute.String("part.id", partID), attribute.String("strategy", string(strategy))))
	defer span.End()

	qs, err := s.store.ListQuotesForPart(partID)
	if err != nil {
		return recommend.Recommendation{}, spanErr(span, err)
	}
	avg, err := s.CalculateMarketAverage(ctx, partID)
	if err != nil {
		return recommend.Recommendation{}, spanErr(span, err)
	}
	rec, err := s.engine.Recommend(partID, strategy, qs, avg)
	if err != nil {
		return recommend.Recommendation{}, spanErr(span, err)
	}
	return rec, nil
}

// GenerateAssessmentRecommendations applies the strategy to every identified
// part that has validated quotes. Parts without any are left out of the map
// so the caller can render them as "no data".
func (s *Service) GenerateAssessmentRecommendations(ctx context.Context, assessmentID string, strategy recommend.Strategy) (map[string]recommend.Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "appraisal.GenerateAssessmentRecommendations",
		trace.WithAttributes(attribute.String("assessment.id", assessmentID), attribute.String("strategy", string(strategy))))
	defer span.End()

	if !strategy.Valid() {
		return nil, spanErr(span, fmt.Errorf("unknown strategy %q", strategy))
	}
	parts, err := s.store.ListDamagedParts(assessmentID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	out := map[string]recommend.Recommendation{}
	for _, part := range parts {
		qs, err := s.store.ListQuotesForPart(part.ID)
		if err != nil {
			return nil, spanErr(span, err)
		}
		if !hasValidated(qs) {
			continue
		}
		rec, err := s.GenerateRecommendation(ctx, part.ID, strategy)
		if err != nil {
			return nil, spanErr(span, err)
		}
		out[part.ID] = rec
	}
	return out, nil
}

// CalculatePotentialSavings aggregates, under the best_value strategy, how
// much the recommended picks save against the priciest viable quote per part.
func (s *Service) CalculatePotentialSavings(ctx context.Context, assessmentID string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "appraisal.CalculatePotentialSavings",
		trace.WithAttributes(attribute.String("assessment.id", assessmentID)))
	defer span.End()

	recs, err := s.GenerateAssessmentRecommendations(ctx, assessmentID, recommend.StrategyBestValue)
	if err != nil {
		return 0, spanErr(span, err)
	}
	return recommend.PotentialSavings(recs), nil
}

// ExtendRequestExpiry pushes out a stored request's expiry date.
func (s *Service) ExtendRequestExpiry(ctx context.Context, requestID string, days int) (quotes.QuoteRequest, error) {
	_, span := s.tracer.Start(ctx, "appraisal.ExtendRequestExpiry",
		trace.WithAttributes(attribute.String("request.id", requestID), attribute.Int("days", days)))
	defer span.End()

	req, err := s.store.GetQuoteRequest(requestID)
	if err != nil {
		return quotes.QuoteRequest{}, spanErr(span, fmt.Errorf("request %s: %w", requestID, err))
	}
	if err := s.dispatcher.ExtendExpiry(&req, days); err != nil {
		return quotes.QuoteRequest{}, spanErr(span, err)
	}
	if err := s.store.SaveQuoteRequest(&req); err != nil {
		return quotes.QuoteRequest{}, spanErr(span, err)
	}
	return req, nil
}

// ExpireStaleRequests sweeps overdue draft and sent requests to expired.
func (s *Service) ExpireStaleRequests(ctx context.Context) (int, error) {
	_, span := s.tracer.Start(ctx, "appraisal.ExpireStaleRequests")
	defer span.End()

	changed, err := s.store.ExpireStale(s.clock())
	if err != nil {
		return 0, spanErr(span, err)
	}
	span.SetAttributes(attribute.Int("requests.expired", changed))
	return changed, nil
}

func hasValidated(qs []quotes.Quote) bool {
	for _, q := range qs {
		if q.Status == quotes.QuoteValidated || q.Status == quotes.QuoteAccepted {
			return true
		}
	}
	return false
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
