// Package claimstore persists the pipeline's entities: damaged parts, quote
// requests, quotes, and last-computed market averages. All shared state lives
// here; the computation packages stay pure.
package claimstore

import (
	"time"

	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/market"
	"github.com/clearviewclaims/appraisal/internal/quotes"
)

// API is the storage interface the appraisal service works against. It allows
// swapping the in-memory and SQLite-backed implementations.
type API interface {
	// UpsertDamagedPart inserts or refreshes a part keyed by
	// (assessment_id, part_name, part_category), so re-running part
	// identification is idempotent instead of duplicating rows.
	UpsertDamagedPart(part assessment.DamagedPart) (assessment.DamagedPart, error)
	GetDamagedPart(id string) (assessment.DamagedPart, error)
	ListDamagedParts(assessmentID string) ([]assessment.DamagedPart, error)

	SaveQuoteRequest(req *quotes.QuoteRequest) error
	GetQuoteRequest(id string) (quotes.QuoteRequest, error)
	ListQuoteRequests(assessmentID string) ([]quotes.QuoteRequest, error)

	SaveQuote(q *quotes.Quote) error
	GetQuote(id string) (quotes.Quote, error)
	ListQuotesForPart(partID string) ([]quotes.Quote, error)

	SaveMarketAverage(avg market.MarketAverage) error
	GetMarketAverage(partID string) (market.MarketAverage, error)

	// ExpireStale moves overdue draft/sent requests to expired and reports
	// how many changed.
	ExpireStale(now time.Time) (int, error)

	Close() error
}
