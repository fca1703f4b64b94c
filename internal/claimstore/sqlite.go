package claimstore

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/market"
	"github.com/clearviewclaims/appraisal/internal/quotes"
)

// SQLiteStore implements API with SQLite-backed persistence. It delegates
// lookups and invariants to an embedded in-memory MemStore and writes the
// entity rows through to SQLite, loading everything back on open.
type SQLiteStore struct {
	inner *MemStore
	db    *sqlx.DB
	mu    sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS damaged_parts (
	id                    TEXT PRIMARY KEY,
	assessment_id         TEXT NOT NULL,
	part_name             TEXT NOT NULL,
	part_category         TEXT NOT NULL,
	severity              TEXT NOT NULL,
	description           TEXT NOT NULL DEFAULT '',
	requires_replacement  INTEGER NOT NULL DEFAULT 0,
	estimated_labor_hours REAL NOT NULL DEFAULT 0,
	notes                 TEXT NOT NULL DEFAULT '',
	contributing_sections TEXT NOT NULL DEFAULT '[]',
	identified_at         TEXT NOT NULL,
	UNIQUE (assessment_id, part_name, part_category)
);

CREATE TABLE IF NOT EXISTS quote_requests (
	id              TEXT PRIMARY KEY,
	request_id      TEXT NOT NULL UNIQUE,
	damaged_part_id TEXT NOT NULL,
	assessment_id   TEXT NOT NULL,
	provider_flags  TEXT NOT NULL DEFAULT '{}',
	status          TEXT NOT NULL DEFAULT 'draft',
	dispatched_by   TEXT NOT NULL DEFAULT '',
	dispatched_at   TEXT NOT NULL DEFAULT '',
	expiry_date     TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quotes (
	id                        TEXT PRIMARY KEY,
	quote_request_id          TEXT NOT NULL,
	damaged_part_id           TEXT NOT NULL,
	provider_type             TEXT NOT NULL,
	provider_name             TEXT NOT NULL DEFAULT '',
	part_cost                 REAL NOT NULL DEFAULT 0,
	labor_cost                REAL NOT NULL DEFAULT 0,
	paint_cost                REAL NOT NULL DEFAULT 0,
	additional_costs          REAL NOT NULL DEFAULT 0,
	total_cost                REAL NOT NULL DEFAULT 0,
	part_type                 TEXT NOT NULL DEFAULT '',
	estimated_delivery_days   INTEGER NOT NULL DEFAULT 0,
	estimated_completion_days INTEGER NOT NULL DEFAULT 0,
	valid_until               TEXT NOT NULL DEFAULT '',
	status                    TEXT NOT NULL DEFAULT 'submitted',
	submitted_at              TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS market_averages (
	damaged_part_id     TEXT PRIMARY KEY,
	average_total_cost  REAL NOT NULL DEFAULT 0,
	average_part_cost   REAL NOT NULL DEFAULT 0,
	average_labor_cost  REAL NOT NULL DEFAULT 0,
	min_total_cost      REAL NOT NULL DEFAULT 0,
	max_total_cost      REAL NOT NULL DEFAULT 0,
	standard_deviation  REAL NOT NULL DEFAULT 0,
	variance_percentage REAL NOT NULL DEFAULT 0,
	quote_count         INTEGER NOT NULL DEFAULT 0,
	confidence_level    REAL NOT NULL DEFAULT 0,
	computed_at         TEXT NOT NULL DEFAULT ''
);
`

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{inner: NewMemStore(), db: db}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- load all state from SQLite into the in-memory store ---

func (s *SQLiteStore) loadAll() error {
	if err := s.loadParts(); err != nil {
		return err
	}
	if err := s.loadRequests(); err != nil {
		return err
	}
	if err := s.loadQuotes(); err != nil {
		return err
	}
	return s.loadAverages()
}

func (s *SQLiteStore) loadParts() error {
	rows, err := s.db.Query(`SELECT id, assessment_id, part_name, part_category, severity,
		description, requires_replacement, estimated_labor_hours, notes,
		contributing_sections, identified_at FROM damaged_parts`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p assessment.DamagedPart
		var sectionsJSON, identifiedAt string
		var replace int
		if err := rows.Scan(&p.ID, &p.AssessmentID, &p.PartName, &p.Category, &p.Severity,
			&p.Description, &replace, &p.EstimatedLaborHours, &p.Notes,
			&sectionsJSON, &identifiedAt); err != nil {
			return err
		}
		p.RequiresReplacement = replace != 0
		_ = json.Unmarshal([]byte(sectionsJSON), &p.ContributingSections)
		p.IdentifiedAt, _ = time.Parse(time.RFC3339Nano, identifiedAt)
		s.inner.mu.Lock()
		cp := p
		s.inner.parts[p.ID] = &cp
		s.inner.partKeys[keyFor(p)] = p.ID
		s.inner.mu.Unlock()
	}
	return rows.Err()
}

func (s *SQLiteStore) loadRequests() error {
	rows, err := s.db.Query(`SELECT id, request_id, damaged_part_id, assessment_id,
		provider_flags, status, dispatched_by, dispatched_at, expiry_date, created_at
		FROM quote_requests`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r quotes.QuoteRequest
		var flagsJSON, dispatchedAt, expiryDate, createdAt string
		if err := rows.Scan(&r.ID, &r.RequestID, &r.DamagedPartID, &r.AssessmentID,
			&flagsJSON, &r.Status, &r.DispatchedBy, &dispatchedAt, &expiryDate, &createdAt); err != nil {
			return err
		}
		_ = json.Unmarshal([]byte(flagsJSON), &r.Providers)
		if dispatchedAt != "" {
			r.DispatchedAt, _ = time.Parse(time.RFC3339Nano, dispatchedAt)
		}
		r.ExpiryDate, _ = time.Parse(time.RFC3339Nano, expiryDate)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		s.inner.mu.Lock()
		cp := r
		s.inner.requests[r.ID] = &cp
		s.inner.mu.Unlock()
	}
	return rows.Err()
}

func (s *SQLiteStore) loadQuotes() error {
	rows, err := s.db.Query(`SELECT id, quote_request_id, damaged_part_id, provider_type,
		provider_name, part_cost, labor_cost, paint_cost, additional_costs, total_cost,
		part_type, estimated_delivery_days, estimated_completion_days, valid_until,
		status, submitted_at FROM quotes`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var q quotes.Quote
		var validUntil, submittedAt string
		if err := rows.Scan(&q.ID, &q.QuoteRequestID, &q.DamagedPartID, &q.Provider,
			&q.ProviderName, &q.PartCost, &q.LaborCost, &q.PaintCost, &q.AdditionalCosts,
			&q.TotalCost, &q.PartType, &q.EstimatedDeliveryDays, &q.EstimatedCompletionDays,
			&validUntil, &q.Status, &submittedAt); err != nil {
			return err
		}
		if validUntil != "" {
			q.ValidUntil, _ = time.Parse(time.RFC3339Nano, validUntil)
		}
		if submittedAt != "" {
			q.SubmittedAt, _ = time.Parse(time.RFC3339Nano, submittedAt)
		}
		s.inner.mu.Lock()
		cp := q
		s.inner.quotes[q.ID] = &cp
		s.inner.mu.Unlock()
	}
	return rows.Err()
}

func (s *SQLiteStore) loadAverages() error {
	rows, err := s.db.Query(`SELECT damaged_part_id, average_total_cost, average_part_cost,
		average_labor_cost, min_total_cost, max_total_cost, standard_deviation,
		variance_percentage, quote_count, confidence_level, computed_at FROM market_averages`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m market.MarketAverage
		var computedAt string
		if err := rows.Scan(&m.DamagedPartID, &m.AverageTotalCost, &m.AveragePartCost,
			&m.AverageLaborCost, &m.MinTotalCost, &m.MaxTotalCost, &m.StandardDeviation,
			&m.VariancePercentage, &m.QuoteCount, &m.ConfidenceLevel, &computedAt); err != nil {
			return err
		}
		if computedAt != "" {
			m.ComputedAt, _ = time.Parse(time.RFC3339Nano, computedAt)
		}
		s.inner.mu.Lock()
		s.inner.averages[m.DamagedPartID] = m
		s.inner.mu.Unlock()
	}
	return rows.Err()
}

// --- persist helpers ---

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteStore) savePart(p assessment.DamagedPart) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO damaged_parts (id, assessment_id, part_name,
		part_category, severity, description, requires_replacement, estimated_labor_hours,
		notes, contributing_sections, identified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.AssessmentID,
		p.PartName,
		string(p.Category),
		string(p.Severity),
		p.Description,
		boolToInt(p.RequiresReplacement),
		p.EstimatedLaborHours,
		p.Notes,
		marshalJSON(p.ContributingSections),
		timeToString(p.IdentifiedAt),
	)
	return err
}

func (s *SQLiteStore) saveRequest(r quotes.QuoteRequest) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO quote_requests (id, request_id,
		damaged_part_id, assessment_id, provider_flags, status, dispatched_by,
		dispatched_at, expiry_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.RequestID,
		r.DamagedPartID,
		r.AssessmentID,
		marshalJSON(r.Providers),
		string(r.Status),
		r.DispatchedBy,
		timeToString(r.DispatchedAt),
		timeToString(r.ExpiryDate),
		timeToString(r.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) saveQuote(q quotes.Quote) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO quotes (id, quote_request_id,
		damaged_part_id, provider_type, provider_name, part_cost, labor_cost, paint_cost,
		additional_costs, total_cost, part_type, estimated_delivery_days,
		estimated_completion_days, valid_until, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID,
		q.QuoteRequestID,
		q.DamagedPartID,
		string(q.Provider),
		q.ProviderName,
		q.PartCost,
		q.LaborCost,
		q.PaintCost,
		q.AdditionalCosts,
		q.TotalCost,
		string(q.PartType),
		q.EstimatedDeliveryDays,
		q.EstimatedCompletionDays,
		timeToString(q.ValidUntil),
		string(q.Status),
		timeToString(q.SubmittedAt),
	)
	return err
}

func (s *SQLiteStore) saveAverage(m market.MarketAverage) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO market_averages (damaged_part_id,
		average_total_cost, average_part_cost, average_labor_cost, min_total_cost,
		max_total_cost, standard_deviation, variance_percentage, quote_count,
		confidence_level, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.DamagedPartID,
		m.AverageTotalCost,
		m.AveragePartCost,
		m.AverageLaborCost,
		m.MinTotalCost,
		m.MaxTotalCost,
		m.StandardDeviation,
		m.VariancePercentage,
		m.QuoteCount,
		m.ConfidenceLevel,
		timeToString(m.ComputedAt),
	)
	return err
}

// --- API implementation ---

func (s *SQLiteStore) UpsertDamagedPart(part assessment.DamagedPart) (assessment.DamagedPart, error) {
	out, err := s.inner.UpsertDamagedPart(part)
	if err != nil {
		return assessment.DamagedPart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if perr := s.savePart(out); perr != nil {
		return assessment.DamagedPart{}, perr
	}
	return out, nil
}

func (s *SQLiteStore) GetDamagedPart(id string) (assessment.DamagedPart, error) {
	return s.inner.GetDamagedPart(id)
}

func (s *SQLiteStore) ListDamagedParts(assessmentID string) ([]assessment.DamagedPart, error) {
	return s.inner.ListDamagedParts(assessmentID)
}

func (s *SQLiteStore) SaveQuoteRequest(req *quotes.QuoteRequest) error {
	if err := s.inner.SaveQuoteRequest(req); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRequest(*req)
}

func (s *SQLiteStore) GetQuoteRequest(id string) (quotes.QuoteRequest, error) {
	return s.inner.GetQuoteRequest(id)
}

func (s *SQLiteStore) ListQuoteRequests(assessmentID string) ([]quotes.QuoteRequest, error) {
	return s.inner.ListQuoteRequests(assessmentID)
}

func (s *SQLiteStore) SaveQuote(q *quotes.Quote) error {
	if err := s.inner.SaveQuote(q); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveQuote(*q)
}

func (s *SQLiteStore) GetQuote(id string) (quotes.Quote, error) {
	return s.inner.GetQuote(id)
}

func (s *SQLiteStore) ListQuotesForPart(partID string) ([]quotes.Quote, error) {
	return s.inner.ListQuotesForPart(partID)
}

func (s *SQLiteStore) SaveMarketAverage(avg market.MarketAverage) error {
	if err := s.inner.SaveMarketAverage(avg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAverage(avg)
}

func (s *SQLiteStore) GetMarketAverage(partID string) (market.MarketAverage, error) {
	return s.inner.GetMarketAverage(partID)
}

func (s *SQLiteStore) ExpireStale(now time.Time) (int, error) {
	changed, err := s.inner.ExpireStale(now)
	if err != nil || changed == 0 {
		return changed, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.inner.requestsSnapshot() {
		if r.Status == quotes.RequestExpired {
			if perr := s.saveRequest(r); perr != nil {
				return changed, perr
			}
		}
	}
	return changed, nil
}

var _ API = (*SQLiteStore)(nil)
