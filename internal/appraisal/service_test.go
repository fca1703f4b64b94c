package appraisal

import (
	"context"
	"testing"
	"time"

	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/claimstore"
	"github.com/clearviewclaims/appraisal/internal/quotes"
	"github.com/clearviewclaims/appraisal/internal/recommend"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, claimstore.API) {
	t.Helper()
	store := claimstore.NewMemStore()
	svc := NewService(store, ServiceConfig{Clock: func() time.Time { return testNow }})
	t.Cleanup(func() { store.Close() })
	return svc, store
}

func collisionBundle(assessmentID string) assessment.Bundle {
	return assessment.Bundle{
		AssessmentID: assessmentID,
		Status:       assessment.StatusCompleted,
		Sections: []assessment.SectionReport{
			{
				Section: assessment.SectionExterior,
				Readings: []assessment.FieldReading{
					{Key: "front_bumper", Value: "moderate", Notes: "cracked on the left side"},
					{Key: "hood", Value: "severe", Notes: "buckled near the latch"},
					{Key: "windshield", Value: "good"},
				},
			},
		},
	}
}

func TestIdentifyDamagedParts(t *testing.T) {
	svc, _ := newTestService(t)

	parts, err := svc.IdentifyDamagedParts(context.Background(), collisionBundle("assess-1"))
	if err != nil {
		t.Fatalf("IdentifyDamagedParts: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	byName := map[string]assessment.DamagedPart{}
	for _, p := range parts {
		byName[p.PartName] = p
		if p.ID == "" {
			t.Fatalf("part %q has no id", p.PartName)
		}
		if p.AssessmentID != "assess-1" {
			t.Fatalf("part %q assessment = %q", p.PartName, p.AssessmentID)
		}
		if p.EstimatedLaborHours <= 0 {
			t.Fatalf("part %q labor hours = %v", p.PartName, p.EstimatedLaborHours)
		}
	}
	hood, ok := byName["Hood"]
	if !ok {
		t.Fatal("hood not identified")
	}
	if hood.Severity != assessment.SeveritySevere {
		t.Fatalf("hood severity = %q", hood.Severity)
	}
	if hood.RequiresReplacement {
		t.Fatal("severe damage alone should not force replacement")
	}
	if byName["Front Bumper"].Severity != assessment.SeverityModerate {
		t.Fatalf("front bumper severity = %q", byName["Front Bumper"].Severity)
	}
}

func TestIdentifyRejectsOpenAssessments(t *testing.T) {
	svc, _ := newTestService(t)

	for _, status := range []assessment.AssessmentStatus{assessment.StatusDraft, assessment.StatusInProgress} {
		bundle := collisionBundle("assess-1")
		bundle.Status = status
		if _, err := svc.IdentifyDamagedParts(context.Background(), bundle); err == nil {
			t.Fatalf("status %q: want error", status)
		}
	}
}

func TestIdentifyIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.IdentifyDamagedParts(ctx, collisionBundle("assess-1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.IdentifyDamagedParts(ctx, collisionBundle("assess-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != len(first) {
		t.Fatalf("re-run changed part count: %d -> %d", len(first), len(second))
	}
	stored, err := store.ListDamagedParts("assess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("store holds %d parts, want 2", len(stored))
	}
	ids := map[string]bool{}
	for _, p := range first {
		ids[p.ID] = true
	}
	for _, p := range second {
		if !ids[p.ID] {
			t.Fatalf("re-run minted new id %s", p.ID)
		}
	}
}

// runPipeline identifies parts and dispatches one request per part to
// dealers and independents.
func runPipeline(t *testing.T, svc *Service) ([]assessment.DamagedPart, []quotes.QuoteRequest) {
	t.Helper()
	ctx := context.Background()
	parts, err := svc.IdentifyDamagedParts(ctx, collisionBundle("assess-1"))
	if err != nil {
		t.Fatal(err)
	}
	partIDs := make([]string, 0, len(parts))
	for _, p := range parts {
		partIDs = append(partIDs, p.ID)
	}
	sel := quotes.ProviderSelection{Dealer: true, Independent: true}
	reqs, err := svc.BatchCreateRequests(ctx, "assess-1", partIDs, sel, "adjuster-7")
	if err != nil {
		t.Fatal(err)
	}
	return parts, reqs
}

func quoteInput(provider quotes.ProviderType, name string, partCost float64, days int) quotes.QuoteInput {
	return quotes.QuoteInput{
		Provider:                provider,
		ProviderName:            name,
		PartCost:                partCost,
		LaborCost:               120.00,
		PaintCost:               30.00,
		AdditionalCosts:         7.50,
		PartType:                quotes.PartTypeOEM,
		EstimatedDeliveryDays:   days,
		EstimatedCompletionDays: days + 2,
		ValidUntil:              testNow.Add(30 * 24 * time.Hour),
	}
}

func TestBatchCreateRequests(t *testing.T) {
	svc, store := newTestService(t)
	parts, reqs := runPipeline(t, svc)

	if len(reqs) != len(parts) {
		t.Fatalf("got %d requests for %d parts", len(reqs), len(parts))
	}
	for _, r := range reqs {
		if r.Status != quotes.RequestSent {
			t.Fatalf("request %s status = %q", r.RequestID, r.Status)
		}
		if r.DispatchedBy != "adjuster-7" {
			t.Fatalf("request %s dispatched by %q", r.RequestID, r.DispatchedBy)
		}
		stored, err := store.GetQuoteRequest(r.ID)
		if err != nil {
			t.Fatalf("request %s not stored: %v", r.ID, err)
		}
		if stored.Status != quotes.RequestSent {
			t.Fatalf("stored request %s status = %q", r.RequestID, stored.Status)
		}
	}
}

func TestBatchCreateRejectsForeignParts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parts, err := svc.IdentifyDamagedParts(ctx, collisionBundle("assess-1"))
	if err != nil {
		t.Fatal(err)
	}
	sel := quotes.ProviderSelection{Dealer: true}
	if _, err := svc.BatchCreateRequests(ctx, "assess-2", []string{parts[0].ID}, sel, "adjuster-7"); err == nil {
		t.Fatal("want error for part from another assessment")
	}
}

func TestQuoteLifecycle(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, reqs := runPipeline(t, svc)
	req := reqs[0]

	q, err := svc.SubmitQuote(ctx, req.ID, quoteInput(quotes.ProviderDealer, "City Motors", 300.00, 3))
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if q.TotalCost != 457.50 {
		t.Fatalf("total = %v, want 457.50", q.TotalCost)
	}
	if q.Status != quotes.QuoteSubmitted {
		t.Fatalf("status = %q", q.Status)
	}

	validated, problems, err := svc.ValidateQuote(ctx, q.ID)
	if err != nil {
		t.Fatalf("ValidateQuote: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if validated.Status != quotes.QuoteValidated {
		t.Fatalf("status after validation = %q", validated.Status)
	}

	// Validation recomputes the part's market statistics.
	avg, err := store.GetMarketAverage(q.DamagedPartID)
	if err != nil {
		t.Fatalf("market average not stored: %v", err)
	}
	if avg.QuoteCount != 1 || avg.AverageTotalCost != 457.50 {
		t.Fatalf("average = %+v", avg)
	}

	accepted, err := svc.AcceptQuote(ctx, q.ID)
	if err != nil {
		t.Fatalf("AcceptQuote: %v", err)
	}
	if accepted.Status != quotes.QuoteAccepted {
		t.Fatalf("status after accept = %q", accepted.Status)
	}
	storedReq, err := store.GetQuoteRequest(req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if storedReq.Status != quotes.RequestReceived {
		t.Fatalf("request status after accept = %q", storedReq.Status)
	}
}

func TestValidateReportsProblemsWithoutFailing(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, reqs := runPipeline(t, svc)

	in := quoteInput(quotes.ProviderDealer, "City Motors", 300.00, 3)
	in.PartCost = 0
	q, err := svc.SubmitQuote(ctx, reqs[0].ID, in)
	if err != nil {
		t.Fatal(err)
	}
	_, problems, err := svc.ValidateQuote(ctx, q.ID)
	if err != nil {
		t.Fatalf("ValidateQuote: %v", err)
	}
	if len(problems) == 0 {
		t.Fatal("want validation problems for zero part cost")
	}
	stored, err := store.GetQuote(q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != quotes.QuoteSubmitted {
		t.Fatalf("failed validation changed status to %q", stored.Status)
	}
}

func TestRejectedQuoteStaysRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, reqs := runPipeline(t, svc)

	q, err := svc.SubmitQuote(ctx, reqs[0].ID, quoteInput(quotes.ProviderDealer, "City Motors", 300.00, 3))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RejectQuote(ctx, q.ID); err != nil {
		t.Fatalf("RejectQuote: %v", err)
	}
	if _, err := svc.AcceptQuote(ctx, q.ID); err == nil {
		t.Fatal("accepting a rejected quote should fail")
	}
}

func TestAssessmentRecommendationsAndSavings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	parts, reqs := runPipeline(t, svc)

	// Quote only the first part; the second stays without data.
	req := reqs[0]
	cheap, err := svc.SubmitQuote(ctx, req.ID, quoteInput(quotes.ProviderIndependent, "Budget Body", 300.00, 5))
	if err != nil {
		t.Fatal(err)
	}
	dear, err := svc.SubmitQuote(ctx, req.ID, quoteInput(quotes.ProviderDealer, "City Motors", 800.00, 3))
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{cheap.ID, dear.ID} {
		if _, problems, err := svc.ValidateQuote(ctx, id); err != nil || len(problems) > 0 {
			t.Fatalf("validate %s: err=%v problems=%v", id, err, problems)
		}
	}

	recs, err := svc.GenerateAssessmentRecommendations(ctx, "assess-1", recommend.StrategyLowestPrice)
	if err != nil {
		t.Fatalf("GenerateAssessmentRecommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1 (second part has no quotes)", len(recs))
	}
	rec, ok := recs[req.DamagedPartID]
	if !ok {
		t.Fatalf("no recommendation for quoted part; parts=%v", parts)
	}
	if rec.ChosenQuoteID != cheap.ID {
		t.Fatalf("lowest_price chose %s, want %s", rec.ChosenQuoteID, cheap.ID)
	}

	savings, err := svc.CalculatePotentialSavings(ctx, "assess-1")
	if err != nil {
		t.Fatalf("CalculatePotentialSavings: %v", err)
	}
	// best_value also picks the cheap quote here: equal part type, better
	// price and only slightly worse timeline. Savings is the 500.00 gap in
	// part cost.
	if savings != 500.00 {
		t.Fatalf("savings = %v, want 500.00", savings)
	}
}

func TestGenerateRecommendationUnknownStrategy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	runPipeline(t, svc)

	if _, err := svc.GenerateAssessmentRecommendations(ctx, "assess-1", recommend.Strategy("cheapest")); err == nil {
		t.Fatal("want error for unknown strategy")
	}
}

func TestExtendAndExpireRequests(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, reqs := runPipeline(t, svc)

	extended, err := svc.ExtendRequestExpiry(ctx, reqs[0].ID, 10)
	if err != nil {
		t.Fatalf("ExtendRequestExpiry: %v", err)
	}
	if !extended.ExpiryDate.After(reqs[0].ExpiryDate) {
		t.Fatalf("expiry not extended: %v -> %v", reqs[0].ExpiryDate, extended.ExpiryDate)
	}

	// Back-date the second request past its horizon, then sweep.
	stale, err := store.GetQuoteRequest(reqs[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	stale.ExpiryDate = testNow.Add(-time.Hour)
	if err := store.SaveQuoteRequest(&stale); err != nil {
		t.Fatal(err)
	}
	n, err := svc.ExpireStaleRequests(ctx)
	if err != nil {
		t.Fatalf("ExpireStaleRequests: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d requests, want 1", n)
	}
	swept, err := store.GetQuoteRequest(reqs[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if swept.Status != quotes.RequestExpired {
		t.Fatalf("status after sweep = %q", swept.Status)
	}
}
