package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"

	"github.com/clearviewclaims/appraisal/internal/appraisal"
	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/claimstore"
	"github.com/clearviewclaims/appraisal/internal/quotes"
	"github.com/clearviewclaims/appraisal/internal/recommend"
)

// quoteEntry is one provider quote in the -quotes input file, addressed to a
// part by its mapped name (e.g. "Front Bumper").
type quoteEntry struct {
	PartName string `json:"part_name"`
	quotes.QuoteInput
}

// resultEnvelope is the JSON document the run prints.
type resultEnvelope struct {
	AssessmentID     string                              `json:"assessment_id"`
	Parts            []assessment.DamagedPart            `json:"damaged_parts"`
	Requests         []quotes.QuoteRequest               `json:"quote_requests"`
	Quotes           []quotes.Quote                      `json:"quotes"`
	Problems         map[string][]string                 `json:"validation_problems,omitempty"`
	Recommendations  map[string]recommend.Recommendation `json:"recommendations,omitempty"`
	PotentialSavings float64                             `json:"potential_savings"`
}

func main() {
	assessmentPath := flag.String("assessment", "", "Path to assessment bundle JSON")
	quotesPath := flag.String("quotes", "", "Optional path to provider quotes JSON")
	configPath := flag.String("config", "", "Optional path to tuning YAML")
	dbPath := flag.String("db", "", "Optional SQLite path; in-memory when empty")
	strategy := flag.String("strategy", string(recommend.StrategyBestValue), "Recommendation strategy")
	providers := flag.String("providers", "dealer,independent", "Comma-separated provider types to solicit")
	dispatchedBy := flag.String("dispatched-by", "appraise-cli", "Dispatcher identity stamped on sent requests")
	outputPath := flag.String("output", "", "Path to write result JSON (defaults to stdout)")
	flag.Parse()

	if *assessmentPath == "" {
		log.Fatal("missing required -assessment")
	}

	ctx := context.Background()
	shutdown, err := setupTracing(ctx)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer shutdown()

	cfg := appraisal.ServiceConfig{}
	if *configPath != "" {
		cfg, err = appraisal.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	store, err := openStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	svc := appraisal.NewService(store, cfg)

	bundle, err := readBundle(*assessmentPath)
	if err != nil {
		log.Fatal(err)
	}
	entries, err := readQuotes(*quotesPath)
	if err != nil {
		log.Fatal(err)
	}
	sel, err := parseProviders(*providers)
	if err != nil {
		log.Fatal(err)
	}

	out, err := run(ctx, svc, bundle, entries, sel, *dispatchedBy, recommend.Strategy(*strategy))
	if err != nil {
		log.Fatal(err)
	}
	if err := writeResult(*outputPath, out); err != nil {
		log.Fatalf("write result: %v", err)
	}
}

func run(ctx context.Context, svc *appraisal.Service, bundle assessment.Bundle, entries []quoteEntry, sel quotes.ProviderSelection, dispatchedBy string, strategy recommend.Strategy) (resultEnvelope, error) {
	out := resultEnvelope{AssessmentID: bundle.AssessmentID}

	parts, err := svc.IdentifyDamagedParts(ctx, bundle)
	if err != nil {
		return out, err
	}
	out.Parts = parts
	log.Printf("identified %d damaged parts for assessment %s", len(parts), bundle.AssessmentID)

	partIDs := make([]string, 0, len(parts))
	requestByPartName := map[string]string{}
	for _, p := range parts {
		partIDs = append(partIDs, p.ID)
	}
	reqs, err := svc.BatchCreateRequests(ctx, bundle.AssessmentID, partIDs, sel, dispatchedBy)
	if err != nil {
		return out, err
	}
	out.Requests = reqs
	for _, r := range reqs {
		for _, p := range parts {
			if p.ID == r.DamagedPartID {
				requestByPartName[strings.ToLower(p.PartName)] = r.ID
			}
		}
	}
	log.Printf("dispatched %d quote requests", len(reqs))

	out.Problems = map[string][]string{}
	for _, entry := range entries {
		reqID, ok := requestByPartName[strings.ToLower(entry.PartName)]
		if !ok {
			return out, fmt.Errorf("quote for %q: no damaged part with that name", entry.PartName)
		}
		q, err := svc.SubmitQuote(ctx, reqID, entry.QuoteInput)
		if err != nil {
			return out, fmt.Errorf("submit quote from %s for %q: %w", entry.ProviderName, entry.PartName, err)
		}
		validated, problems, err := svc.ValidateQuote(ctx, q.ID)
		if err != nil {
			return out, err
		}
		if len(problems) > 0 {
			out.Problems[q.ID] = problems
			log.Printf("quote %s from %s failed validation: %s", q.ID, entry.ProviderName, strings.Join(problems, "; "))
			out.Quotes = append(out.Quotes, q)
			continue
		}
		out.Quotes = append(out.Quotes, validated)
	}
	if len(out.Problems) == 0 {
		out.Problems = nil
	}

	if len(out.Quotes) > 0 {
		recs, err := svc.GenerateAssessmentRecommendations(ctx, bundle.AssessmentID, strategy)
		if err != nil {
			return out, err
		}
		out.Recommendations = recs
		savings, err := svc.CalculatePotentialSavings(ctx, bundle.AssessmentID)
		if err != nil {
			return out, err
		}
		out.PotentialSavings = savings
	}
	return out, nil
}

func openStore(path string) (claimstore.API, error) {
	if path == "" {
		return claimstore.NewMemStore(), nil
	}
	return claimstore.NewSQLiteStore(path)
}

func readBundle(path string) (assessment.Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return assessment.Bundle{}, fmt.Errorf("read assessment: %w", err)
	}
	var bundle assessment.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return assessment.Bundle{}, fmt.Errorf("decode assessment JSON: %w", err)
	}
	return bundle, nil
}

func readQuotes(path string) ([]quoteEntry, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	var entries []quoteEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode quotes JSON: %w", err)
	}
	return entries, nil
}

func parseProviders(list string) (quotes.ProviderSelection, error) {
	var sel quotes.ProviderSelection
	for _, name := range strings.Split(list, ",") {
		switch quotes.ProviderType(strings.TrimSpace(name)) {
		case quotes.ProviderAssessor:
			sel.Assessor = true
		case quotes.ProviderDealer:
			sel.Dealer = true
		case quotes.ProviderIndependent:
			sel.Independent = true
		case quotes.ProviderNetwork:
			sel.Network = true
		default:
			return sel, fmt.Errorf("unknown provider type %q", strings.TrimSpace(name))
		}
	}
	return sel, nil
}

func writeResult(path string, out resultEnvelope) error {
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Println(string(b))
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// setupTracing wires the OTLP HTTP exporter when OTEL_EXPORTER_OTLP_ENDPOINT
// is set; otherwise spans stay in-process and are dropped.
func setupTracing(ctx context.Context) (func(), error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func() {}, nil
	}
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("appraise"),
	))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}, nil
}
