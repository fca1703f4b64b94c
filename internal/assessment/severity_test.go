package assessment

import "testing"

func TestNormalizeDamageBuckets(t *testing.T) {
	table := DefaultSeverityTable()
	cases := map[string]Severity{
		"light":        SeverityMinor,
		"minor":        SeverityMinor,
		"fair":         SeverityMinor,
		"intermittent": SeverityMinor,
		"moderate":     SeverityModerate,
		"poor":         SeverityModerate,
		"severe":       SeveritySevere,
		"not_working":  SeveritySevere,
		"destroyed":    SeverityReplace,
		"failed":       SeverityReplace,
	}
	for raw, want := range cases {
		if got := table.Normalize(raw); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeCleanValues(t *testing.T) {
	table := DefaultSeverityTable()
	for _, raw := range []string{"none", "good", "working", "excellent", "intact", "present"} {
		if got := table.Normalize(raw); got != SeverityNone {
			t.Errorf("Normalize(%q) = %q, want no damage", raw, got)
		}
	}
}

func TestNormalizeUnknownValueIsNoDamage(t *testing.T) {
	table := DefaultSeverityTable()
	for _, raw := range []string{"banana", "", "   ", "slightly dented"} {
		if got := table.Normalize(raw); got != SeverityNone {
			t.Errorf("Normalize(%q) = %q, want no damage", raw, got)
		}
	}
}

func TestNormalizeCaseAndWhitespaceInsensitive(t *testing.T) {
	table := DefaultSeverityTable()
	if got := table.Normalize("  MoDeRaTe "); got != SeverityModerate {
		t.Fatalf("Normalize mixed case = %q, want moderate", got)
	}
}

func TestMaxSeverityOrdering(t *testing.T) {
	if got := MaxSeverity(SeverityModerate, SeveritySevere); got != SeveritySevere {
		t.Fatalf("MaxSeverity(moderate, severe) = %q", got)
	}
	if got := MaxSeverity(SeveritySevere, SeverityModerate); got != SeveritySevere {
		t.Fatalf("MaxSeverity(severe, moderate) = %q", got)
	}
	// Ties keep the first value.
	if got := MaxSeverity(SeverityMinor, SeverityMinor); got != SeverityMinor {
		t.Fatalf("MaxSeverity tie = %q", got)
	}
}

func TestRequiresReplacement(t *testing.T) {
	cases := []struct {
		raw  string
		sev  Severity
		want bool
	}{
		{"destroyed", SeverityReplace, true},
		{"failed", SeverityReplace, true},
		{"severe", SeveritySevere, false},
		{"not_working", SeveritySevere, false},
		{"moderate", SeverityModerate, false},
	}
	for _, tc := range cases {
		if got := requiresReplacement(tc.raw, tc.sev); got != tc.want {
			t.Errorf("requiresReplacement(%q, %q) = %v, want %v", tc.raw, tc.sev, got, tc.want)
		}
	}
}
