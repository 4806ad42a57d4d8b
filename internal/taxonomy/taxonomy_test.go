package taxonomy

import "testing"

func TestNormalize_SingleInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  CareerPath
	}{
		{"exact canonical", "strategy", Strategy},
		{"synonym with casing", "Data Analytics", DataAnalytics},
		{"synonym", "Technology", Tech},
		{"case-insensitive canonical", "FINANCE", Finance},
		{"no match", "invalid-path", Unsure},
		{"whitespace trimmed", "  marketing  ", Marketing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if diag != nil {
				t.Errorf("Normalize(%q) emitted unexpected ambiguity diagnostic", tt.input)
			}
		})
	}
}

func TestNormalize_EmptyInputReturnsUnsure(t *testing.T) {
	got, diag := Normalize()
	if got != Unsure {
		t.Errorf("Normalize() = %s, want %s", got, Unsure)
	}
	if diag != nil {
		t.Error("empty input should not emit a diagnostic")
	}
}

func TestNormalize_PriorityTieBreak(t *testing.T) {
	got, diag := Normalize("strategy", "tech")
	if got != Strategy {
		t.Errorf("Normalize(strategy, tech) = %s, want %s", got, Strategy)
	}
	if diag == nil {
		t.Fatal("expected ambiguity diagnostic for two distinct matches")
	}
	if diag.Winner != Strategy {
		t.Errorf("diagnostic winner = %s, want %s", diag.Winner, Strategy)
	}
	if len(diag.Candidates) != 2 {
		t.Errorf("diagnostic candidates = %d, want 2", len(diag.Candidates))
	}
}

func TestNormalize_IgnoresUnmatchedAlongsideMatch(t *testing.T) {
	got, diag := Normalize("invalid", "tech")
	if got != Tech {
		t.Errorf("Normalize(invalid, tech) = %s, want %s", got, Tech)
	}
	if diag != nil {
		t.Error("single effective match should not emit a diagnostic")
	}
}

func TestNormalize_DuplicateInputsCollapse(t *testing.T) {
	got, diag := Normalize("tech", "Technology", "engineering")
	if got != Tech {
		t.Errorf("got %s, want %s", got, Tech)
	}
	if diag != nil {
		t.Error("same canonical tag via several synonyms is not ambiguous")
	}
}

func TestNormalize_FirstEncounteredWinsEqualPriority(t *testing.T) {
	// Two distinct tags with distinct priorities always have a strict winner;
	// feeding the winner first and second must agree.
	first, _ := Normalize("product", "strategy")
	second, _ := Normalize("strategy", "product")
	if first != second || first != Strategy {
		t.Errorf("order changed the winner: %s vs %s", first, second)
	}
}
