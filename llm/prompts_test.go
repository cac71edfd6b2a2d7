package llm

import (
	"strings"
	"testing"
)

func TestFormatPatternNarrativePrompt(t *testing.T) {
	s := PatternSummary{
		TimeframeDays: 30,
		SampleSize:    42,
		Coefficient:   0.71,
		PValue:        0.002,
		Significant:   true,
		Strength:      "strong",
		Direction:     "positive",
		BestLevel:     6,
		BestWinRate:   72.5,
		WorstLevel:    9,
		WorstWinRate:  31.0,
		Insights:      []string{"You perform best around emotion level 6."},
	}

	prompt := FormatPatternNarrativePrompt(s)

	for _, want := range []string{
		"last 30 days",
		"42 paired trades",
		"+0.71",
		"p=0.002",
		"strong positive",
		"Best emotion level: 6",
		"Worst emotion level: 9",
		"You perform best around emotion level 6.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestFormatPatternNarrativePromptNotSignificant(t *testing.T) {
	prompt := FormatPatternNarrativePrompt(PatternSummary{
		TimeframeDays: 14,
		SampleSize:    12,
		Coefficient:   0.2,
		PValue:        0.4,
	})

	if !strings.Contains(prompt, "NOT statistically significant") {
		t.Errorf("expected tentative wording:\n%s", prompt)
	}
	if strings.Contains(prompt, "Best emotion level") {
		t.Errorf("unexpected best-level line for empty levels:\n%s", prompt)
	}
}
