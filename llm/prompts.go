package llm

import (
	"fmt"
	"strings"
)

// PatternSummary carries the computed pattern statistics that are fed
// into the narrative prompt. It mirrors the analytics report shape
// without importing it.
type PatternSummary struct {
	TimeframeDays  int
	SampleSize     int
	Coefficient    float64
	PValue         float64
	Significant    bool
	Strength       string
	Direction      string
	BestLevel      int
	BestWinRate    float64
	WorstLevel     int
	WorstWinRate   float64
	PreTradeCount  int
	PostTradeCount int
	Insights       []string
}

// FormatPatternNarrativePrompt builds the user prompt for the
// narrative insights stream
func FormatPatternNarrativePrompt(s PatternSummary) string {
	var b strings.Builder

	b.WriteString("Analyze this trader's emotion-performance statistics and write a short coaching narrative.\n\n")

	b.WriteString(fmt.Sprintf("Period: last %d days, %d paired trades\n", s.TimeframeDays, s.SampleSize))
	b.WriteString(fmt.Sprintf("Pearson correlation (emotion level vs. trade return): %+.2f (p=%.3f)\n", s.Coefficient, s.PValue))
	if s.Significant {
		b.WriteString(fmt.Sprintf("This is a statistically significant %s %s relationship.\n", s.Strength, s.Direction))
	} else {
		b.WriteString("The relationship is NOT statistically significant; treat it as tentative.\n")
	}

	if s.BestLevel > 0 {
		b.WriteString(fmt.Sprintf("Best emotion level: %d (%.1f%% win rate)\n", s.BestLevel, s.BestWinRate))
	}
	if s.WorstLevel > 0 {
		b.WriteString(fmt.Sprintf("Worst emotion level: %d (%.1f%% win rate)\n", s.WorstLevel, s.WorstWinRate))
	}
	if s.PreTradeCount > 0 || s.PostTradeCount > 0 {
		b.WriteString(fmt.Sprintf("Check-ins: %d pre-trade, %d post-trade\n", s.PreTradeCount, s.PostTradeCount))
	}

	if len(s.Insights) > 0 {
		b.WriteString("\nRule-based findings:\n")
		for _, ins := range s.Insights {
			b.WriteString("- " + ins + "\n")
		}
	}

	b.WriteString("\nWrite 3-5 sentences. Reference only the numbers above. End with one concrete habit to try this week.")

	return b.String()
}
