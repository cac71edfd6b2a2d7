package app

import (
	"fmt"

	"github.com/ajayfbd/TradeMentor-v3-sub000/helpers"
)

// Minimum trades an emotion level or context needs before insight rules
// will single it out
const minInsightSample = 3

// synthesizeInsights maps correlation results and per-level/per-context
// statistics to human-readable recommendations
func synthesizeInsights(coefficient, pValue float64, significant bool, levels []EmotionLevelStats, contexts []ContextStats) []Insight {
	insights := make([]Insight, 0, 5)

	// 1. Correlation strength and direction
	strength := correlationStrength(coefficient)
	direction := correlationDirection(coefficient)
	msg := fmt.Sprintf("There is a %s %s relationship between your emotional state and trade returns (r=%.2f).",
		strength, direction, coefficient)
	if significant {
		msg += " This pattern is statistically significant."
	} else {
		msg += fmt.Sprintf(" Not yet statistically significant (p=%.3f); keep logging to firm it up.", pValue)
	}
	insights = append(insights, Insight{Type: "correlation", Message: msg})

	// 2. Best and worst performing emotion levels
	best, worst := bestAndWorstLevels(levels)
	if best != nil {
		insights = append(insights, Insight{
			Type: "best-level",
			Message: fmt.Sprintf("You perform best around emotion level %d: %s win rate and %s average return over %d trades.",
				best.Level, helpers.FormatWinRate(best.WinRate), helpers.FormatPnL(best.AvgReturn), best.Trades),
		})
	}
	if worst != nil && worst.AvgReturn < 0 {
		insights = append(insights, Insight{
			Type: "worst-level",
			Message: fmt.Sprintf("Emotion level %d has been costly: %s win rate and %s average return over %d trades. Consider sitting out when you check in at this level.",
				worst.Level, helpers.FormatWinRate(worst.WinRate), helpers.FormatPnL(worst.AvgReturn), worst.Trades),
		})
	}

	// 3. Context gap
	if c := widestContextGap(contexts); c != "" {
		insights = append(insights, Insight{Type: "context", Message: c})
	}

	// 4. Discipline note for high-intensity states
	if m := highIntensityWarning(levels); m != "" {
		insights = append(insights, Insight{Type: "discipline", Message: m})
	}

	return insights
}

// bestAndWorstLevels picks the levels with the highest and lowest average
// return among levels with enough trades to mean something
func bestAndWorstLevels(levels []EmotionLevelStats) (best, worst *EmotionLevelStats) {
	for i := range levels {
		s := &levels[i]
		if s.Trades < minInsightSample {
			continue
		}
		if best == nil || s.AvgReturn > best.AvgReturn {
			best = s
		}
		if worst == nil || s.AvgReturn < worst.AvgReturn {
			worst = s
		}
	}
	if best != nil && worst != nil && best.Level == worst.Level {
		// A single qualifying level is not a spread worth reporting
		worst = nil
	}
	return best, worst
}

// widestContextGap reports when one check-in context clearly outperforms
// another
func widestContextGap(contexts []ContextStats) string {
	var hi, lo *ContextStats
	for i := range contexts {
		c := &contexts[i]
		if c.Trades < minInsightSample {
			continue
		}
		if hi == nil || c.WinRate > hi.WinRate {
			hi = c
		}
		if lo == nil || c.WinRate < lo.WinRate {
			lo = c
		}
	}
	if hi == nil || lo == nil || hi.Context == lo.Context {
		return ""
	}
	gap := hi.WinRate - lo.WinRate
	if gap < 15 {
		return ""
	}
	return fmt.Sprintf("Trades logged after %s check-ins win %s of the time versus %s after %s check-ins.",
		hi.Context, helpers.FormatWinRate(hi.WinRate), helpers.FormatWinRate(lo.WinRate), lo.Context)
}

// highIntensityWarning flags losing performance in the 8-10 emotion band
func highIntensityWarning(levels []EmotionLevelStats) string {
	trades := 0
	totalReturn := 0.0
	for _, s := range levels {
		if s.Level >= 8 {
			trades += s.Trades
			totalReturn += s.TotalPnL
		}
	}
	if trades < minInsightSample || totalReturn >= 0 {
		return ""
	}
	return fmt.Sprintf("High-intensity emotional states (level 8+) have cost you %s across %d trades. A cooling-off rule before entering may help.",
		helpers.FormatPnL(totalReturn), trades)
}

// optimalRecommendations builds the recommendation strings for the
// optimal-conditions report
func optimalRecommendations(report *OptimalConditionsReport) []string {
	recs := make([]string, 0, 3)
	if report.BestLevelHigh > 0 {
		recs = append(recs, fmt.Sprintf("Your strongest results come when your emotion level is between %d and %d (avg return %s). Favor entries taken in that band.",
			report.BestLevelLow, report.BestLevelHigh, helpers.FormatPnL(report.BestLevelAvgReturn)))
	}
	if report.BestContext != "" {
		recs = append(recs, fmt.Sprintf("Trades preceded by a %s check-in have your best win rate (%s). Keep checking in before you act.",
			report.BestContext, helpers.FormatWinRate(report.BestContextWinRate)))
	}
	if report.BestWeekday != "" {
		recs = append(recs, fmt.Sprintf("%s has historically been your best day (avg return %s).",
			report.BestWeekday, helpers.FormatPnL(report.BestWeekdayReturn)))
	}
	return recs
}
