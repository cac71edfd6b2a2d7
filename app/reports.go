package app

import (
	"sort"
	"time"
)

// Correlation strength labels
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
	StrengthVeryWeak = "very weak"
)

// EmotionLevelStats holds descriptive statistics for all matched trades
// taken at a single emotion level
type EmotionLevelStats struct {
	Level        int     `json:"level"`
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Breakevens   int     `json:"breakevens"`
	WinRate      float64 `json:"win_rate"` // percent, 0-100
	AvgReturn    float64 `json:"avg_return"`
	StdDev       float64 `json:"std_dev"`
	Sharpe       float64 `json:"sharpe"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	ProfitFactor float64 `json:"profit_factor"`
	TotalPnL     float64 `json:"total_pnl"`
}

// ContextStats holds per-context win rates used by insight synthesis
type ContextStats struct {
	Context   string  `json:"context"`
	Trades    int     `json:"trades"`
	WinRate   float64 `json:"win_rate"`
	AvgReturn float64 `json:"avg_return"`
}

// CorrelationReport is the full emotion/performance correlation analysis
// for one user
type CorrelationReport struct {
	UserID           int64               `json:"user_id"`
	LookbackDays     int                 `json:"lookback_days"`
	SampleSize       int                 `json:"sample_size"`
	InsufficientData bool                `json:"insufficient_data"`
	Message          string              `json:"message,omitempty"`
	Coefficient      float64             `json:"coefficient"`
	PValue           float64             `json:"p_value"`
	Significant      bool                `json:"significant"`
	Strength         string              `json:"strength,omitempty"`
	Direction        string              `json:"direction,omitempty"`
	Levels           []EmotionLevelStats `json:"levels,omitempty"`
	Insights         []string            `json:"insights,omitempty"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// LevelStatsReport is the per-emotion-level descriptive statistics report
type LevelStatsReport struct {
	UserID           int64               `json:"user_id"`
	LookbackDays     int                 `json:"lookback_days"`
	SampleSize       int                 `json:"sample_size"`
	InsufficientData bool                `json:"insufficient_data"`
	Message          string              `json:"message,omitempty"`
	Levels           []EmotionLevelStats `json:"levels,omitempty"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// WeeklyTrendPoint is one ISO-week bucket of the trend report
type WeeklyTrendPoint struct {
	Year      int     `json:"year"`
	Week      int     `json:"week"`
	Trades    int     `json:"trades"`
	AvgLevel  float64 `json:"avg_level"`
	AvgReturn float64 `json:"avg_return"`
	WinRate   float64 `json:"win_rate"`
}

// WeeklyTrendReport tracks how emotion and performance move week over week
type WeeklyTrendReport struct {
	UserID           int64              `json:"user_id"`
	Weeks            int                `json:"weeks"`
	InsufficientData bool               `json:"insufficient_data"`
	Message          string             `json:"message,omitempty"`
	Points           []WeeklyTrendPoint `json:"points,omitempty"`
	Slope            float64            `json:"slope"`
	Direction        string             `json:"direction,omitempty"` // improving, declining, stable
	GeneratedAt      time.Time          `json:"generated_at"`
}

// InsightReport is the rule-based insight synthesis report
type InsightReport struct {
	UserID           int64     `json:"user_id"`
	LookbackDays     int       `json:"lookback_days"`
	SampleSize       int       `json:"sample_size"`
	InsufficientData bool      `json:"insufficient_data"`
	Message          string    `json:"message,omitempty"`
	Insights         []Insight `json:"insights,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Insight is a single human-readable recommendation
type Insight struct {
	Type    string `json:"type"` // correlation, best-level, worst-level, context, discipline
	Message string `json:"message"`
}

// OptimalConditionsReport names the emotional band and conditions under
// which a user historically performs best
type OptimalConditionsReport struct {
	UserID             int64     `json:"user_id"`
	LookbackDays       int       `json:"lookback_days"`
	SampleSize         int       `json:"sample_size"`
	InsufficientData   bool      `json:"insufficient_data"`
	Message            string    `json:"message,omitempty"`
	BestLevelLow       int       `json:"best_level_low,omitempty"`
	BestLevelHigh      int       `json:"best_level_high,omitempty"`
	BestLevelAvgReturn float64   `json:"best_level_avg_return,omitempty"`
	BestContext        string    `json:"best_context,omitempty"`
	BestContextWinRate float64   `json:"best_context_win_rate,omitempty"`
	BestWeekday        string    `json:"best_weekday,omitempty"`
	BestWeekdayReturn  float64   `json:"best_weekday_return,omitempty"`
	Recommendations    []string  `json:"recommendations,omitempty"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// computeLevelStats groups matched pairs by emotion level and computes the
// descriptive statistics for each populated level, ordered by level
func computeLevelStats(pairs []TradeEmotionPair) []EmotionLevelStats {
	byLevel := make(map[int][]TradeEmotionPair)
	for _, p := range pairs {
		byLevel[p.EmotionLevel] = append(byLevel[p.EmotionLevel], p)
	}

	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	stats := make([]EmotionLevelStats, 0, len(levels))
	for _, level := range levels {
		group := byLevel[level]

		// Pairs arrive ordered by entry time, so the per-level return
		// sequence preserves chronology for the drawdown calculation
		returns := make([]float64, len(group))
		s := EmotionLevelStats{Level: level, Trades: len(group)}
		for i, p := range group {
			returns[i] = p.Return
			s.TotalPnL += p.Return
			switch {
			case p.Return > 0:
				s.Wins++
			case p.Return < 0:
				s.Losses++
			default:
				s.Breakevens++
			}
		}

		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
		s.AvgReturn = meanOf(returns)
		s.StdDev = sampleStdDev(returns)
		s.Sharpe = sharpeRatio(returns)
		s.MaxDrawdown = maxDrawdown(returns)
		s.ProfitFactor = profitFactor(returns)

		stats = append(stats, s)
	}

	return stats
}

// computeContextStats groups matched pairs by emotion context
func computeContextStats(pairs []TradeEmotionPair) []ContextStats {
	byContext := make(map[string][]float64)
	for _, p := range pairs {
		byContext[p.EmotionContext] = append(byContext[p.EmotionContext], p.Return)
	}

	contexts := make([]string, 0, len(byContext))
	for c := range byContext {
		contexts = append(contexts, c)
	}
	sort.Strings(contexts)

	stats := make([]ContextStats, 0, len(contexts))
	for _, c := range contexts {
		returns := byContext[c]
		wins := 0
		for _, r := range returns {
			if r > 0 {
				wins++
			}
		}
		stats = append(stats, ContextStats{
			Context:   c,
			Trades:    len(returns),
			WinRate:   float64(wins) / float64(len(returns)) * 100,
			AvgReturn: meanOf(returns),
		})
	}

	return stats
}

// correlationStrength maps |r| to a strength label
func correlationStrength(r float64) string {
	abs := r
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 0.7:
		return StrengthStrong
	case abs >= 0.5:
		return StrengthModerate
	case abs >= 0.3:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// correlationDirection maps the sign of r to a direction label
func correlationDirection(r float64) string {
	switch {
	case r > 0:
		return "positive"
	case r < 0:
		return "negative"
	default:
		return "flat"
	}
}
