package app

import (
	"testing"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/database/analytics"
)

func floatPtr(f float64) *float64 {
	return &f
}

func tradeAt(id int64, entry time.Time, pnl *float64, outcome string) analytics.TradeRow {
	return analytics.TradeRow{
		ID:         id,
		Symbol:     "AAPL",
		Outcome:    outcome,
		ProfitLoss: pnl,
		EntryTime:  entry,
	}
}

func checkAt(id int64, level int, ts time.Time) analytics.EmotionRow {
	return analytics.EmotionRow{
		ID:        id,
		Level:     level,
		Context:   "pre-trade",
		Timestamp: ts,
	}
}

func TestMatchPairsMostRecentCheckWins(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	checks := []analytics.EmotionRow{
		checkAt(1, 3, base),                    // 09:00
		checkAt(2, 7, base.Add(2*time.Hour)),   // 11:00
		checkAt(3, 5, base.Add(30*time.Minute)), // 09:30, out of order on purpose
	}
	trades := []analytics.TradeRow{
		tradeAt(10, base.Add(3*time.Hour), floatPtr(50), "win"), // 12:00
	}

	pairs := MatchPairs(trades, checks, window)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].EmotionLevel != 7 {
		t.Errorf("expected most recent check (level 7), got level %d", pairs[0].EmotionLevel)
	}
	if pairs[0].Return != 50 {
		t.Errorf("expected return 50, got %v", pairs[0].Return)
	}
}

func TestMatchPairsEqualTimestampTiesToLaterCheck(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	// Two checks logged at the same instant; the later-logged one wins
	checks := []analytics.EmotionRow{
		checkAt(1, 3, base),
		checkAt(2, 9, base),
	}
	trades := []analytics.TradeRow{
		tradeAt(10, base.Add(time.Hour), floatPtr(25), "win"),
	}

	pairs := MatchPairs(trades, checks, window)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].EmotionLevel != 9 {
		t.Errorf("expected the later-logged check (level 9), got level %d", pairs[0].EmotionLevel)
	}

	// Also when the tied checks arrive out of source order relative to
	// other rows; the stable sort preserves logging order within the tie
	checks = []analytics.EmotionRow{
		checkAt(1, 3, base.Add(-time.Hour)),
		checkAt(2, 6, base),
		checkAt(3, 2, base),
	}
	pairs = MatchPairs(trades, checks, window)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].EmotionLevel != 2 {
		t.Errorf("expected the later-logged check (level 2), got level %d", pairs[0].EmotionLevel)
	}
}

func TestMatchPairsWindowBoundary(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	checks := []analytics.EmotionRow{checkAt(1, 5, base)}

	tests := []struct {
		name    string
		entry   time.Time
		matched bool
	}{
		{"Exactly at window edge", base.Add(6 * time.Hour), true},
		{"Just past window edge", base.Add(6*time.Hour + time.Second), false},
		{"Before the check", base.Add(-time.Minute), false},
		{"Same instant as check", base, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := []analytics.TradeRow{tradeAt(10, tt.entry, floatPtr(1), "win")}
			pairs := MatchPairs(trades, checks, window)
			if tt.matched && len(pairs) != 1 {
				t.Errorf("expected a match, got %d pairs", len(pairs))
			}
			if !tt.matched && len(pairs) != 0 {
				t.Errorf("expected no match, got %d pairs", len(pairs))
			}
		})
	}
}

func TestMatchPairsUnmatchedTradesDropped(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	checks := []analytics.EmotionRow{checkAt(1, 5, base)}
	trades := []analytics.TradeRow{
		tradeAt(10, base.Add(time.Hour), floatPtr(10), "win"),
		tradeAt(11, base.Add(20*time.Hour), floatPtr(-5), "loss"), // too far from any check
	}

	pairs := MatchPairs(trades, checks, window)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].TradeID != 10 {
		t.Errorf("expected trade 10, got %d", pairs[0].TradeID)
	}
}

func TestMatchPairsOrderedByEntryTime(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	checks := []analytics.EmotionRow{
		checkAt(1, 4, base),
		checkAt(2, 8, base.Add(4*time.Hour)),
	}
	// Trades supplied newest first
	trades := []analytics.TradeRow{
		tradeAt(11, base.Add(5*time.Hour), floatPtr(-3), "loss"),
		tradeAt(10, base.Add(time.Hour), floatPtr(7), "win"),
	}

	pairs := MatchPairs(trades, checks, window)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].TradeID != 10 || pairs[1].TradeID != 11 {
		t.Errorf("expected chronological order [10, 11], got [%d, %d]", pairs[0].TradeID, pairs[1].TradeID)
	}
	if pairs[0].EmotionLevel != 4 || pairs[1].EmotionLevel != 8 {
		t.Errorf("expected levels [4, 8], got [%d, %d]", pairs[0].EmotionLevel, pairs[1].EmotionLevel)
	}
}

func TestTradeReturnOutcomeFallback(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		trade    analytics.TradeRow
		expected float64
	}{
		{"Recorded P&L wins", tradeAt(1, base, floatPtr(123.45), "loss"), 123.45},
		{"Win without P&L", tradeAt(2, base, nil, "win"), 1.0},
		{"Loss without P&L", tradeAt(3, base, nil, "loss"), -1.0},
		{"Breakeven without P&L", tradeAt(4, base, nil, "breakeven"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tradeReturn(tt.trade); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMatchPairsEmptyInputs(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if pairs := MatchPairs(nil, []analytics.EmotionRow{checkAt(1, 5, base)}, time.Hour); pairs != nil {
		t.Errorf("expected nil for no trades, got %v", pairs)
	}
	if pairs := MatchPairs([]analytics.TradeRow{tradeAt(1, base, nil, "win")}, nil, time.Hour); pairs != nil {
		t.Errorf("expected nil for no checks, got %v", pairs)
	}
}
