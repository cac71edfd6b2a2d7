package app

import (
	"testing"
	"time"
)

func pairWith(level int, ret float64, entry time.Time) TradeEmotionPair {
	return TradeEmotionPair{
		EmotionLevel:   level,
		EmotionContext: "pre-trade",
		Return:         ret,
		EntryTime:      entry,
	}
}

func TestComputeLevelStats(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pairs := []TradeEmotionPair{
		pairWith(3, 10, base),
		pairWith(3, -5, base.Add(time.Hour)),
		pairWith(3, 0, base.Add(2*time.Hour)),
		pairWith(7, 20, base.Add(3*time.Hour)),
	}

	stats := computeLevelStats(pairs)
	if len(stats) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(stats))
	}

	l3 := stats[0]
	if l3.Level != 3 {
		t.Fatalf("expected levels ordered ascending, got level %d first", l3.Level)
	}
	if l3.Trades != 3 || l3.Wins != 1 || l3.Losses != 1 || l3.Breakevens != 1 {
		t.Errorf("unexpected counts: %+v", l3)
	}
	if !almostEqual(l3.WinRate, 100.0/3.0, 1e-9) {
		t.Errorf("expected win rate 33.3, got %v", l3.WinRate)
	}
	if !almostEqual(l3.AvgReturn, 5.0/3.0, 1e-9) {
		t.Errorf("expected avg return 1.67, got %v", l3.AvgReturn)
	}
	if !almostEqual(l3.TotalPnL, 5, 1e-9) {
		t.Errorf("expected total pnl 5, got %v", l3.TotalPnL)
	}

	l7 := stats[1]
	if l7.ProfitFactor != profitFactorSentinel {
		t.Errorf("expected sentinel profit factor for loss-free level, got %v", l7.ProfitFactor)
	}
	if l7.WinRate != 100 {
		t.Errorf("expected 100%% win rate, got %v", l7.WinRate)
	}
}

func TestComputeContextStats(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pairs := []TradeEmotionPair{
		pairWith(5, 10, base),
		pairWith(5, -10, base.Add(time.Hour)),
	}
	pairs[1].EmotionContext = "post-trade"

	stats := computeContextStats(pairs)
	if len(stats) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(stats))
	}
	// Alphabetical order: post-trade before pre-trade
	if stats[0].Context != "post-trade" || stats[1].Context != "pre-trade" {
		t.Errorf("unexpected order: %v", stats)
	}
	if stats[0].WinRate != 0 || stats[1].WinRate != 100 {
		t.Errorf("unexpected win rates: %v", stats)
	}
}

func TestCorrelationStrength(t *testing.T) {
	tests := []struct {
		r        float64
		expected string
	}{
		{0.85, StrengthStrong},
		{-0.72, StrengthStrong},
		{0.6, StrengthModerate},
		{-0.5, StrengthModerate},
		{0.35, StrengthWeak},
		{0.1, StrengthVeryWeak},
		{0, StrengthVeryWeak},
	}

	for _, tt := range tests {
		if got := correlationStrength(tt.r); got != tt.expected {
			t.Errorf("correlationStrength(%v): expected %q, got %q", tt.r, tt.expected, got)
		}
	}
}

func TestCorrelationDirection(t *testing.T) {
	if correlationDirection(0.3) != "positive" || correlationDirection(-0.3) != "negative" || correlationDirection(0) != "flat" {
		t.Error("unexpected direction labels")
	}
}
