package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/cache"
	"github.com/ajayfbd/TradeMentor-v3-sub000/config"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database/analytics"
)

// stubSource is an in-memory PairSource that also tracks how many fetches
// run concurrently
type stubSource struct {
	trades []analytics.TradeRow
	checks []analytics.EmotionRow
	delay  time.Duration

	mu        sync.Mutex
	fetches   int
	active    int
	maxActive int
}

func (s *stubSource) FetchTradeRows(userID int64, since time.Time) ([]analytics.TradeRow, error) {
	s.mu.Lock()
	s.fetches++
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	return s.trades, nil
}

func (s *stubSource) FetchEmotionRows(userID int64, since time.Time) ([]analytics.EmotionRow, error) {
	return s.checks, nil
}

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		LookbackWindowHours:    6,
		MinTradesCorrelation:   10,
		MinTradesOptimal:       20,
		MinWeeksTrend:          3,
		MinSignificantSample:   30,
		SignificanceLevel:      0.05,
		CorrelationCacheTTLMin: 30,
		TrendCacheTTLMin:       60,
		InsightsCacheTTLMin:    120,
		OptimalCacheTTLMin:     120,
		MaxConcurrentReports:   2,
	}
}

// journalFixture builds n paired trades where return rises with emotion
// level, spread across the days before now
func journalFixture(n int, now time.Time) ([]analytics.TradeRow, []analytics.EmotionRow) {
	trades := make([]analytics.TradeRow, 0, n)
	checks := make([]analytics.EmotionRow, 0, n)
	for i := 0; i < n; i++ {
		level := i%10 + 1
		entry := now.Add(-time.Duration(i+1) * 12 * time.Hour)
		pnl := float64(level-5) * 10
		outcome := "win"
		if pnl < 0 {
			outcome = "loss"
		} else if pnl == 0 {
			outcome = "breakeven"
		}
		trades = append(trades, analytics.TradeRow{
			ID:         int64(i + 1),
			Symbol:     "AAPL",
			Outcome:    outcome,
			ProfitLoss: &pnl,
			EntryTime:  entry,
		})
		checks = append(checks, analytics.EmotionRow{
			ID:        int64(i + 1),
			Level:     level,
			Context:   "pre-trade",
			Timestamp: entry.Add(-30 * time.Minute),
		})
	}
	return trades, checks
}

func newTestEngine(source PairSource) *PatternEngine {
	// Nil redis disables caching so every call recomputes
	engine := NewPatternEngine(source, cache.NewReportCache(nil), testConfig())
	engine.now = func() time.Time {
		return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	}
	return engine
}

func TestCorrelationInsufficientData(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(5, now)
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetEmotionPerformanceCorrelation(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.InsufficientData {
		t.Error("expected insufficient data flag")
	}
	if report.Message == "" {
		t.Error("expected a message explaining the shortfall")
	}
	if report.SampleSize != 5 {
		t.Errorf("expected sample size 5, got %d", report.SampleSize)
	}
	if report.Coefficient != 0 || len(report.Levels) != 0 {
		t.Error("insufficient-data report must not carry statistics")
	}
}

func TestCorrelationReportComputed(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(40, now)
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetEmotionPerformanceCorrelation(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.InsufficientData {
		t.Fatalf("unexpected insufficient data: %s", report.Message)
	}
	if report.SampleSize != 40 {
		t.Errorf("expected 40 pairs, got %d", report.SampleSize)
	}

	// Return is a deterministic increasing function of level
	if !almostEqual(report.Coefficient, 1.0, 1e-6) {
		t.Errorf("expected perfect correlation, got %v", report.Coefficient)
	}
	if !report.Significant {
		t.Errorf("expected significance with r=%v p=%v n=%d", report.Coefficient, report.PValue, report.SampleSize)
	}
	if report.Strength != StrengthStrong {
		t.Errorf("expected strong, got %q", report.Strength)
	}
	if report.Direction != "positive" {
		t.Errorf("expected positive, got %q", report.Direction)
	}

	for _, lvl := range report.Levels {
		if lvl.WinRate < 0 || lvl.WinRate > 100 {
			t.Errorf("level %d win rate out of bounds: %v", lvl.Level, lvl.WinRate)
		}
		if lvl.Trades <= 0 {
			t.Errorf("level %d reported with no trades", lvl.Level)
		}
	}
	if len(report.Insights) == 0 {
		t.Error("expected insights for a significant correlation")
	}
}

func TestSignificanceRequiresMinimumSample(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// 20 pairs: enough to compute but below the significance floor of 30
	trades, checks := journalFixture(20, now)
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetEmotionPerformanceCorrelation(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.InsufficientData {
		t.Fatalf("unexpected insufficient data: %s", report.Message)
	}
	if report.PValue >= 0.05 {
		t.Fatalf("fixture should produce a tiny p-value, got %v", report.PValue)
	}
	if report.Significant {
		t.Error("significance must be withheld below the minimum sample size")
	}
}

func TestWeeklyTrend(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(40, now) // ~20 days, spans 3+ ISO weeks
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetWeeklyTrend(context.Background(), 1, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.InsufficientData {
		t.Fatalf("unexpected insufficient data: %s", report.Message)
	}
	if len(report.Points) < 3 {
		t.Fatalf("expected at least 3 weekly points, got %d", len(report.Points))
	}
	if report.Direction == "" {
		t.Error("expected a trend direction")
	}

	// Points must be chronological
	for i := 1; i < len(report.Points); i++ {
		prev, cur := report.Points[i-1], report.Points[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Week <= prev.Week) {
			t.Errorf("points out of order at %d: %v -> %v", i, prev, cur)
		}
	}
}

func TestWeeklyTrendInsufficientWeeks(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(4, now) // ~2 days of data
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetWeeklyTrend(context.Background(), 1, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.InsufficientData {
		t.Error("expected insufficient data for a 2-day journal")
	}
}

func TestOptimalConditionsInsufficientData(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(15, now) // below the floor of 20
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetOptimalConditions(context.Background(), 1, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.InsufficientData {
		t.Error("expected insufficient data below the optimal-conditions floor")
	}
}

func TestOptimalConditionsComputed(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(40, now)
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	report, err := engine.GetOptimalConditions(context.Background(), 1, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.InsufficientData {
		t.Fatalf("unexpected insufficient data: %s", report.Message)
	}

	if report.BestLevelLow == 0 || report.BestLevelHigh < report.BestLevelLow {
		t.Errorf("invalid best level band: [%d, %d]", report.BestLevelLow, report.BestLevelHigh)
	}
	if report.BestLevelHigh-report.BestLevelLow > 2 {
		t.Errorf("band wider than 3 levels: [%d, %d]", report.BestLevelLow, report.BestLevelHigh)
	}
	// The fixture's return rises with level, so the best band sits high
	if report.BestLevelHigh != 10 {
		t.Errorf("expected band to end at level 10, got %d", report.BestLevelHigh)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

// mapStore is an in-memory cache.ByteStore for exercising the report
// cache path without Redis
type mapStore struct {
	data map[string][]byte
}

func (m *mapStore) GetBytes(ctx context.Context, key string) ([]byte, error) {
	payload, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return payload, nil
}

func (m *mapStore) SetBytes(ctx context.Context, key string, payload []byte, expiration time.Duration) error {
	m.data[key] = payload
	return nil
}

func (m *mapStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestCorrelationReportServedFromCache(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(40, now)
	source := &stubSource{trades: trades, checks: checks}
	store := &mapStore{data: make(map[string][]byte)}
	engine := NewPatternEngine(source, cache.NewReportCacheWithStore(store), testConfig())
	engine.now = func() time.Time { return now }

	first, err := engine.GetEmotionPerformanceCorrelation(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.fetches != 1 {
		t.Fatalf("expected one source fetch, got %d", source.fetches)
	}
	if len(store.data) != 1 {
		t.Fatalf("expected one cached payload, got %d", len(store.data))
	}
	var cachedPayload []byte
	for _, payload := range store.data {
		cachedPayload = payload
	}

	// Move the clock forward within the TTL; the second call must return
	// the stored report verbatim without recomputing
	engine.now = func() time.Time { return now.Add(10 * time.Minute) }

	second, err := engine.GetEmotionPerformanceCorrelation(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.fetches != 1 {
		t.Errorf("cached call must not hit the source, got %d fetches", source.fetches)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Errorf("cached report must keep the original timestamp: %v vs %v", second.GeneratedAt, first.GeneratedAt)
	}

	secondBytes, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(secondBytes, cachedPayload) {
		t.Errorf("cached call must reproduce the stored payload byte for byte:\nstored: %s\ngot:    %s", cachedPayload, secondBytes)
	}
}

func TestHeavyReportsBoundedBySemaphore(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(40, now)
	source := &stubSource{trades: trades, checks: checks, delay: 50 * time.Millisecond}
	engine := newTestEngine(source)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := engine.GetEmotionPerformanceCorrelation(context.Background(), userID, 30); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if source.maxActive > 2 {
		t.Errorf("expected at most 2 concurrent heavy computations, observed %d", source.maxActive)
	}
	if source.maxActive == 0 {
		t.Error("expected the stub source to be exercised")
	}
}

func TestHeavyReportRespectsContextCancellation(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	trades, checks := journalFixture(40, now)
	engine := newTestEngine(&stubSource{trades: trades, checks: checks})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.GetEmotionPerformanceCorrelation(ctx, 1, 30); err == nil {
		t.Error("expected an error on a cancelled context")
	}
}
