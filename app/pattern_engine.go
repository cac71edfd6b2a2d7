package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ajayfbd/TradeMentor-v3-sub000/cache"
	"github.com/ajayfbd/TradeMentor-v3-sub000/config"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database/analytics"
)

// PairSource supplies the journal rows the pattern engine analyzes.
// *analytics.Repository is the production implementation; tests substitute
// an in-memory source.
type PairSource interface {
	FetchTradeRows(userID int64, since time.Time) ([]analytics.TradeRow, error)
	FetchEmotionRows(userID int64, since time.Time) ([]analytics.EmotionRow, error)
}

// PatternEngine computes emotion/performance pattern reports. Reports are
// cached per user+parameters with fixed TTLs, and the two expensive report
// paths (correlation and optimal conditions) run under a counting semaphore
// so a burst of dashboard loads cannot saturate the database.
type PatternEngine struct {
	source  PairSource
	reports *cache.ReportCache
	cfg     config.AnalyticsConfig
	heavy   *semaphore.Weighted

	now func() time.Time // injectable for tests
}

// NewPatternEngine creates a pattern engine
func NewPatternEngine(source PairSource, reports *cache.ReportCache, cfg config.AnalyticsConfig) *PatternEngine {
	slots := cfg.MaxConcurrentReports
	if slots < 1 {
		slots = 1
	}
	return &PatternEngine{
		source:  source,
		reports: reports,
		cfg:     cfg,
		heavy:   semaphore.NewWeighted(int64(slots)),
		now:     time.Now,
	}
}

// GetEmotionPerformanceCorrelation computes the Pearson correlation between
// emotion level and trade return across all matched pairs, with per-level
// descriptive statistics and rule-based insights. Fewer than the minimum
// number of matched trades always yields the insufficient-data shape.
func (e *PatternEngine) GetEmotionPerformanceCorrelation(ctx context.Context, userID int64, days int) (*CorrelationReport, error) {
	params := fmt.Sprintf("days=%d", days)
	var cached CorrelationReport
	if e.fromCache(ctx, cache.ReportCorrelation, userID, params, &cached) {
		return &cached, nil
	}

	if err := e.heavy.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("GetEmotionPerformanceCorrelation: %w", err)
	}
	defer e.heavy.Release(1)

	pairs, err := e.matchedPairs(userID, days)
	if err != nil {
		return nil, fmt.Errorf("GetEmotionPerformanceCorrelation: %w", err)
	}

	report := &CorrelationReport{
		UserID:       userID,
		LookbackDays: days,
		SampleSize:   len(pairs),
		GeneratedAt:  e.now().UTC(),
	}

	if len(pairs) < e.cfg.MinTradesCorrelation {
		report.InsufficientData = true
		report.Message = fmt.Sprintf("insufficient data: need at least %d trades with matched emotion checks, found %d",
			e.cfg.MinTradesCorrelation, len(pairs))
		e.store(ctx, cache.ReportCorrelation, userID, params, report, e.cfg.CorrelationCacheTTLMin)
		return report, nil
	}

	levels := make([]float64, len(pairs))
	returns := make([]float64, len(pairs))
	for i, p := range pairs {
		levels[i] = float64(p.EmotionLevel)
		returns[i] = p.Return
	}

	report.Coefficient = pearsonCorrelation(levels, returns)
	report.PValue = correlationPValue(report.Coefficient, len(pairs))
	report.Significant = report.PValue < e.cfg.SignificanceLevel && len(pairs) >= e.cfg.MinSignificantSample
	report.Strength = correlationStrength(report.Coefficient)
	report.Direction = correlationDirection(report.Coefficient)
	report.Levels = computeLevelStats(pairs)

	contexts := computeContextStats(pairs)
	for _, insight := range synthesizeInsights(report.Coefficient, report.PValue, report.Significant, report.Levels, contexts) {
		report.Insights = append(report.Insights, insight.Message)
	}

	e.store(ctx, cache.ReportCorrelation, userID, params, report, e.cfg.CorrelationCacheTTLMin)
	return report, nil
}

// GetEmotionLevelStats computes the per-emotion-level descriptive
// statistics report
func (e *PatternEngine) GetEmotionLevelStats(ctx context.Context, userID int64, days int) (*LevelStatsReport, error) {
	params := fmt.Sprintf("days=%d", days)
	var cached LevelStatsReport
	if e.fromCache(ctx, cache.ReportLevels, userID, params, &cached) {
		return &cached, nil
	}

	pairs, err := e.matchedPairs(userID, days)
	if err != nil {
		return nil, fmt.Errorf("GetEmotionLevelStats: %w", err)
	}

	report := &LevelStatsReport{
		UserID:       userID,
		LookbackDays: days,
		SampleSize:   len(pairs),
		GeneratedAt:  e.now().UTC(),
	}

	if len(pairs) == 0 {
		report.InsufficientData = true
		report.Message = "insufficient data: no trades with matched emotion checks in the lookback window"
	} else {
		report.Levels = computeLevelStats(pairs)
	}

	e.store(ctx, cache.ReportLevels, userID, params, report, e.cfg.CorrelationCacheTTLMin)
	return report, nil
}

// GetWeeklyTrend buckets matched pairs into ISO weeks and reports how
// emotion level and returns move week over week
func (e *PatternEngine) GetWeeklyTrend(ctx context.Context, userID int64, weeks int) (*WeeklyTrendReport, error) {
	params := fmt.Sprintf("weeks=%d", weeks)
	var cached WeeklyTrendReport
	if e.fromCache(ctx, cache.ReportTrend, userID, params, &cached) {
		return &cached, nil
	}

	pairs, err := e.matchedPairs(userID, weeks*7)
	if err != nil {
		return nil, fmt.Errorf("GetWeeklyTrend: %w", err)
	}

	report := &WeeklyTrendReport{
		UserID:      userID,
		Weeks:       weeks,
		GeneratedAt: e.now().UTC(),
	}

	points := weeklyPoints(pairs)
	if len(points) < e.cfg.MinWeeksTrend {
		report.InsufficientData = true
		report.Message = fmt.Sprintf("insufficient data: need trades in at least %d distinct weeks, found %d",
			e.cfg.MinWeeksTrend, len(points))
		e.store(ctx, cache.ReportTrend, userID, params, report, e.cfg.TrendCacheTTLMin)
		return report, nil
	}

	report.Points = points

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = float64(i)
		y[i] = p.AvgReturn
	}
	report.Slope = linearSlope(x, y)
	switch {
	case report.Slope > 0:
		report.Direction = "improving"
	case report.Slope < 0:
		report.Direction = "declining"
	default:
		report.Direction = "stable"
	}

	e.store(ctx, cache.ReportTrend, userID, params, report, e.cfg.TrendCacheTTLMin)
	return report, nil
}

// GetPatternInsights produces the rule-based insight report
func (e *PatternEngine) GetPatternInsights(ctx context.Context, userID int64, days int) (*InsightReport, error) {
	params := fmt.Sprintf("days=%d", days)
	var cached InsightReport
	if e.fromCache(ctx, cache.ReportInsights, userID, params, &cached) {
		return &cached, nil
	}

	pairs, err := e.matchedPairs(userID, days)
	if err != nil {
		return nil, fmt.Errorf("GetPatternInsights: %w", err)
	}

	report := &InsightReport{
		UserID:       userID,
		LookbackDays: days,
		SampleSize:   len(pairs),
		GeneratedAt:  e.now().UTC(),
	}

	if len(pairs) < e.cfg.MinTradesCorrelation {
		report.InsufficientData = true
		report.Message = fmt.Sprintf("insufficient data: need at least %d trades with matched emotion checks, found %d",
			e.cfg.MinTradesCorrelation, len(pairs))
		e.store(ctx, cache.ReportInsights, userID, params, report, e.cfg.InsightsCacheTTLMin)
		return report, nil
	}

	levels := make([]float64, len(pairs))
	returns := make([]float64, len(pairs))
	for i, p := range pairs {
		levels[i] = float64(p.EmotionLevel)
		returns[i] = p.Return
	}
	r := pearsonCorrelation(levels, returns)
	p := correlationPValue(r, len(pairs))
	significant := p < e.cfg.SignificanceLevel && len(pairs) >= e.cfg.MinSignificantSample

	report.Insights = synthesizeInsights(r, p, significant, computeLevelStats(pairs), computeContextStats(pairs))

	e.store(ctx, cache.ReportInsights, userID, params, report, e.cfg.InsightsCacheTTLMin)
	return report, nil
}

// GetOptimalConditions names the emotion band, check-in context and weekday
// under which the user historically performs best
func (e *PatternEngine) GetOptimalConditions(ctx context.Context, userID int64, days int) (*OptimalConditionsReport, error) {
	params := fmt.Sprintf("days=%d", days)
	var cached OptimalConditionsReport
	if e.fromCache(ctx, cache.ReportOptimal, userID, params, &cached) {
		return &cached, nil
	}

	if err := e.heavy.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("GetOptimalConditions: %w", err)
	}
	defer e.heavy.Release(1)

	pairs, err := e.matchedPairs(userID, days)
	if err != nil {
		return nil, fmt.Errorf("GetOptimalConditions: %w", err)
	}

	report := &OptimalConditionsReport{
		UserID:       userID,
		LookbackDays: days,
		SampleSize:   len(pairs),
		GeneratedAt:  e.now().UTC(),
	}

	if len(pairs) < e.cfg.MinTradesOptimal {
		report.InsufficientData = true
		report.Message = fmt.Sprintf("insufficient data: need at least %d trades with matched emotion checks, found %d",
			e.cfg.MinTradesOptimal, len(pairs))
		e.store(ctx, cache.ReportOptimal, userID, params, report, e.cfg.OptimalCacheTTLMin)
		return report, nil
	}

	fillOptimalConditions(report, pairs)
	report.Recommendations = optimalRecommendations(report)

	e.store(ctx, cache.ReportOptimal, userID, params, report, e.cfg.OptimalCacheTTLMin)
	return report, nil
}

// matchedPairs loads the user's journal rows for the window and pairs each
// trade with its most recent emotion check
func (e *PatternEngine) matchedPairs(userID int64, days int) ([]TradeEmotionPair, error) {
	since := e.now().AddDate(0, 0, -days)
	lookback := time.Duration(e.cfg.LookbackWindowHours) * time.Hour

	trades, err := e.source.FetchTradeRows(userID, since)
	if err != nil {
		return nil, err
	}
	// Extend the check window backwards so trades near the window edge can
	// still match
	checks, err := e.source.FetchEmotionRows(userID, since.Add(-lookback))
	if err != nil {
		return nil, err
	}

	return MatchPairs(trades, checks, lookback), nil
}

// fromCache loads a cached report into dest, returning true on a hit
func (e *PatternEngine) fromCache(ctx context.Context, kind string, userID int64, params string, dest interface{}) bool {
	if !e.reports.Enabled() {
		return false
	}
	payload, ok := e.reports.GetReport(ctx, kind, userID, params)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		log.Printf("⚠️  Failed to decode cached %s report: %v", kind, err)
		return false
	}
	return true
}

// store caches a computed report; cache write failures are logged and the
// report is still returned to the caller
func (e *PatternEngine) store(ctx context.Context, kind string, userID int64, params string, report interface{}, ttlMinutes int) {
	if !e.reports.Enabled() {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		log.Printf("⚠️  Failed to encode %s report for cache: %v", kind, err)
		return
	}
	ttl := time.Duration(ttlMinutes) * time.Minute
	if err := e.reports.SetReport(ctx, kind, userID, params, payload, ttl); err != nil {
		log.Printf("⚠️  Failed to cache %s report: %v", kind, err)
	}
}

// weeklyPoints buckets pairs into ISO weeks, ordered chronologically
func weeklyPoints(pairs []TradeEmotionPair) []WeeklyTrendPoint {
	type weekKey struct {
		year int
		week int
	}
	buckets := make(map[weekKey][]TradeEmotionPair)
	for _, p := range pairs {
		year, week := p.EntryTime.ISOWeek()
		k := weekKey{year, week}
		buckets[k] = append(buckets[k], p)
	}

	keys := make([]weekKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	points := make([]WeeklyTrendPoint, 0, len(keys))
	for _, k := range keys {
		group := buckets[k]
		levelSum := 0.0
		returnSum := 0.0
		wins := 0
		for _, p := range group {
			levelSum += float64(p.EmotionLevel)
			returnSum += p.Return
			if p.Return > 0 {
				wins++
			}
		}
		n := float64(len(group))
		points = append(points, WeeklyTrendPoint{
			Year:      k.year,
			Week:      k.week,
			Trades:    len(group),
			AvgLevel:  levelSum / n,
			AvgReturn: returnSum / n,
			WinRate:   float64(wins) / n * 100,
		})
	}
	return points
}

// Minimum trades a candidate band/bucket needs in the optimal-conditions
// search
const minOptimalBucket = 5

// fillOptimalConditions finds the best contiguous emotion band (width up to
// 3 levels), best check-in context and best weekday by average return
func fillOptimalConditions(report *OptimalConditionsReport, pairs []TradeEmotionPair) {
	// Best contiguous level band
	byLevel := make(map[int][]float64)
	for _, p := range pairs {
		byLevel[p.EmotionLevel] = append(byLevel[p.EmotionLevel], p.Return)
	}
	bestFound := false
	var bestAvg float64
	for lo := 1; lo <= 10; lo++ {
		trades := 0
		total := 0.0
		for hi := lo; hi <= 10 && hi < lo+3; hi++ {
			for _, r := range byLevel[hi] {
				trades++
				total += r
			}
			if trades < minOptimalBucket {
				continue
			}
			avg := total / float64(trades)
			if !bestFound || avg > bestAvg {
				bestFound = true
				bestAvg = avg
				report.BestLevelLow = lo
				report.BestLevelHigh = hi
				report.BestLevelAvgReturn = avg
			}
		}
	}

	// Best context by win rate
	for _, c := range computeContextStats(pairs) {
		if c.Trades < minOptimalBucket {
			continue
		}
		if report.BestContext == "" || c.WinRate > report.BestContextWinRate {
			report.BestContext = c.Context
			report.BestContextWinRate = c.WinRate
		}
	}

	// Best weekday by average return
	byDay := make(map[time.Weekday][]float64)
	for _, p := range pairs {
		byDay[p.EntryTime.Weekday()] = append(byDay[p.EntryTime.Weekday()], p.Return)
	}
	bestDayFound := false
	for day := time.Sunday; day <= time.Saturday; day++ {
		returns := byDay[day]
		if len(returns) < minOptimalBucket {
			continue
		}
		avg := meanOf(returns)
		if !bestDayFound || avg > report.BestWeekdayReturn {
			bestDayFound = true
			report.BestWeekday = day.String()
			report.BestWeekdayReturn = avg
		}
	}
}
