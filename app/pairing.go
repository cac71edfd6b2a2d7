package app

import (
	"sort"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/database/analytics"
	models "github.com/ajayfbd/TradeMentor-v3-sub000/database/models_pkg"
)

// TradeEmotionPair is a trade entry matched to the most recent emotion
// check at or before its entry time. Pairs are the unit of analysis for
// every pattern report.
type TradeEmotionPair struct {
	TradeID        int64     `json:"trade_id"`
	Symbol         string    `json:"symbol"`
	Outcome        string    `json:"outcome"`
	Return         float64   `json:"return"`
	EntryTime      time.Time `json:"entry_time"`
	EmotionLevel   int       `json:"emotion_level"`
	EmotionContext string    `json:"emotion_context"`
	EmotionTime    time.Time `json:"emotion_time"`
}

// MatchPairs joins each trade to the most recent emotion check at or before
// its entry time, within the lookback window. Trades with no check in the
// window are dropped. When two checks share a timestamp the later-logged
// one wins. The result is ordered by trade entry time ascending.
func MatchPairs(trades []analytics.TradeRow, checks []analytics.EmotionRow, window time.Duration) []TradeEmotionPair {
	if len(trades) == 0 || len(checks) == 0 {
		return nil
	}

	sortedChecks := make([]analytics.EmotionRow, len(checks))
	copy(sortedChecks, checks)
	sort.SliceStable(sortedChecks, func(i, j int) bool {
		return sortedChecks[i].Timestamp.Before(sortedChecks[j].Timestamp)
	})

	sortedTrades := make([]analytics.TradeRow, len(trades))
	copy(sortedTrades, trades)
	sort.SliceStable(sortedTrades, func(i, j int) bool {
		return sortedTrades[i].EntryTime.Before(sortedTrades[j].EntryTime)
	})

	pairs := make([]TradeEmotionPair, 0, len(sortedTrades))
	for _, trade := range sortedTrades {
		// Last check with timestamp <= entry time
		idx := sort.Search(len(sortedChecks), func(i int) bool {
			return sortedChecks[i].Timestamp.After(trade.EntryTime)
		}) - 1
		if idx < 0 {
			continue
		}

		check := sortedChecks[idx]
		if trade.EntryTime.Sub(check.Timestamp) > window {
			continue
		}

		pairs = append(pairs, TradeEmotionPair{
			TradeID:        trade.ID,
			Symbol:         trade.Symbol,
			Outcome:        trade.Outcome,
			Return:         tradeReturn(trade),
			EntryTime:      trade.EntryTime,
			EmotionLevel:   check.Level,
			EmotionContext: check.Context,
			EmotionTime:    check.Timestamp,
		})
	}

	return pairs
}

// tradeReturn resolves the return of a trade. Recorded P&L wins; without
// one the outcome maps to a deterministic unit return so analysis over
// partially-logged journals stays reproducible.
func tradeReturn(trade analytics.TradeRow) float64 {
	if trade.ProfitLoss != nil {
		return *trade.ProfitLoss
	}
	switch trade.Outcome {
	case models.OutcomeWin:
		return 1.0
	case models.OutcomeLoss:
		return -1.0
	default:
		return 0
	}
}
