package journal

import (
	"testing"
	"time"

	models "github.com/ajayfbd/TradeMentor-v3-sub000/database/models_pkg"
)

func TestValidateEmotionCheck(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		check   models.EmotionCheck
		wantErr bool
	}{
		{
			name:    "Valid pre-trade check",
			check:   models.EmotionCheck{UserID: 1, Level: 5, Context: models.ContextPreTrade, Timestamp: now},
			wantErr: false,
		},
		{
			name:    "Missing user",
			check:   models.EmotionCheck{Level: 5, Context: models.ContextPreTrade},
			wantErr: true,
		},
		{
			name:    "Level too low",
			check:   models.EmotionCheck{UserID: 1, Level: 0, Context: models.ContextPreTrade},
			wantErr: true,
		},
		{
			name:    "Level too high",
			check:   models.EmotionCheck{UserID: 1, Level: 11, Context: models.ContextPreTrade},
			wantErr: true,
		},
		{
			name:    "Unknown context",
			check:   models.EmotionCheck{UserID: 1, Level: 5, Context: "lunch-break"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEmotionCheck(&tt.check)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTradeEntry(t *testing.T) {
	tests := []struct {
		name    string
		trade   models.TradeEntry
		wantErr bool
	}{
		{
			name:    "Valid win",
			trade:   models.TradeEntry{UserID: 1, Symbol: "AAPL", Outcome: models.OutcomeWin},
			wantErr: false,
		},
		{
			name:    "Missing symbol",
			trade:   models.TradeEntry{UserID: 1, Outcome: models.OutcomeLoss},
			wantErr: true,
		},
		{
			name:    "Unknown outcome",
			trade:   models.TradeEntry{UserID: 1, Symbol: "AAPL", Outcome: "scratch"},
			wantErr: true,
		},
		{
			name:    "Missing user",
			trade:   models.TradeEntry{Symbol: "AAPL", Outcome: models.OutcomeWin},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTradeEntry(&tt.trade)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
