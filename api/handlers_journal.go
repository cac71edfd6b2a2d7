package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/database"
	"github.com/ajayfbd/TradeMentor-v3-sub000/realtime"
)

// Journal Handlers (Emotion Check-ins & Trade Entries)

func (s *Server) handleGetEmotions(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 30)
	minLimit, maxLimit := 1, 1000
	limit := getIntParam(r, "limit", 200, &minLimit, &maxLimit)

	since := time.Now().AddDate(0, 0, -days)
	checks, err := s.repo.Journal.GetEmotionChecks(userID, since, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch emotion checks", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) handleCreateEmotion(w http.ResponseWriter, r *http.Request) {
	var check database.EmotionCheck
	if err := json.NewDecoder(r.Body).Decode(&check); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Reset ID to let DB assign it
	check.ID = 0
	if check.UserID == 0 {
		check.UserID = 1
	}
	if check.Timestamp.IsZero() {
		check.Timestamp = time.Now()
	}

	if err := s.repo.Journal.SaveEmotionCheck(&check); err != nil {
		respondWithSaveError(w, err)
		return
	}

	if s.broker != nil {
		s.broker.Broadcast(realtime.EventEmotionLogged, check)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(check)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 30)
	minLimit, maxLimit := 1, 1000
	limit := getIntParam(r, "limit", 200, &minLimit, &maxLimit)

	since := time.Now().AddDate(0, 0, -days)
	trades, err := s.repo.Journal.GetTradeEntries(userID, since, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch trade entries", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var trade database.TradeEntry
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Reset ID to let DB assign it
	trade.ID = 0
	if trade.UserID == 0 {
		trade.UserID = 1
	}
	if trade.EntryTime.IsZero() {
		trade.EntryTime = time.Now()
	}

	if err := s.repo.Journal.SaveTradeEntry(&trade); err != nil {
		respondWithSaveError(w, err)
		return
	}

	if s.broker != nil {
		s.broker.Broadcast(realtime.EventTradeLogged, trade)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(trade)
}
