package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/ajayfbd/TradeMentor-v3-sub000/llm"
)

// Pattern Analysis Handlers

// handleCorrelation returns the emotion/performance correlation report
func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 30)

	report, err := s.engine.GetEmotionPerformanceCorrelation(r.Context(), userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute correlation", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleLevelStats returns per-emotion-level descriptive statistics
func (s *Server) handleLevelStats(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 30)

	report, err := s.engine.GetEmotionLevelStats(r.Context(), userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute level stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleWeeklyTrend returns the week-over-week emotion/performance trend
func (s *Server) handleWeeklyTrend(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	minW, maxW := minTrendWeeks, maxTrendWeeks
	weeks := getIntParam(r, "weeks", 12, &minW, &maxW)

	report, err := s.engine.GetWeeklyTrend(r.Context(), userID, weeks)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute weekly trend", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleInsights returns the rule-based pattern insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 30)

	report, err := s.engine.GetPatternInsights(r.Context(), userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute insights", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleOptimalConditions returns the user's best-performing conditions
func (s *Server) handleOptimalConditions(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 90)

	report, err := s.engine.GetOptimalConditions(r.Context(), userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute optimal conditions", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleGetSnapshots returns stored correlation snapshots for a user
func (s *Server) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	userID := getInt64Param(r, "user_id", 1)
	minLimit, maxLimit := 1, 500
	limit := getIntParam(r, "limit", 50, &minLimit, &maxLimit)

	snapshots, err := s.repo.Analytics.GetSnapshots(userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch snapshots", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshots)
}

// handleInsightsStream streams an LLM coaching narrative via SSE
func (s *Server) handleInsightsStream(w http.ResponseWriter, r *http.Request) {
	// Check if LLM is enabled
	if !s.llmEnabled || s.llmClient == nil {
		http.Error(w, "LLM is not enabled", http.StatusServiceUnavailable)
		return
	}

	userID := getInt64Param(r, "user_id", 1)
	days := getDaysParam(r, 30)

	correlation, err := s.engine.GetEmotionPerformanceCorrelation(r.Context(), userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute correlation", err)
		return
	}

	if correlation.InsufficientData {
		http.Error(w, correlation.Message, http.StatusNotFound)
		return
	}

	insights, err := s.engine.GetPatternInsights(r.Context(), userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute insights", err)
		return
	}

	// Set SSE headers
	flusher, ok := setupSSE(w)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}

	// Generate prompt
	summary := llm.PatternSummary{
		TimeframeDays: days,
		SampleSize:    correlation.SampleSize,
		Coefficient:   correlation.Coefficient,
		PValue:        correlation.PValue,
		Significant:   correlation.Significant,
		Strength:      correlation.Strength,
		Direction:     correlation.Direction,
	}
	for _, lvl := range correlation.Levels {
		if summary.BestLevel == 0 || lvl.WinRate > summary.BestWinRate {
			summary.BestLevel = lvl.Level
			summary.BestWinRate = lvl.WinRate
		}
		if summary.WorstLevel == 0 || lvl.WinRate < summary.WorstWinRate {
			summary.WorstLevel = lvl.Level
			summary.WorstWinRate = lvl.WinRate
		}
	}
	for _, ins := range insights.Insights {
		summary.Insights = append(summary.Insights, ins.Message)
	}
	prompt := llm.FormatPatternNarrativePrompt(summary)

	// Stream LLM response
	err = s.llmClient.AnalyzeStream(r.Context(), prompt, func(chunk string) error {
		// Properly format multi-line chunks for SSE
		lines := strings.Split(chunk, "\n")
		for i, line := range lines {
			if i < len(lines)-1 {
				fmt.Fprintf(w, "data: %s\n", line)
			} else {
				fmt.Fprintf(w, "data: %s\n\n", line)
			}
		}
		flusher.Flush()
		return nil
	})

	if err != nil {
		log.Printf("LLM streaming failed: %v", err)
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
		flusher.Flush()
		return
	}

	// Send completion event
	fmt.Fprintf(w, "event: done\ndata: Stream completed\n\n")
	flusher.Flush()
}
