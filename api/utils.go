package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ajayfbd/TradeMentor-v3-sub000/database"
)

// Report parameter bounds
const (
	minLookbackDays = 1
	maxLookbackDays = 365
	minTrendWeeks   = 1
	maxTrendWeeks   = 52
)

// setupSSE configures the response writer for Server-Sent Events streaming
// Returns the Flusher if supported, or an error if not
func setupSSE(w http.ResponseWriter) (http.Flusher, bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return flusher, true
}

// getIntParam retrieves an integer query parameter with default value and optional range validation
func getIntParam(r *http.Request, key string, defaultVal int, minVal, maxVal *int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}

	if minVal != nil && val < *minVal {
		return defaultVal
	}
	if maxVal != nil && val > *maxVal {
		return defaultVal
	}

	return val
}

// getInt64Param retrieves an int64 query parameter with a default value
func getInt64Param(r *http.Request, key string, defaultVal int64) int64 {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil || val <= 0 {
		return defaultVal
	}

	return val
}

// getDaysParam retrieves the lookback-days query parameter, clamped to a
// sane range
func getDaysParam(r *http.Request, defaultVal int) int {
	minVal, maxVal := minLookbackDays, maxLookbackDays
	return getIntParam(r, "days", defaultVal, &minVal, &maxVal)
}

// respondWithError logs the error and sends a JSON error response
// Use this to avoid exposing internal errors while still logging them
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Printf("API Error [%d]: %s - %v", code, message, err)
	} else {
		log.Printf("API Error [%d]: %s", code, message)
	}
	http.Error(w, message, code)
}

// respondWithSaveError maps a repository save failure to a response.
// Validation failures are the client's fault and surface as 400 with the
// validation message; anything else (connection loss, constraint errors)
// stays internal and surfaces as a generic 500.
func respondWithSaveError(w http.ResponseWriter, err error) {
	var validation *database.ValidationError
	if errors.As(err, &validation) {
		respondWithError(w, http.StatusBadRequest, validation.Error(), nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
}
