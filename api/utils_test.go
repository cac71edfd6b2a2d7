package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	models "github.com/ajayfbd/TradeMentor-v3-sub000/database/models_pkg"
)

func TestRespondWithSaveErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithSaveError(rec, models.NewValidationError("level", "must be between 1 and 10"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a validation error, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "level") || !strings.Contains(body, "must be between 1 and 10") {
		t.Errorf("expected the validation message in the body, got %q", body)
	}
}

func TestRespondWithSaveErrorWrappedValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("CreateEmotionCheck: %w", models.NewValidationErrorWithValue("level", "must be between 1 and 10", 42))
	respondWithSaveError(rec, wrapped)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a wrapped validation error, got %d", rec.Code)
	}
}

func TestRespondWithSaveErrorInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithSaveError(rec, models.WrapDBError("CreateTradeEntry", fmt.Errorf("pq: connection refused to db-prod-1:5432")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a database error, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "db-prod-1") || strings.Contains(body, "pq:") {
		t.Errorf("internal error detail leaked to the client: %q", body)
	}
	if !strings.Contains(body, "Internal server error") {
		t.Errorf("expected a generic message, got %q", body)
	}
}
