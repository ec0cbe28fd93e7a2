package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/scoring"
	"github.com/Dosada05/racket-club/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	scoreErr := fmt.Errorf("%w: %w", services.ErrValidationFailed,
		&scoring.ScoreError{Reason: scoring.ReasonGamesTied, SetIndex: 2, Detail: "6-6"})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: %w", services.ErrValidationFailed, brackets.ErrInsufficientTeams), http.StatusUnprocessableEntity},
		{"score", scoreErr, http.StatusUnprocessableEntity},
		{"wrong format", services.ErrWrongFormat, http.StatusBadRequest},
		{"already generated", &services.AlreadyGeneratedError{CompetitionID: 1, Existing: "matches", Count: 3}, http.StatusConflict},
		{"already completed", &services.MatchAlreadyCompletedError{MatchID: 4, WinnerID: models.IntPtr(9)}, http.StatusConflict},
		{"stage locked", services.ErrStageLocked, http.StatusConflict},
		{"group stage incomplete", fmt.Errorf("%w: 3 of 6", services.ErrGroupStageIncomplete), http.StatusConflict},
		{"not ready", services.ErrMatchNotReady, http.StatusConflict},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"integrity", fmt.Errorf("%w: broken bracket", services.ErrIntegrity), http.StatusInternalServerError},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}

	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), scoreErr)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "GamesTied", body["reason"])
	assert.Equal(t, float64(2), body["set_index"])

	rec = httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), &services.MatchAlreadyCompletedError{MatchID: 4, WinnerID: models.IntPtr(9)})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(9), body["winner_id"])
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"rounds": 2}`, ""},
		{"empty", ``, "must not be empty"},
		{"unknown key", `{"rounds": 2, "legs": 1}`, "unknown key"},
		{"wrong type", `{"rounds": "two"}`, "incorrect JSON type"},
		{"two values", `{"rounds": 1}{"rounds": 2}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst generateScheduleRequest
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, 2, dst.Rounds)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
