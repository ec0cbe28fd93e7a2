package handlers

import (
	"net/http"

	"github.com/Dosada05/racket-club/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(leagueService services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagueService: leagueService}
}

type generateScheduleRequest struct {
	Rounds int `json:"rounds"`
}

func (h *LeagueHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.leagueService.ListLeagueMatches(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league_matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateSchedule defaults to a single round when the body is omitted.
func (h *LeagueHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input := generateScheduleRequest{Rounds: 1}
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.leagueService.GenerateLeagueSchedule(r.Context(), leagueID, input.Rounds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"league_matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req submitResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.leagueService.SubmitLeagueResult(r.Context(), matchID, req.input())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league_match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
