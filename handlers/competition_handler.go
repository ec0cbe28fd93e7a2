package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/Dosada05/racket-club/services"
)

type CompetitionHandler struct {
	competitionService services.CompetitionService
	standingsService   services.StandingsService
}

func NewCompetitionHandler(competitionService services.CompetitionService, standingsService services.StandingsService) *CompetitionHandler {
	return &CompetitionHandler{
		competitionService: competitionService,
		standingsService:   standingsService,
	}
}

type generateGroupsRequest struct {
	NumberOfGroups int  `json:"number_of_groups"`
	Replace        bool `json:"replace"`
}

type generateKnockoutRequest struct {
	TeamsPerGroup int `json:"teams_per_group"`
}

func (h *CompetitionHandler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.competitionService.GetCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches accepts the optional filters stage, group_id, round and status.
func (h *CompetitionHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.competitionService.ListMatches(r.Context(), competitionID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func matchFilterFromQuery(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter
	q := r.URL.Query()

	if raw := q.Get("stage"); raw != "" {
		stage := models.MatchStage(raw)
		switch stage {
		case models.StageMain, models.StageRoundRobin, models.StageGroup, models.StageKnockout:
			filter.Stage = &stage
		default:
			return filter, errors.New("stage must be one of main, round_robin, group, knockout")
		}
	}
	if raw := q.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		if status != models.MatchStatusPending && status != models.MatchStatusCompleted {
			return filter, errors.New("status must be pending or completed")
		}
		filter.Status = &status
	}

	var err error
	if filter.GroupID, err = optionalIntQuery(r, "group_id"); err != nil {
		return filter, err
	}
	if filter.Round, err = optionalIntQuery(r, "round"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *CompetitionHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.competitionService.ListGroups(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitionHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	scope, err := services.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standingsService.GetStandings(r.Context(), competitionID, scope)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scope": scope.String(), "standings": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitionHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.competitionService.GenerateBracket(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitionHandler) GenerateGroups(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input generateGroupsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	generate := h.competitionService.GenerateGroupStage
	if input.Replace {
		generate = h.competitionService.RegenerateGroupStage
	}
	groups, err := generate(r.Context(), competitionID, input.NumberOfGroups)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitionHandler) GenerateKnockout(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input generateKnockoutRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.competitionService.GenerateKnockout(r.Context(), competitionID, input.TeamsPerGroup)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
