package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/services"
)

var errInvalidTopN = errors.New("top_n must be a positive integer")

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

func (h *StandingsHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sectionID, err := optionalIntQuery(r, "section_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var tiebreaks []string
	if raw := r.URL.Query().Get("tiebreaks"); raw != "" {
		tiebreaks = strings.Split(raw, ",")
	}

	tables, err := h.standingsService.Standings(r.Context(), tournamentID, sectionID, tiebreaks)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) TeamStandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var (
		mode *models.TeamScoringMode
		topN int
	)
	if raw := r.URL.Query().Get("method"); raw != "" {
		m := models.TeamScoringMode(raw)
		mode = &m
	}
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequestResponse(w, r, errInvalidTopN)
			return
		}
		topN = n
	}

	tables, err := h.standingsService.TeamStandings(r.Context(), tournamentID, mode, topN)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_standings": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
