package handlers

import (
	"net/http"

	"github.com/crosstable/pairing-system/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

func (h *RoundHandler) CompleteRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := getIDFromURL(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sectionID, err := getIDFromURL(r, "sectionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	completion, err := h.roundService.Complete(r.Context(), tournamentID, round, sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"completion": completion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) ListRoundStatesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sectionID, err := getIDFromURL(r, "sectionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	states, err := h.roundService.States(r.Context(), tournamentID, sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": states}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
