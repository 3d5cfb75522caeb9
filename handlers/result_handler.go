package handlers

import (
	"net/http"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

type submitResultRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=side_a_win side_b_win draw side_a_win_forfeit side_b_win_forfeit draw_forfeit"`
}

func (h *ResultHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.resultService.SubmitResult(r.Context(), matchID, models.MatchOutcome(input.Outcome))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
