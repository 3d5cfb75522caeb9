package handlers

import (
	"net/http"

	"github.com/crosstable/pairing-system/services"
)

type PairingHandler struct {
	pairingService services.PairingService
}

func NewPairingHandler(pairingService services.PairingService) *PairingHandler {
	return &PairingHandler{pairingService: pairingService}
}

type generateRequest struct {
	Strategy string `json:"strategy" validate:"omitempty,oneof=swiss swiss_accelerated quads team"`
}

func (h *PairingHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
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

	var input generateRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	matches, err := h.pairingService.Generate(r.Context(), tournamentID, round, sectionID, input.Strategy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairingHandler) GenerateQuadsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedules, err := h.pairingService.GenerateQuads(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"schedules": schedules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type resetRequest struct {
	SectionID *int `json:"section_id" validate:"omitempty,min=1"`
}

func (h *PairingHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
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

	var input resetRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	if err := h.pairingService.Reset(r.Context(), tournamentID, round, input.SectionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"reset": true, "round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairingHandler) ListPairingsHandler(w http.ResponseWriter, r *http.Request) {
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
	sectionID, err := optionalIntQuery(r, "section_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.pairingService.ListPairings(r.Context(), tournamentID, round, sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairingHandler) TeamPairingsHandler(w http.ResponseWriter, r *http.Request) {
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

	pairings, err := h.pairingService.TeamPairings(r.Context(), tournamentID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_pairings": pairings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
