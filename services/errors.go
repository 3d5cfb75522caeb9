package services

import "errors"

// Sentinel errors for every failure the engine can report. Handlers translate
// them into HTTP statuses plus the machine-readable codes from ErrorCode, so
// callers can tell "already done" from "invalid request" from "precondition
// not met" without parsing messages.
var (
	// Not found
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Validation: rejected before any state change
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidRound     = errors.New("round number out of range")
	ErrUnknownStrategy  = errors.New("unknown pairing strategy")
	ErrInvalidOutcome   = errors.New("invalid match outcome")
	ErrUnknownTiebreak  = errors.New("unknown tiebreak name")
	ErrByeImmutable     = errors.New("bye results cannot be changed")
	ErrQuadsWholeEvent  = errors.New("quad schedules are generated for the whole event, not per round")
	ErrNoQuadSections   = errors.New("tournament has no quad sections")

	// Preconditions: valid request, wrong state; no partial effect
	ErrInsufficientParticipants = errors.New("not enough pairable participants in section")
	ErrPriorRoundIncomplete     = errors.New("previous round is not complete")
	ErrNoFeasiblePairing        = errors.New("no pairing without a rematch is possible")
	ErrRoundHasPendingResults   = errors.New("round has matches without a result")
	ErrRoundAlreadyComplete     = errors.New("round is already complete")
	ErrRoundNotGenerated        = errors.New("round has no generated matches")
	ErrForwardRoundExists       = errors.New("a later round has already been generated; reset it first")

	// Conflicts
	ErrPairingsAlreadyExist = errors.New("pairings already exist for this round; reset first")
)

// ErrorCode maps an engine error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTournamentNotFound),
		errors.Is(err, ErrSectionNotFound),
		errors.Is(err, ErrMatchNotFound):
		return "not_found"
	case errors.Is(err, ErrPairingsAlreadyExist):
		return "pairings_already_exist"
	case errors.Is(err, ErrPriorRoundIncomplete):
		return "prior_round_incomplete"
	case errors.Is(err, ErrInsufficientParticipants):
		return "insufficient_participants"
	case errors.Is(err, ErrNoFeasiblePairing):
		return "no_feasible_pairing"
	case errors.Is(err, ErrRoundAlreadyComplete):
		return "round_already_complete"
	case errors.Is(err, ErrByeImmutable):
		return "bye_immutable"
	case errors.Is(err, ErrRoundHasPendingResults),
		errors.Is(err, ErrRoundNotGenerated),
		errors.Is(err, ErrForwardRoundExists):
		return "precondition_failed"
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrInvalidRound),
		errors.Is(err, ErrUnknownStrategy),
		errors.Is(err, ErrInvalidOutcome),
		errors.Is(err, ErrUnknownTiebreak),
		errors.Is(err, ErrQuadsWholeEvent),
		errors.Is(err, ErrNoQuadSections):
		return "validation_failed"
	default:
		return "internal"
	}
}
