package engine

import (
	"errors"
	"fmt"
)

var (
	ErrDraftNotActive         = errors.New("draft is not in progress")
	ErrInvalidPhase           = errors.New("invalid draft phase")
	ErrWrongTurn              = errors.New("invalid turn")
	ErrChampionTaken          = errors.New("champion already selected or banned")
	ErrFearlessBanned         = errors.New("champion banned in a previous game")
	ErrInvalidTeamAction      = errors.New("invalid team action")
	ErrDraftInProgress        = errors.New("draft in progress")
	ErrGameAlreadyCompleted   = errors.New("game already completed")
	ErrDraftNotComplete       = errors.New("draft not complete")
	ErrInvalidSourceIndex     = errors.New("invalid source index")
	ErrInvalidTargetIndex     = errors.New("invalid target index")
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")
	ErrNotPostDraft           = errors.New("not in post-draft phase")
	ErrInvalidSide            = errors.New("invalid side")
	ErrSideTaken              = errors.New("side already taken")
	ErrSideChoiceRequired     = errors.New("side choice required")
	ErrTeamsNotReady          = errors.New("teams not ready")
	ErrInvalidDraftID         = errors.New("invalid draft id")
	ErrInvalidBlueTeamName    = errors.New("invalid blue team name")
	ErrInvalidRedTeamName     = errors.New("invalid red team name")
	ErrDuplicateTeamNames     = errors.New("duplicate team names")
	ErrSessionNotFound        = errors.New("session not found")
	ErrTeamMismatch           = errors.New("team mismatch")
)

var codes = map[error]string{
	ErrDraftNotActive:         "DRAFT_NOT_ACTIVE",
	ErrInvalidPhase:           "INVALID_PHASE",
	ErrWrongTurn:              "WRONG_TEAM_TURN",
	ErrChampionTaken:          "CHAMPION_ALREADY_SELECTED",
	ErrFearlessBanned:         "CHAMPION_FEARLESS_BANNED",
	ErrInvalidTeamAction:      "INVALID_TEAM_ACTION",
	ErrDraftInProgress:        "DRAFT_IN_PROGRESS",
	ErrGameAlreadyCompleted:   "DRAFT_ALREADY_COMPLETE",
	ErrDraftNotComplete:       "DRAFT_NOT_COMPLETE",
	ErrInvalidSourceIndex:     "INVALID_SOURCE_INDEX",
	ErrInvalidTargetIndex:     "INVALID_TARGET_INDEX",
	ErrInvalidPhaseTransition: "INVALID_PHASE_TRANSITION",
	ErrNotPostDraft:           "NOT_POST_DRAFT",
	ErrInvalidSide:            "INVALID_SIDE",
	ErrSideTaken:              "SIDE_ALREADY_TAKEN",
	ErrSideChoiceRequired:     "SIDE_CHOICE_REQUIRED",
	ErrTeamsNotReady:          "TEAMS_NOT_READY",
	ErrInvalidDraftID:         "INVALID_DRAFT_ID",
	ErrInvalidBlueTeamName:    "INVALID_BLUE_TEAM_NAME",
	ErrInvalidRedTeamName:     "INVALID_RED_TEAM_NAME",
	ErrDuplicateTeamNames:     "DUPLICATE_TEAM_NAMES",
	ErrSessionNotFound:        "SESSION_NOT_FOUND",
	ErrTeamMismatch:           "TEAM_MISMATCH",
}

// ValidationError is a user-facing rejection. Message is safe to show to the
// initiating client; errors.Is matches the sentinel it was built from.
type ValidationError struct {
	Code    string
	Message string
	kind    error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.kind }

// Invalid builds a ValidationError for one of the sentinels above.
func Invalid(kind error, format string, args ...any) error {
	code, ok := codes[kind]
	if !ok {
		code = "VALIDATION_ERROR"
	}
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...), kind: kind}
}

// CodeOf returns the wire code for err, or "" if err is not a validation error.
func CodeOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
