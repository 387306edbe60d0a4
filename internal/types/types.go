// Package types is the JSON wire protocol between the draft server and its
// clients. Every frame is a single JSON object with a "type" field.
//
// Client -> Server: createDraft, joinDraft, toggleReady, setPendingSelection,
// selectChampion, reorderTeam, chooseSide, toggleNextGameReady.
//
// Server -> Client: draftStateUpdate (full snapshot), draftComplete,
// pendingSelectionUpdate, teamReorder, nextGameDraftReady, error.
package types

import "github.com/DoyleJ11/draft-arena/internal/engine"

const (
	MsgCreateDraft         = "createDraft"
	MsgJoinDraft           = "joinDraft"
	MsgToggleReady         = "toggleReady"
	MsgSetPendingSelection = "setPendingSelection"
	MsgSelectChampion      = "selectChampion"
	MsgReorderTeam         = "reorderTeam"
	MsgChooseSide          = "chooseSide"
	MsgToggleNextGameReady = "toggleNextGameReady"
)

const (
	MsgDraftStateUpdate       = "draftStateUpdate"
	MsgDraftComplete          = "draftComplete"
	MsgPendingSelectionUpdate = "pendingSelectionUpdate"
	MsgTeamReorder            = "teamReorder"
	MsgNextGameDraftReady     = "nextGameDraftReady"
	MsgError                  = "error"
)

type ClientMessage struct {
	Type    string `json:"type"`
	DraftID string `json:"draftId"`

	// createDraft
	BlueTeamName string            `json:"blueTeamName,omitempty"`
	RedTeamName  string            `json:"redTeamName,omitempty"`
	FearlessBans []engine.Champion `json:"fearlessBans,omitempty"`
	GameNumber   int               `json:"gameNumber,omitempty"`

	// Team is a role (BLUE, RED, SPECTATOR, BROADCAST) or, on join, a team name.
	Team string `json:"team,omitempty"`

	// selectChampion / setPendingSelection; null means "nothing".
	Champion *engine.Champion `json:"champion,omitempty"`

	// reorderTeam
	SourceIndex int `json:"sourceIndex"`
	TargetIndex int `json:"targetIndex"`

	// chooseSide
	SideChoice string `json:"sideChoice,omitempty"`
}

type ServerMessage struct {
	Type     string            `json:"type"`
	Version  int               `json:"version,omitempty"`
	State    *Snapshot         `json:"state,omitempty"`
	Pending  *PendingSelection `json:"pending,omitempty"`
	Reorder  *Reorder          `json:"reorder,omitempty"`
	NextGame *NextGameReady    `json:"nextGame,omitempty"`
	Error    *ErrorPayload     `json:"error,omitempty"`
}

type PendingSelection struct {
	Champion *engine.Champion `json:"champion"`
	Team     engine.Team      `json:"team"`
}

type Reorder struct {
	Team        engine.Team `json:"team"`
	SourceIndex int         `json:"sourceIndex"`
	TargetIndex int         `json:"targetIndex"`
}

type NextGameReady struct {
	DraftID    string      `json:"draftId"`
	BlueSide   engine.Team `json:"blueSide"`
	RedSide    engine.Team `json:"redSide"`
	GameNumber int         `json:"gameNumber"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func ErrorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: MsgError, Error: &ErrorPayload{Message: message, Code: code}}
}
