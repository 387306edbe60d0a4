package types

import (
	"time"

	"github.com/DoyleJ11/draft-arena/internal/engine"
)

// Snapshot is the sanitized session a client sees. Timestamps are unix
// milliseconds; null timer fields mean no phase timer is running.
type Snapshot struct {
	ID                string            `json:"id"`
	BlueTeamName      string            `json:"blueTeamName"`
	RedTeamName       string            `json:"redTeamName"`
	BlueReady         bool              `json:"blueReady"`
	RedReady          bool              `json:"redReady"`
	InProgress        bool              `json:"inProgress"`
	CurrentPhaseIndex int               `json:"currentPhaseIndex"`
	Stage             engine.Stage      `json:"stage"`
	CurrentPhase      *engine.Phase     `json:"currentPhase"`
	BluePicks         []engine.Champion `json:"bluePicks"`
	RedPicks          []engine.Champion `json:"redPicks"`
	BlueBans          []engine.Champion `json:"blueBans"`
	RedBans           []engine.Champion `json:"redBans"`
	CreatedAt         string            `json:"createdAt"`
	BlueConnected     bool              `json:"blueConnected"`
	RedConnected      bool              `json:"redConnected"`
	PendingChampion   *engine.Champion  `json:"pendingChampion"`
	PendingTeam       *engine.Team      `json:"pendingTeam"`
	IsSwapPhase       bool              `json:"isSwapPhase"`
	SwapTimeLeft      int               `json:"swapTimeLeft"`
	CanSwap           bool              `json:"canSwap"`
	PhaseStartTime    *int64            `json:"phaseStartTime"`
	PhaseTimeLeft     *int              `json:"phaseTimeLeft"`
	PhaseTimerActive  bool              `json:"phaseTimerActive"`
	IsPostDraft       bool              `json:"isPostDraft"`
	BlueSideChoice    *engine.Team      `json:"blueSideChoice"`
	RedSideChoice     *engine.Team      `json:"redSideChoice"`
	BlueNextGameReady bool              `json:"blueNextGameReady"`
	RedNextGameReady  bool              `json:"redNextGameReady"`
	FearlessBans      []engine.Champion `json:"fearlessBans"`
	GameNumber        int               `json:"gameNumber"`
}

// NewSnapshot converts s for the wire. timeLeft, when non-nil, overrides the
// stored phase time left with a freshly recomputed value.
func NewSnapshot(s engine.Session, timeLeft *int) *Snapshot {
	snap := &Snapshot{
		ID:                s.ID,
		BlueTeamName:      s.BlueTeamName,
		RedTeamName:       s.RedTeamName,
		BlueReady:         s.BlueReady,
		RedReady:          s.RedReady,
		InProgress:        s.InProgress,
		CurrentPhaseIndex: s.CurrentPhaseIndex,
		Stage:             engine.DeriveStage(s.CurrentPhaseIndex),
		BluePicks:         nonNil(s.BluePicks),
		RedPicks:          nonNil(s.RedPicks),
		BlueBans:          nonNil(s.BlueBans),
		RedBans:           nonNil(s.RedBans),
		CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339Nano),
		BlueConnected:     s.BlueConnected,
		RedConnected:      s.RedConnected,
		PendingChampion:   s.PendingChampion,
		PendingTeam:       optTeam(s.PendingTeam),
		IsSwapPhase:       s.IsSwapPhase,
		SwapTimeLeft:      s.SwapTimeLeft,
		CanSwap:           s.CanSwap,
		PhaseTimeLeft:     s.PhaseTimeLeft,
		PhaseTimerActive:  s.PhaseTimerActive,
		IsPostDraft:       s.IsPostDraft,
		BlueSideChoice:    optTeam(s.BlueSideChoice),
		RedSideChoice:     optTeam(s.RedSideChoice),
		BlueNextGameReady: s.BlueNextGameReady,
		RedNextGameReady:  s.RedNextGameReady,
		FearlessBans:      nonNil(s.FearlessBans),
		GameNumber:        s.GameNumber,
	}
	if phase, ok := engine.PhaseAt(s.CurrentPhaseIndex); ok {
		snap.CurrentPhase = &phase
	}
	if s.PhaseStartTime != nil {
		ms := s.PhaseStartTime.UnixMilli()
		snap.PhaseStartTime = &ms
	}
	if s.PhaseTimerActive && timeLeft != nil {
		snap.PhaseTimeLeft = timeLeft
	}
	return snap
}

// Summary is the trimmed per-session row of the sessions listing.
type Summary struct {
	ID                string `json:"id"`
	BlueTeamName      string `json:"blueTeamName"`
	RedTeamName       string `json:"redTeamName"`
	InProgress        bool   `json:"inProgress"`
	CurrentPhaseIndex int    `json:"currentPhaseIndex"`
	GameNumber        int    `json:"gameNumber"`
	CreatedAt         string `json:"createdAt"`
	BlueConnected     bool   `json:"blueConnected"`
	RedConnected      bool   `json:"redConnected"`
}

func NewSummary(s engine.Session) Summary {
	return Summary{
		ID:                s.ID,
		BlueTeamName:      s.BlueTeamName,
		RedTeamName:       s.RedTeamName,
		InProgress:        s.InProgress,
		CurrentPhaseIndex: s.CurrentPhaseIndex,
		GameNumber:        s.GameNumber,
		CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339Nano),
		BlueConnected:     s.BlueConnected,
		RedConnected:      s.RedConnected,
	}
}

func nonNil(list []engine.Champion) []engine.Champion {
	if list == nil {
		return []engine.Champion{}
	}
	return list
}

func optTeam(t engine.Team) *engine.Team {
	if t == "" {
		return nil
	}
	return &t
}
