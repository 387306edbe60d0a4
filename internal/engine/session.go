package engine

import (
	"slices"
	"time"
)

type Team string

const (
	TeamBlue      Team = "BLUE"
	TeamRed       Team = "RED"
	TeamSpectator Team = "SPECTATOR"
	TeamBroadcast Team = "BROADCAST"
)

// Playing reports whether t is one of the two drafting sides.
func (t Team) Playing() bool { return t == TeamBlue || t == TeamRed }

func (t Team) Opponent() Team {
	switch t {
	case TeamBlue:
		return TeamRed
	case TeamRed:
		return TeamBlue
	default:
		return ""
	}
}

type Action string

const (
	ActionBan  Action = "BAN"
	ActionPick Action = "PICK"
)

type Stage string

const (
	StageBan1  Stage = "ban1"
	StagePick1 Stage = "pick1"
	StageBan2  Stage = "ban2"
	StagePick2 Stage = "pick2"
	StageDone  Stage = "done"
)

type Phase struct {
	Position int    `json:"position"`
	Team     Team   `json:"team"`
	Type     Action `json:"type"`
}

type Champion struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Title     string   `json:"title,omitempty"`
	Image     string   `json:"image,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	NumericID int      `json:"numericId,omitempty"`
}

const EmptyChampionID = "empty"

// EmptyChampion is recorded when a phase times out with nothing staged.
func EmptyChampion() Champion {
	return Champion{
		ID:        EmptyChampionID,
		Name:      "Empty Selection",
		Title:     "Timed Out",
		Roles:     []string{},
		NumericID: -1,
	}
}

func (c Champion) IsEmpty() bool { return c.ID == EmptyChampionID }

const (
	PlaceholderBlueName = "Blue Team"
	PlaceholderRedName  = "Red Team"
)

const DefaultSwapWindow = 60

type Rules struct {
	// SwapWindow is the length of the post-draft swap phase in seconds.
	SwapWindow int
}

func DefaultRules() Rules {
	return Rules{SwapWindow: DefaultSwapWindow}
}

type Session struct {
	ID           string
	BlueTeamName string
	RedTeamName  string
	BlueReady    bool
	RedReady     bool
	InProgress   bool

	CurrentPhaseIndex int
	BluePicks         []Champion
	RedPicks          []Champion
	BlueBans          []Champion
	RedBans           []Champion

	CreatedAt     time.Time
	BlueConnected bool
	RedConnected  bool

	PendingChampion *Champion
	PendingTeam     Team

	IsSwapPhase  bool
	SwapTimeLeft int
	CanSwap      bool

	PhaseStartTime   *time.Time
	PhaseTimeLeft    *int
	PhaseTimerActive bool

	IsPostDraft       bool
	BlueSideChoice    Team
	RedSideChoice     Team
	BlueNextGameReady bool
	RedNextGameReady  bool

	FearlessBans []Champion
	GameNumber   int

	Rules Rules
}

// NewSession returns a fresh game-one (or later, when seeded with fearless
// bans) session. Names are stored as given; callers validate and trim.
func NewSession(id, blueName, redName string, fearless []Champion, gameNumber int, rules Rules, now time.Time) *Session {
	if gameNumber < 1 {
		gameNumber = 1
	}
	if rules.SwapWindow <= 0 {
		rules.SwapWindow = DefaultSwapWindow
	}
	return &Session{
		ID:           id,
		BlueTeamName: blueName,
		RedTeamName:  redName,
		BluePicks:    []Champion{},
		RedPicks:     []Champion{},
		BlueBans:     []Champion{},
		RedBans:      []Champion{},
		CreatedAt:    now,
		SwapTimeLeft: rules.SwapWindow,
		CanSwap:      true,
		FearlessBans: append([]Champion{}, fearless...),
		GameNumber:   gameNumber,
		Rules:        rules,
	}
}

// Clone deep-copies s so the copy can leave the owner's lock.
func (s *Session) Clone() Session {
	c := *s
	c.BluePicks = slices.Clone(s.BluePicks)
	c.RedPicks = slices.Clone(s.RedPicks)
	c.BlueBans = slices.Clone(s.BlueBans)
	c.RedBans = slices.Clone(s.RedBans)
	c.FearlessBans = slices.Clone(s.FearlessBans)
	if s.PendingChampion != nil {
		p := *s.PendingChampion
		c.PendingChampion = &p
	}
	if s.PhaseStartTime != nil {
		t := *s.PhaseStartTime
		c.PhaseStartTime = &t
	}
	if s.PhaseTimeLeft != nil {
		n := *s.PhaseTimeLeft
		c.PhaseTimeLeft = &n
	}
	return c
}

func (s *Session) Complete() bool { return s.CurrentPhaseIndex >= PhaseCount }

func (s *Session) TeamName(t Team) string {
	if t == TeamRed {
		return s.RedTeamName
	}
	return s.BlueTeamName
}

func (s *Session) picks(t Team) *[]Champion {
	if t == TeamRed {
		return &s.RedPicks
	}
	return &s.BluePicks
}

func (s *Session) bans(t Team) *[]Champion {
	if t == TeamRed {
		return &s.RedBans
	}
	return &s.BlueBans
}

func (s *Session) ready(t Team) *bool {
	if t == TeamRed {
		return &s.RedReady
	}
	return &s.BlueReady
}

func (s *Session) sideChoice(t Team) *Team {
	if t == TeamRed {
		return &s.RedSideChoice
	}
	return &s.BlueSideChoice
}

func (s *Session) nextGameReady(t Team) *bool {
	if t == TeamRed {
		return &s.RedNextGameReady
	}
	return &s.BlueNextGameReady
}
