package engine

import (
	"slices"
	"strings"
)

// ValidateChampionSelection checks that team may commit c at the session's
// current phase. A nil or empty champion skips the duplicate check.
func ValidateChampionSelection(c *Champion, team Team, s *Session) error {
	if !s.InProgress {
		return Invalid(ErrDraftNotActive, "Draft is not in progress")
	}

	phase, ok := PhaseAt(s.CurrentPhaseIndex)
	if !ok {
		return Invalid(ErrInvalidPhase, "Invalid draft phase")
	}

	if phase.Team != team {
		return Invalid(ErrWrongTurn, "It's not %s's turn. Current turn: %s", team, phase.Team)
	}

	if c == nil || c.IsEmpty() {
		return nil
	}
	if containsChampion(s.FearlessBans, c.ID) {
		return Invalid(ErrFearlessBanned, "%s was banned in a previous game (Fearless Draft)", c.Name)
	}
	if containsChampion(AllSelectedChampions(s), c.ID) {
		return Invalid(ErrChampionTaken, "%s is already selected or banned", c.Name)
	}
	return nil
}

// ValidatePendingSelection is the turn check shared with ValidateChampionSelection,
// without the duplicate check: previews are not commitments.
func ValidatePendingSelection(team Team, s *Session) error {
	if !s.InProgress {
		return Invalid(ErrDraftNotActive, "Draft is not in progress")
	}
	phase, ok := PhaseAt(s.CurrentPhaseIndex)
	if !ok {
		return Invalid(ErrInvalidPhase, "Invalid draft phase")
	}
	if phase.Team != team {
		return Invalid(ErrWrongTurn, "It's not %s's turn", team)
	}
	return nil
}

func ValidateReadyToggle(team Team, s *Session) error {
	if !team.Playing() {
		return Invalid(ErrInvalidTeamAction, "Spectators and broadcast viewers cannot ready up")
	}
	if s.InProgress {
		return Invalid(ErrDraftInProgress, "Cannot change ready state while draft is in progress")
	}
	if s.Complete() {
		return Invalid(ErrGameAlreadyCompleted, "Draft is already complete")
	}
	return nil
}

func ValidateTeamReorder(team Team, src, dst int, s *Session) error {
	if s.InProgress || !s.Complete() {
		return Invalid(ErrDraftNotComplete, "Can only reorder after draft is complete")
	}
	if !team.Playing() {
		return Invalid(ErrInvalidTeamAction, "Only drafting teams can reorder picks")
	}

	picks := *s.picks(team)
	if src < 0 || src >= len(picks) {
		return Invalid(ErrInvalidSourceIndex, "Invalid source index")
	}
	if dst < 0 || dst >= len(picks) {
		return Invalid(ErrInvalidTargetIndex, "Invalid target index")
	}
	return nil
}

func ValidateDraftCreation(id, blueName, redName string) error {
	if strings.TrimSpace(id) == "" {
		return Invalid(ErrInvalidDraftID, "Draft ID is required")
	}
	blue, red := strings.TrimSpace(blueName), strings.TrimSpace(redName)
	if blue == "" {
		return Invalid(ErrInvalidBlueTeamName, "Blue team name is required")
	}
	if red == "" {
		return Invalid(ErrInvalidRedTeamName, "Red team name is required")
	}
	if blue == red {
		return Invalid(ErrDuplicateTeamNames, "Team names must be different")
	}
	return nil
}

// ValidatePhaseTransition allows only a single step forward, including the
// step from the last phase to completion.
func ValidatePhaseTransition(current, next int) bool {
	if current < 0 || current >= PhaseCount {
		return false
	}
	return next == current+1
}

// ResolveTeamSide maps a join request's team field onto a role: a role literal
// wins, then an exact team name. Returns "" when nothing matches.
func ResolveTeamSide(input string, s *Session) Team {
	switch Team(input) {
	case TeamBlue, TeamRed, TeamSpectator, TeamBroadcast:
		return Team(input)
	}
	if s != nil && input != "" {
		if input == s.BlueTeamName {
			return TeamBlue
		}
		if input == s.RedTeamName {
			return TeamRed
		}
	}
	return ""
}

// IsRoleName reports whether input names a role in any letter case, in which
// case it must never be claimed as a custom team name.
func IsRoleName(input string) bool {
	switch strings.ToUpper(input) {
	case string(TeamBlue), string(TeamRed), string(TeamSpectator), string(TeamBroadcast):
		return true
	}
	return false
}

func containsChampion(list []Champion, id string) bool {
	return slices.ContainsFunc(list, func(c Champion) bool { return c.ID == id })
}
