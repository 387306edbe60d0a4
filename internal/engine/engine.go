package engine

// Every function here validates all of its preconditions before touching the
// session, so a returned error always means the session is unchanged.

// ToggleTeamReady flips team's ready flag. The draft goes live at index 0 as
// soon as both flags are set; arming the phase timer is the caller's job.
func ToggleTeamReady(s *Session, team Team) (started bool, err error) {
	if err := ValidateReadyToggle(team, s); err != nil {
		return false, err
	}

	r := s.ready(team)
	*r = !*r

	if s.BlueReady && s.RedReady && !s.InProgress {
		s.InProgress = true
		return true, nil
	}
	return false, nil
}

// SetPendingSelection stages a non-committing preview for the team on turn.
// A nil champion clears the preview.
func SetPendingSelection(s *Session, c *Champion, team Team) error {
	if err := ValidatePendingSelection(team, s); err != nil {
		return err
	}

	if c == nil {
		s.PendingChampion = nil
		s.PendingTeam = ""
		return nil
	}
	staged := *c
	s.PendingChampion = &staged
	s.PendingTeam = team
	return nil
}

// SelectChampion commits c for the current phase. nil commits the empty
// champion, which is what a timed-out phase records.
func SelectChampion(s *Session, c *Champion, team Team) error {
	if err := ValidateChampionSelection(c, team, s); err != nil {
		return err
	}

	phase := GameOrder[s.CurrentPhaseIndex]
	chosen := EmptyChampion()
	if c != nil {
		chosen = *c
	}

	if phase.Type == ActionPick {
		list := s.picks(team)
		*list = append(*list, chosen)
	} else {
		list := s.bans(team)
		*list = append(*list, chosen)
	}

	s.PendingChampion = nil
	s.PendingTeam = ""
	return nil
}

// AdvancePhase moves the draft forward exactly one phase. Reaching the end
// hands the session to the swap phase.
func AdvancePhase(s *Session) (complete bool, err error) {
	next := s.CurrentPhaseIndex + 1
	if !ValidatePhaseTransition(s.CurrentPhaseIndex, next) {
		return false, Invalid(ErrInvalidPhaseTransition, "Invalid phase transition")
	}

	s.CurrentPhaseIndex = next
	if next < PhaseCount {
		return false, nil
	}

	s.InProgress = false
	s.IsSwapPhase = true
	s.SwapTimeLeft = s.Rules.SwapWindow
	s.CanSwap = true
	return true, nil
}

// ReorderTeam swaps two of team's confirmed picks in place.
func ReorderTeam(s *Session, team Team, src, dst int) error {
	if err := ValidateTeamReorder(team, src, dst, s); err != nil {
		return err
	}
	picks := *s.picks(team)
	picks[src], picks[dst] = picks[dst], picks[src]
	return nil
}

// UpdateSwapPhase mirrors the swap countdown into the session. Once canSwap
// drops it stays false for the rest of the swap phase.
func UpdateSwapPhase(s *Session, timeLeft int, canSwap bool) {
	if !s.IsSwapPhase {
		return
	}
	s.SwapTimeLeft = max(timeLeft, 0)
	s.CanSwap = s.CanSwap && canSwap

	if timeLeft <= 0 {
		s.IsSwapPhase = false
		s.IsPostDraft = true
	}
}

// ChooseSide records which side team wants next game. Choosing the held side
// again deselects it; any change of choice also withdraws team's readiness.
func ChooseSide(s *Session, team Team, side Team) error {
	if !s.IsPostDraft {
		return Invalid(ErrNotPostDraft, "Can only choose sides during post-draft phase")
	}
	if !team.Playing() {
		return Invalid(ErrInvalidTeamAction, "Invalid team for side selection")
	}
	if !side.Playing() {
		return Invalid(ErrInvalidSide, "Side must be BLUE or RED")
	}

	current := s.sideChoice(team)
	if *current == side {
		*current = ""
		*s.nextGameReady(team) = false
		return nil
	}

	if *s.sideChoice(team.Opponent()) == side {
		return Invalid(ErrSideTaken, "%s side is already taken by %s team", side, team.Opponent())
	}

	if *current != "" {
		*s.nextGameReady(team) = false
	}
	*current = side
	return nil
}

func ToggleNextGameReady(s *Session, team Team) error {
	if !s.IsPostDraft {
		return Invalid(ErrNotPostDraft, "Can only ready up during post-draft phase")
	}
	if !team.Playing() {
		return Invalid(ErrInvalidTeamAction, "Invalid team for ready toggle")
	}
	if *s.sideChoice(team) == "" {
		return Invalid(ErrSideChoiceRequired, "Must choose a side before readying up")
	}

	r := s.nextGameReady(team)
	*r = !*r
	return nil
}

// NextGame is everything the following game of the series inherits.
type NextGame struct {
	// BlueSide and RedSide are the sides this game's BLUE and RED teams play next.
	BlueSide     Team
	RedSide      Team
	BlueTeamName string
	RedTeamName  string
	FearlessBans []Champion
	GameNumber   int
}

// CreateNextGameDraft derives the next game's setup once both teams have picked
// distinct sides and readied up. The session is not modified.
func CreateNextGameDraft(s *Session) (NextGame, error) {
	if !s.IsPostDraft || !s.BlueNextGameReady || !s.RedNextGameReady {
		return NextGame{}, Invalid(ErrTeamsNotReady, "Cannot create next game draft: teams not ready")
	}
	if s.BlueSideChoice == "" || s.RedSideChoice == "" {
		return NextGame{}, Invalid(ErrSideChoiceRequired, "Cannot create next game draft: side choices not complete")
	}
	if s.BlueSideChoice == s.RedSideChoice {
		return NextGame{}, Invalid(ErrSideTaken, "Cannot create next game draft: both teams chose %s", s.BlueSideChoice)
	}

	next := NextGame{
		BlueSide:     s.BlueSideChoice,
		RedSide:      s.RedSideChoice,
		BlueTeamName: s.BlueTeamName,
		RedTeamName:  s.RedTeamName,
		GameNumber:   s.GameNumber + 1,
	}
	if s.BlueSideChoice == TeamRed {
		next.BlueTeamName, next.RedTeamName = s.RedTeamName, s.BlueTeamName
	}

	fearless := make([]Champion, 0, len(s.FearlessBans)+len(s.BlueBans)+len(s.RedBans))
	fearless = append(fearless, s.FearlessBans...)
	fearless = append(fearless, s.BlueBans...)
	fearless = append(fearless, s.RedBans...)
	next.FearlessBans = fearless

	return next, nil
}

// TransitionToNextGame resets s in place for the next game. Both teams are
// considered ready, so the draft starts immediately.
func TransitionToNextGame(s *Session, next NextGame) {
	s.BlueReady = true
	s.RedReady = true
	s.InProgress = true
	s.CurrentPhaseIndex = 0

	s.BluePicks = []Champion{}
	s.RedPicks = []Champion{}
	s.BlueBans = []Champion{}
	s.RedBans = []Champion{}

	s.PendingChampion = nil
	s.PendingTeam = ""

	s.IsSwapPhase = false
	s.SwapTimeLeft = s.Rules.SwapWindow
	s.CanSwap = true

	s.PhaseStartTime = nil
	s.PhaseTimeLeft = nil
	s.PhaseTimerActive = false

	s.IsPostDraft = false
	s.BlueSideChoice = ""
	s.RedSideChoice = ""
	s.BlueNextGameReady = false
	s.RedNextGameReady = false

	s.BlueTeamName = next.BlueTeamName
	s.RedTeamName = next.RedTeamName
	if next.BlueSide == TeamRed {
		// presence follows the team to its new side
		s.BlueConnected, s.RedConnected = s.RedConnected, s.BlueConnected
	}
	s.FearlessBans = append([]Champion{}, next.FearlessBans...)
	s.GameNumber = next.GameNumber
}
