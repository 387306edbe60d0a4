package engine

// GameOrder is the fixed professional draft sequence. It is shared by every
// session and must never be mutated.
var GameOrder = [...]Phase{
	// Ban Phase 1
	{Position: 0, Team: TeamBlue, Type: ActionBan},
	{Position: 1, Team: TeamRed, Type: ActionBan},
	{Position: 2, Team: TeamBlue, Type: ActionBan},
	{Position: 3, Team: TeamRed, Type: ActionBan},
	{Position: 4, Team: TeamBlue, Type: ActionBan},
	{Position: 5, Team: TeamRed, Type: ActionBan},
	// Pick Phase 1
	{Position: 6, Team: TeamBlue, Type: ActionPick},
	{Position: 7, Team: TeamRed, Type: ActionPick},
	{Position: 8, Team: TeamRed, Type: ActionPick},
	{Position: 9, Team: TeamBlue, Type: ActionPick},
	{Position: 10, Team: TeamBlue, Type: ActionPick},
	{Position: 11, Team: TeamRed, Type: ActionPick},
	// Ban Phase 2
	{Position: 12, Team: TeamRed, Type: ActionBan},
	{Position: 13, Team: TeamBlue, Type: ActionBan},
	{Position: 14, Team: TeamRed, Type: ActionBan},
	{Position: 15, Team: TeamBlue, Type: ActionBan},
	// Pick Phase 2
	{Position: 16, Team: TeamRed, Type: ActionPick},
	{Position: 17, Team: TeamBlue, Type: ActionPick},
	{Position: 18, Team: TeamBlue, Type: ActionPick},
	{Position: 19, Team: TeamRed, Type: ActionPick},
}

// PhaseCount is N, the length of GameOrder.
const PhaseCount = len(GameOrder)

// PhaseAt returns the phase at index i, or false once the draft is past the end.
func PhaseAt(i int) (Phase, bool) {
	if i < 0 || i >= PhaseCount {
		return Phase{}, false
	}
	return GameOrder[i], true
}
