package engine

func DeriveStage(index int) Stage {
	switch {
	case index >= PhaseCount:
		return StageDone
	case index <= 5:
		return StageBan1
	case index <= 11:
		return StagePick1
	case index <= 15:
		return StageBan2
	default:
		return StagePick2
	}
}

type PhaseInfo struct {
	Phase       Phase
	HasPhase    bool
	Index       int
	Complete    bool
	TotalPhases int
}

func CurrentPhaseInfo(s *Session) PhaseInfo {
	phase, ok := PhaseAt(s.CurrentPhaseIndex)
	return PhaseInfo{
		Phase:       phase,
		HasPhase:    ok,
		Index:       s.CurrentPhaseIndex,
		Complete:    s.Complete(),
		TotalPhases: PhaseCount,
	}
}

// AllSelectedChampions lists this game's picks and bans, not fearless bans.
func AllSelectedChampions(s *Session) []Champion {
	all := make([]Champion, 0, len(s.BluePicks)+len(s.RedPicks)+len(s.BlueBans)+len(s.RedBans))
	all = append(all, s.BluePicks...)
	all = append(all, s.RedPicks...)
	all = append(all, s.BlueBans...)
	all = append(all, s.RedBans...)
	return all
}

func IsChampionAvailable(s *Session, id string) bool {
	return !containsChampion(AllSelectedChampions(s), id) && !containsChampion(s.FearlessBans, id)
}

type Stats struct {
	TotalBans    int  `json:"totalBans"`
	TotalPicks   int  `json:"totalPicks"`
	BlueBans     int  `json:"blueBans"`
	RedBans      int  `json:"redBans"`
	BluePicks    int  `json:"bluePicks"`
	RedPicks     int  `json:"redPicks"`
	CurrentPhase int  `json:"currentPhase"`
	IsComplete   bool `json:"isComplete"`
	InProgress   bool `json:"inProgress"`
}

func DraftStats(s *Session) Stats {
	return Stats{
		TotalBans:    len(s.BlueBans) + len(s.RedBans),
		TotalPicks:   len(s.BluePicks) + len(s.RedPicks),
		BlueBans:     len(s.BlueBans),
		RedBans:      len(s.RedBans),
		BluePicks:    len(s.BluePicks),
		RedPicks:     len(s.RedPicks),
		CurrentPhase: s.CurrentPhaseIndex,
		IsComplete:   s.Complete(),
		InProgress:   s.InProgress,
	}
}
