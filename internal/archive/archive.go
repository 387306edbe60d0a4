// Package archive keeps a record of every completed game. Live sessions are
// never persisted; only the final draft of each game is.
package archive

import (
	"context"
	"time"

	"github.com/DoyleJ11/draft-arena/internal/engine"
)

type GameRecord struct {
	SessionID    string    `json:"sessionId"`
	GameNumber   int       `json:"gameNumber"`
	BlueTeamName string    `json:"blueTeamName"`
	RedTeamName  string    `json:"redTeamName"`
	BluePicks    []string  `json:"bluePicks"`
	RedPicks     []string  `json:"redPicks"`
	BlueBans     []string  `json:"blueBans"`
	RedBans      []string  `json:"redBans"`
	FearlessBans []string  `json:"fearlessBans"`
	CompletedAt  time.Time `json:"completedAt"`
}

// FromSession captures a finished draft as champion ids.
func FromSession(s engine.Session, completedAt time.Time) GameRecord {
	return GameRecord{
		SessionID:    s.ID,
		GameNumber:   s.GameNumber,
		BlueTeamName: s.BlueTeamName,
		RedTeamName:  s.RedTeamName,
		BluePicks:    championIDs(s.BluePicks),
		RedPicks:     championIDs(s.RedPicks),
		BlueBans:     championIDs(s.BlueBans),
		RedBans:      championIDs(s.RedBans),
		FearlessBans: championIDs(s.FearlessBans),
		CompletedAt:  completedAt.UTC(),
	}
}

// Recorder accepts completed games. Record must not block the caller.
type Recorder interface {
	Record(GameRecord)
}

type Reader interface {
	Games(ctx context.Context, sessionID string) ([]GameRecord, error)
}

// Nop is used when no database is configured.
type Nop struct{}

func (Nop) Record(GameRecord) {}

func (Nop) Games(context.Context, string) ([]GameRecord, error) { return []GameRecord{}, nil }

func championIDs(list []engine.Champion) []string {
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return ids
}
