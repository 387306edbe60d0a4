package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	queueSize    = 128
	writeTimeout = 5 * time.Second
)

type gameRow struct {
	ID           uint      `gorm:"primaryKey"`
	SessionID    string    `gorm:"index;not null"`
	GameNumber   int       `gorm:"not null"`
	BlueTeamName string    `gorm:"not null"`
	RedTeamName  string    `gorm:"not null"`
	BluePicks    []string  `gorm:"serializer:json"`
	RedPicks     []string  `gorm:"serializer:json"`
	BlueBans     []string  `gorm:"serializer:json"`
	RedBans      []string  `gorm:"serializer:json"`
	FearlessBans []string  `gorm:"serializer:json"`
	CompletedAt  time.Time `gorm:"not null"`
	CreatedAt    time.Time
}

func (gameRow) TableName() string { return "draft_games" }

func toRow(r GameRecord) gameRow {
	return gameRow{
		SessionID:    r.SessionID,
		GameNumber:   r.GameNumber,
		BlueTeamName: r.BlueTeamName,
		RedTeamName:  r.RedTeamName,
		BluePicks:    r.BluePicks,
		RedPicks:     r.RedPicks,
		BlueBans:     r.BlueBans,
		RedBans:      r.RedBans,
		FearlessBans: r.FearlessBans,
		CompletedAt:  r.CompletedAt,
	}
}

func (row gameRow) record() GameRecord {
	return GameRecord{
		SessionID:    row.SessionID,
		GameNumber:   row.GameNumber,
		BlueTeamName: row.BlueTeamName,
		RedTeamName:  row.RedTeamName,
		BluePicks:    orEmpty(row.BluePicks),
		RedPicks:     orEmpty(row.RedPicks),
		BlueBans:     orEmpty(row.BlueBans),
		RedBans:      orEmpty(row.RedBans),
		FearlessBans: orEmpty(row.FearlessBans),
		CompletedAt:  row.CompletedAt,
	}
}

// Store writes game records to postgres from a single background worker.
type Store struct {
	db  *gorm.DB
	log *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan GameRecord
	done   chan struct{}
}

// Open connects to dsn and migrates the games table.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := db.AutoMigrate(&gameRow{}); err != nil {
		return nil, fmt.Errorf("migrate archive db: %w", err)
	}
	return NewStore(db, log), nil
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	s := &Store{
		db:    db,
		log:   log.Named("archive"),
		queue: make(chan GameRecord, queueSize),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// Record queues r for writing. A full queue or a closed store drops it.
func (s *Store) Record(r GameRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- r:
	default:
		s.log.Warn("archive queue full, dropping game", zap.String("draft_id", r.SessionID), zap.Int("game", r.GameNumber))
	}
}

func (s *Store) worker() {
	defer close(s.done)
	for r := range s.queue {
		if err := s.write(r); err != nil {
			s.log.Error("failed to archive game", zap.String("draft_id", r.SessionID), zap.Int("game", r.GameNumber), zap.Error(err))
			continue
		}
		s.log.Info("archived game", zap.String("draft_id", r.SessionID), zap.Int("game", r.GameNumber))
	}
}

func (s *Store) write(r GameRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	row := toRow(r)
	return s.db.WithContext(ctx).Create(&row).Error
}

// Games returns the archived games of sessionID, oldest first.
func (s *Store) Games(ctx context.Context, sessionID string) ([]GameRecord, error) {
	var rows []gameRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("game_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	out := make([]GameRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

// Close drains queued records and closes the connection pool.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
