// Package journal records every envelope a session exchanges with the server and can
// replay a recorded session through a fresh dispatcher.
package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

type Entry struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_journal_session_seq,priority:1"`
	Seq       int       `gorm:"not null;index:idx_journal_session_seq,priority:2"`
	Direction Direction `gorm:"type:varchar(3);not null"`
	Name      string    `gorm:"not null"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time
}

func (Entry) TableName() string { return "journal_entries" }

type Store interface {
	Append(ctx context.Context, entries ...Entry) error
	Session(ctx context.Context, id uuid.UUID) ([]Entry, error)
}

// DB is the Postgres-backed store.
type DB struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the journal table.
func Open(dsn string, verbose bool) (*DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if verbose {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("journal migration failed: %w", err)
	}
	return &DB{db: db}, nil
}

func (s *DB) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&entries).Error
}

func (s *DB) Session(ctx context.Context, id uuid.UUID) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("seq").
		Find(&out).Error
	return out, err
}

func (s *DB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Memory keeps entries in process, for tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *Memory) Session(_ context.Context, id uuid.UUID) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.SessionID == id {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}
