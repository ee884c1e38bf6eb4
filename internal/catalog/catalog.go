package catalog

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Run is one invocation of the editor.
type Run struct {
	ID         uint `gorm:"primarykey"`
	StartedAt  time.Time
	FinishedAt time.Time
	InputDir   string
	OutputDir  string
	Style      string
	DryRun     bool
	Videos     []VideoRecord `gorm:"constraint:OnDelete:CASCADE"`
}

// VideoRecord is the outcome for a single source video inside a run.
type VideoRecord struct {
	ID             uint `gorm:"primarykey"`
	RunID          uint `gorm:"index"`
	File           string
	DurationSec    float64
	Width          int
	Height         int
	HighlightCount int
	Error          string
	Exports        []ExportRecord `gorm:"constraint:OnDelete:CASCADE"`
}

// ExportRecord is one file written for a video.
type ExportRecord struct {
	ID            uint `gorm:"primarykey"`
	VideoRecordID uint `gorm:"index"`
	Path          string
}

// Store is the sqlite-backed run ledger.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &VideoRecord{}, &ExportRecord{}); err != nil {
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}
	return &Store{db: db}, nil
}

// Record persists a completed run with all its video and export rows.
func (s *Store) Record(run *Run) error {
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Runs returns past runs newest-first, with associations loaded.
func (s *Store) Runs(limit int) ([]Run, error) {
	var runs []Run
	q := s.db.Preload("Videos").Preload("Videos.Exports").Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
