// Package postgres stores snapshots as rows of a gorm-managed table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartkanban/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is one named document. The body is the whole JSON snapshot.
type Snapshot struct {
	Name      string `gorm:"primaryKey"`
	Body      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and makes sure the snapshots table exists.
func Open(dsn string) (*Store, error) {
	return OpenDialector(postgres.Open(dsn))
}

// OpenDialector is Open for an already configured gorm dialector. The
// connection pool is closed again if the migration fails.
func OpenDialector(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	s := New(db)
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Document returns the snapshot stored under name.
func (s *Store) Document(name string) storage.Document {
	return &document{db: s.db, name: name}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type document struct {
	db   *gorm.DB
	name string
}

func (d *document) Load(ctx context.Context) ([]byte, error) {
	var snap Snapshot
	err := d.db.WithContext(ctx).Where("name = ?", d.name).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", d.name, err)
	}
	return []byte(snap.Body), nil
}

func (d *document) Save(ctx context.Context, body []byte) error {
	snap := Snapshot{Name: d.name, Body: string(body), UpdatedAt: time.Now()}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", d.name, err)
	}
	return nil
}
