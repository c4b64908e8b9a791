package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
)

// GormStorage stores sessions in the sessions table through GORM.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage returns a GORM backed session storage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	if db == nil {
		panic("db is nil")
	}

	return &GormStorage{db: db}
}

// Get returns the data stored under key, nil when missing or expired.
func (s *GormStorage) Get(key string) ([]byte, error) {
	var row models.Session

	err := s.db.Where("id = ? AND expires_at > ?", key, time.Now().UTC()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return row.Data, nil
}

// Set stores val under key for exp.
func (s *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	row := models.Session{ID: key, Data: val, ExpiresAt: time.Now().UTC().Add(exp)}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

// Delete removes key.
func (s *GormStorage) Delete(key string) error {
	if err := s.db.Where("id = ?", key).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpired removes every expired session and returns how many were removed.
func (s *GormStorage) DeleteExpired() (int64, error) {
	res := s.db.Where("expires_at <= ?", time.Now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// RunGC deletes expired sessions every interval until ctx is done.
func (s *GormStorage) RunGC(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.DeleteExpired()
			if err != nil {
				log.Error().Err(err).Msg("session gc failed")

				continue
			}

			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired sessions removed")
			}
		}
	}
}
