// Package models contains database model definitions.
package models

import "time"

// Session is a persisted HTTP session, used when no dedicated session storage is configured.
type Session struct {
	ID        string `gorm:"primaryKey;size:128"`
	Data      []byte
	ExpiresAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the Session model.
func (Session) TableName() string {
	return "sessions"
}
