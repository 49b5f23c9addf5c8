package models

import "time"

// Session maps an opaque token to an authenticated user. Deleting the
// row revokes the session even if the client still holds a valid JWT.
type Session struct {
	Token     string    `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
}
