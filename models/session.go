package models

import "time"

// Session stores the sha256 of a login's session id so logout can revoke it.
type Session struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	AccountID uint       `gorm:"index;not null"`
	Account   *Account   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt *time.Time `gorm:"index"`
	Revoked   bool       `gorm:"default:false"`
}
