package models

import "time"

// Account is a registered login. Password holds the bcrypt hash, never the plaintext.
type Account struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string         `gorm:"size:20;not null;uniqueIndex"`
	Password  string         `gorm:"size:80;not null"`
	Profile   *FarmerProfile `gorm:"foreignKey:Username;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // joined on username
}
