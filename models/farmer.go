package models

import "time"

// Gender is the two-value enumeration accepted on a farmer profile.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Genders lists the accepted values in display order.
var Genders = []Gender{GenderMale, GenderFemale}

// FarmerProfile is owned by the Account with the same username.
type FarmerProfile struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Username    string    `gorm:"size:20;not null;uniqueIndex"`
	FirstName   string    `gorm:"size:20;not null"`
	Surname     string    `gorm:"size:20;not null"`
	Mobile      string    `gorm:"size:12;not null"`
	Gender      Gender    `gorm:"size:6;not null"`
	DateOfBirth time.Time `gorm:"not null"`
	NationalID  string    `gorm:"size:12;not null;uniqueIndex"`
}
