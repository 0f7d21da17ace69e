package main

import (
	"errors"
	"fmt"

	"farmrecords/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

// registerAccount hashes the password and inserts the account. The username
// is checked first so a conflict never creates a row; the unique index
// catches a concurrent registration that slips past the check.
func registerAccount(db *gorm.DB, username, password string) (*models.Account, error) {
	taken, err := usernameTaken(db, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := models.Account{Username: username, Password: string(hashed)}
	if err := db.Create(&acc).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &acc, nil
}

// authenticate returns ErrInvalidCredentials for both an unknown username and
// a wrong password.
func authenticate(db *gorm.DB, username, password string) (*models.Account, error) {
	var acc models.Account
	if err := db.Where("username = ?", username).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &acc, nil
}

func resetPassword(db *gorm.DB, username, password string) error {
	var acc models.Account
	if err := db.Where("username = ?", username).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := db.Model(&acc).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func usernameTaken(db *gorm.DB, username string) (bool, error) {
	var n int64
	if err := db.Model(&models.Account{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func nationalIDTaken(db *gorm.DB, nationalID string, exceptProfileID uint) (bool, error) {
	var n int64
	q := db.Model(&models.FarmerProfile{}).Where("national_id = ?", nationalID)
	if exceptProfileID != 0 {
		q = q.Where("id <> ?", exceptProfileID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check national id: %w", err)
	}
	return n > 0, nil
}

// findProfile returns nil without error when the account has no profile yet.
func findProfile(db *gorm.DB, username string) (*models.FarmerProfile, error) {
	var p models.FarmerProfile
	if err := db.Where("username = ?", username).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}
