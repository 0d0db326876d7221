package model

import "time"

// User represents a registered account in the system.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	FirstName    string `json:"first_name" gorm:"size:50;not null"`
	LastName     string `json:"last_name" gorm:"size:50;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PhoneNumber  string `json:"phone_number" gorm:"size:32;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // Never expose in JSON

	IsEmailVerified bool `json:"is_email_verified" gorm:"default:false"`

	// VerificationCode and its expiration are present only while a
	// verification is pending; both are cleared once the code is consumed.
	VerificationCode          *string    `json:"-" gorm:"size:16"`
	VerificationCodeExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
