package domain

import "time"

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	ProfileID       string     `json:"profile_id,omitempty"`
	PasswordHash    string     `json:"-"`
	ResetTokenHash  string     `json:"-"`
	ResetExpiresAt  *time.Time `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
