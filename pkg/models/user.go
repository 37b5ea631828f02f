package models

import (
	"time"
)

// User represents an application user profile. Profiles are created lazily
// on first sign-in with the starter credit balance.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Credit    int       `json:"credit" db:"credit"`
	IsPro     bool      `json:"is_pro" db:"is_pro"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasCredit reports whether the user may start a paid generation.
func (u *User) HasCredit() bool {
	return u.IsPro || u.Credit > 0
}

// JWTClaims represents session token claims.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ProfileEvent is pushed to profile subscribers after a credit mutation.
type ProfileEvent struct {
	UserID string    `json:"user_id"`
	Credit int       `json:"credit"`
	IsPro  bool      `json:"is_pro"`
	At     time.Time `json:"at"`
}
