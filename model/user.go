package model

import (
	"strings"
	"time"
)

// User is an account as persisted in the users collection.
// PasswordHash is stored on disk but never returned by the API; use Public.
type User struct {
	ID           string                 `json:"id"`
	Username     string                 `json:"username"`
	Email        string                 `json:"email"`
	PasswordHash string                 `json:"passwordHash"`
	CreatedAt    time.Time              `json:"createdAt"`
	Preferences  map[string]interface{} `json:"preferences"`
}

// PublicUser is the API representation of a User.
type PublicUser struct {
	ID          string                 `json:"id"`
	Username    string                 `json:"username"`
	Email       string                 `json:"email"`
	CreatedAt   time.Time              `json:"createdAt"`
	Preferences map[string]interface{} `json:"preferences"`
}

func (u User) RecordID() string { return u.ID }

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return NewValidationError("email", "is required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("passwordHash", "is required")
	}
	return nil
}

// Public strips credentials from the user.
func (u User) Public() PublicUser {
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]interface{}{}
	}
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		Preferences: prefs,
	}
}
