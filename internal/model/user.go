package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the shape of a user returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// RefreshToken is a stored session credential. ExpiresAt is in Unix milliseconds.
type RefreshToken struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"`
}

func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt < now.UnixMilli()
}
