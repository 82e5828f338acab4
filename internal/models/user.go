package models

import "time"

// User represents an operator account. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "admin" or "member"
	CreatedAt    time.Time `json:"created_at"`
}
