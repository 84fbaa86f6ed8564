// Package models defines the server-side records persisted by the entity
// store and passed between services and transport.
package models

import "time"

// User is an authenticated principal. Email and UserName are unique.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
