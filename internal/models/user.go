package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity that can create, receive and decide tasks
type User struct {
	ID           uuid.UUID
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Clone returns a copy of the user record
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Identity is the resolved caller of an operation
type Identity struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
}
