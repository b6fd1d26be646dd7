// Package identity authenticates staff users and administers their accounts.
package identity

import (
	"context"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// UserUpdate changes only the fields that are set.
type UserUpdate struct {
	FullName *string
	Password *string
}

// Provider is the external account system. Errors are AppErrors:
// UNAUTHORIZED for bad credentials or tokens, NOT_FOUND for unknown users.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)

	CreateUser(ctx context.Context, email, password, fullName string) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
	UpdateUser(ctx context.Context, userID string, upd UserUpdate) error
}

const MinPasswordLength = 6
