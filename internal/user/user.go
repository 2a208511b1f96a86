// Package user holds the persisted account records and their stores. The
// authentication subsystem reads them to verify credentials and mint claims;
// writes are limited to password changes and reset-token handling.
package user

import (
	"errors"
	"strings"
	"time"

	"molsnab.ru/internal/auth"
)

var (
	ErrNotFound     = errors.New("user: not found")
	ErrEmailTaken   = errors.New("user: email already exists")
	ErrInvalidInput = errors.New("user: invalid input")
)

// User is the persisted account record.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         auth.Role
	Access       int
	Active       bool
	Name         string
	INN          string
	ContractCode string
	Address      string
	Phone        string
	ResetToken   *string
	ResetExpires *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the sanitized projection returned to clients. It never carries
// the password hash or reset token.
type Public struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Role         auth.Role `json:"role"`
	Access       int       `json:"access"`
	Active       bool      `json:"active"`
	Name         string    `json:"name"`
	INN          string    `json:"inn"`
	ContractCode string    `json:"contract_code,omitempty"`
	Address      string    `json:"address,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the sanitized projection of the record.
func (u *User) Public() Public {
	return Public{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		Access:       u.Access,
		Active:       u.Active,
		Name:         u.Name,
		INN:          u.INN,
		ContractCode: u.ContractCode,
		Address:      u.Address,
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt,
	}
}

// Claims builds the identity claims embedded into access tokens.
func (u *User) Claims() auth.Claims {
	return auth.Claims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		INN:    u.INN,
		Role:   u.Role,
		Access: u.Access,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
