package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account roles.
const (
	RoleStudent   = "student"
	RoleLibrarian = "librarian"
)

// Account is an identity-provider account. Credentials live here, profile
// data lives on the StudentRecord. The password hash is part of the stored
// shape; response DTOs never expose accounts directly.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PRN          string    `json:"prn,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenClaims are the JWT claims carried by issued access tokens.
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
