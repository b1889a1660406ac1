package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles known to the system. Admin unlocks user management.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an account that can obtain bearer tokens.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenClaims is the JWT payload carried by bearer tokens.
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
