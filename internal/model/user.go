package model

import (
	"time"

	"github.com/google/uuid"
)

// User is any authenticated principal: candidates and staff alike.
// Role decides which permission set ends up in the JWT claims.
type User struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginRequest is the payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// RegisterCandidateRequest is the payload for candidate self sign-up.
type RegisterCandidateRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Name           string    `json:"name" binding:"required,min=2,max=255"`
	Password       string    `json:"password" binding:"required,min=8,max=72"`
}
