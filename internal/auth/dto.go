// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Name            string `json:"name"             validate:"required,min=1,max=100"`
	Email           string `json:"email"            validate:"required,email,max=255"`
	Password        string `json:"password"         validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type VerifyResetRequest struct {
	Token string `json:"token" validate:"required"`
}

type ResetPasswordRequest struct {
	ResetSessionToken string `json:"reset_session_token" validate:"required"`
	Password          string `json:"password"            validate:"required,min=8,max=128"`
	PasswordConfirm   string `json:"password_confirm"    validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// VerifyResetResponse carries the second-stage reset session token the
// client exchanges for the actual password change.
type VerifyResetResponse struct {
	Message           string    `json:"message"`
	ResetSessionToken string    `json:"reset_session_token"`
	ExpiresAt         time.Time `json:"expires_at"`
}
