// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                     string     `db:"id"`
	Email                  string     `db:"email"`
	PasswordHash           string     `db:"password_hash"`
	Name                   string     `db:"name"`
	Role                   string     `db:"role"`
	IsActive               bool       `db:"is_active"`
	VerifiedAt             *time.Time `db:"verified_at"`
	VerificationTokenHash  *string    `db:"verification_token_hash"`
	VerificationExpires    *time.Time `db:"verification_expires"`
	PasswordResetTokenHash *string    `db:"password_reset_token_hash"`
	PasswordResetExpires   *time.Time `db:"password_reset_expires"`
	PasswordChangedAt      *time.Time `db:"password_changed_at"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
	DeletedAt              *time.Time `db:"deleted_at"`
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

// IsInert reports whether the account is soft-deleted or suspended. The
// reset flows treat an inert user as if it does not exist.
func (u *User) IsInert() bool {
	return u.DeletedAt != nil || !u.IsActive
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
