// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/identity-service/internal/core"
)

// Repository is the user store. Challenge hash and expiry columns are only
// ever written or cleared as a pair; there is no way to set one without the
// other.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationHash(ctx context.Context, hash string) (*User, error)
	GetByResetHash(ctx context.Context, hash string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetVerificationChallenge(
		ctx context.Context,
		id, hash string,
		expires time.Time,
	) error
	ClearVerificationChallenge(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	SetResetChallenge(
		ctx context.Context,
		id, hash string,
		expires time.Time,
	) error
	ClearResetChallenge(ctx context.Context, id string) error
	CompleteReset(ctx context.Context, id, passwordHash string) error
}

const userColumns = `
	id, email, password_hash, name, role, is_active,
	verified_at, verification_token_hash, verification_expires,
	password_reset_token_hash, password_reset_expires, password_changed_at,
	created_at, updated_at, deleted_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at, is_active`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByVerificationHash(
	ctx context.Context,
	hash string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE verification_token_hash = $1`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by verification hash: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by verification hash: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByResetHash(
	ctx context.Context,
	hash string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE password_reset_token_hash = $1`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by reset hash: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by reset hash: %w", err)
	}

	return &user, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) SetVerificationChallenge(
	ctx context.Context,
	id, hash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET verification_token_hash = $2, verification_expires = $3,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "set verification challenge", query, id, hash, expires)
}

func (r *repository) ClearVerificationChallenge(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET verification_token_hash = NULL, verification_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "clear verification challenge", query, id)
}

func (r *repository) MarkVerified(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	// Single statement so the verified flag and the challenge columns can
	// never be observed in a half-updated state.
	query := `
		UPDATE users
		SET verified_at = $2,
		    verification_token_hash = NULL, verification_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND verified_at IS NULL`

	return r.execOne(ctx, "mark verified", query, id, at)
}

func (r *repository) SetResetChallenge(
	ctx context.Context,
	id, hash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET password_reset_token_hash = $2, password_reset_expires = $3,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "set reset challenge", query, id, hash, expires)
}

func (r *repository) ClearResetChallenge(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET password_reset_token_hash = NULL, password_reset_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "clear reset challenge", query, id)
}

func (r *repository) CompleteReset(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_changed_at = NOW(),
		    password_reset_token_hash = NULL, password_reset_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "complete password reset", query, id, passwordHash)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
