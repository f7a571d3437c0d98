// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/identity-service/internal/core"
	"github.com/angelamos/identity-service/internal/mail"
	"github.com/angelamos/identity-service/internal/token"
	"github.com/angelamos/identity-service/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrMailDelivery       = errors.New("mail delivery failed")
)

const (
	msgRegistered      = "Please verify your email. Check inbox or spam."
	msgVerified        = "Email verified successfully"
	msgAlreadyVerified = "Email already verified"
	msgForgotGeneric   = "If that email exists, we sent reset instructions."
	msgResetVerified   = "Reset verified. You can now set a new password."
	msgPasswordReset   = "Password reset successfully"
)

// UserStore is the slice of the user repository the orchestrator needs.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByVerificationHash(ctx context.Context, hash string) (*user.User, error)
	GetByResetHash(ctx context.Context, hash string) (*user.User, error)
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

type Service struct {
	store   UserStore
	codec   *token.Codec
	mailer  mail.Mailer
	signer  *Signer
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(
	store UserStore,
	codec *token.Codec,
	mailer mail.Mailer,
	signer *Signer,
	baseURL string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:   store,
		codec:   codec,
		mailer:  mailer,
		signer:  signer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*MessageResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, core.ValidationError("Passwords do not match")
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	email := normalizeEmail(req.Email)

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register: %w", ErrEmailExists)
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         user.RoleUser,
	}

	if err := s.store.Create(ctx, u); err != nil {
		// The read-check above races with concurrent registrations; the
		// unique index is the arbiter and its violation maps to the same
		// conflict.
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("register: %w", ErrEmailExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "registered new user",
		"flow", "register",
		"user_id", u.ID,
	)

	if err := s.issueVerification(ctx, u, "register"); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: msgRegistered}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, core.ValidationError("Email and password are required")
	}

	u, err := s.store.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, fmt.Errorf("login: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("login: %w", ErrInvalidCredentials)
	}

	if !u.IsVerified() {
		// Overwrite any previous challenge and refuse the login either way.
		if err := s.issueVerification(ctx, u, "login"); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("login: %w", ErrEmailNotVerified)
	}

	signed, expiresAt, err := s.signer.Issue(SessionClaims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        toUserResponse(u),
	}, nil
}

func (s *Service) VerifyEmail(
	ctx context.Context,
	rawToken string,
) (*MessageResponse, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, core.ValidationError("Verification token is required")
	}

	u, err := s.store.GetByVerificationHash(ctx, token.Digest(rawToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Invalid verification token")
		}
		return nil, fmt.Errorf("find verification challenge: %w", err)
	}

	// Safe to retry: a second submit of the same token reports success.
	if u.IsVerified() {
		return &MessageResponse{Message: msgAlreadyVerified}, nil
	}

	if u.VerificationExpires == nil {
		return nil, core.ValidationError("Verification token is not active")
	}

	// Expired at the boundary too: a deadline equal to "now" is already dead.
	if !u.VerificationExpires.After(s.now()) {
		return nil, core.GoneError("Verification token expired")
	}

	if err := s.store.MarkVerified(ctx, u.ID, s.now()); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified",
		"flow", "verify_email",
		"user_id", u.ID,
	)

	return &MessageResponse{Message: msgVerified}, nil
}

func (s *Service) ForgotPassword(
	ctx context.Context,
	email string,
) (*MessageResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, core.ValidationError("Email is required")
	}

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return forgotPasswordResult(), nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if u.IsInert() {
		return forgotPasswordResult(), nil
	}

	ch, err := s.codec.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate reset challenge: %w", err)
	}

	if err := s.store.SetResetChallenge(ctx, u.ID, ch.Hash, ch.ExpiresAt); err != nil {
		return nil, fmt.Errorf("store reset challenge: %w", err)
	}

	if err := s.mailer.Send(ctx, s.resetMail(u.Email, ch.Plain)); err != nil {
		s.rollbackReset(ctx, u.ID, "forgot_password", err)
		return nil, fmt.Errorf("forgot password: %w", ErrMailDelivery)
	}

	return forgotPasswordResult(), nil
}

func (s *Service) VerifyReset(
	ctx context.Context,
	rawToken string,
) (*VerifyResetResponse, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, core.ValidationError("Reset token is required")
	}

	u, err := s.store.GetByResetHash(ctx, token.Digest(rawToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Invalid reset token")
		}
		return nil, fmt.Errorf("find reset challenge: %w", err)
	}

	if u.IsInert() {
		return nil, core.ValidationError("Account is not active")
	}

	if u.PasswordResetExpires == nil {
		return nil, core.ValidationError("Reset token is not active")
	}

	if !u.PasswordResetExpires.After(s.now()) {
		return nil, core.GoneError("Reset token expired")
	}

	// Rotate challenge -> session: the emailed token is consumed here and
	// can never be presented again.
	ch, err := s.codec.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate reset session: %w", err)
	}

	if err := s.store.SetResetChallenge(ctx, u.ID, ch.Hash, ch.ExpiresAt); err != nil {
		return nil, fmt.Errorf("rotate reset challenge: %w", err)
	}

	return &VerifyResetResponse{
		Message:           msgResetVerified,
		ResetSessionToken: ch.Plain,
		ExpiresAt:         ch.ExpiresAt,
	}, nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) (*MessageResponse, error) {
	if strings.TrimSpace(req.ResetSessionToken) == "" {
		return nil, core.ValidationError("Reset session token is required")
	}

	if req.Password != req.PasswordConfirm {
		return nil, core.ValidationError("Passwords do not match")
	}

	u, err := s.store.GetByResetHash(ctx, token.Digest(req.ResetSessionToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Invalid reset session token")
		}
		return nil, fmt.Errorf("find reset session: %w", err)
	}

	if u.IsInert() {
		return nil, core.ValidationError("Account is not active")
	}

	if u.PasswordResetExpires == nil {
		return nil, core.ValidationError("Reset session is not active")
	}

	if !u.PasswordResetExpires.After(s.now()) {
		return nil, core.GoneError("Reset session expired")
	}

	sameAsOld, err := core.VerifyPassword(req.Password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify old password: %w", err)
	}
	if sameAsOld {
		return nil, core.ValidationError("New password must be different")
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.CompleteReset(ctx, u.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("complete reset: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset",
		"flow", "reset_password",
		"user_id", u.ID,
	)

	return &MessageResponse{Message: msgPasswordReset}, nil
}

func (s *Service) CurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(u)
	return &resp, nil
}

// ResolveSubject confirms a session token's subject still maps to a live
// user. The authenticator middleware calls it on every protected request.
func (s *Service) ResolveSubject(ctx context.Context, userID string) error {
	_, err := s.store.GetByID(ctx, userID)
	return err
}

// issueVerification is the two-phase verification dispatch: write the
// challenge, attempt the send, and clear the just-written fields if the
// send fails so no un-emailed token stays live.
func (s *Service) issueVerification(
	ctx context.Context,
	u *user.User,
	flow string,
) error {
	ch, err := s.codec.Generate()
	if err != nil {
		return fmt.Errorf("generate verification challenge: %w", err)
	}

	if err := s.store.SetVerificationChallenge(ctx, u.ID, ch.Hash, ch.ExpiresAt); err != nil {
		return fmt.Errorf("store verification challenge: %w", err)
	}

	if err := s.mailer.Send(ctx, s.verificationMail(u.Email, ch.Plain)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			"flow", flow,
			"user_id", u.ID,
			"error", err,
		)

		if clearErr := s.store.ClearVerificationChallenge(ctx, u.ID); clearErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back verification challenge",
				"flow", flow,
				"user_id", u.ID,
				"error", clearErr,
			)
		}

		return fmt.Errorf("%s: %w", flow, ErrMailDelivery)
	}

	return nil
}

func (s *Service) rollbackReset(
	ctx context.Context,
	userID, flow string,
	sendErr error,
) {
	s.logger.ErrorContext(ctx, "failed to send reset email",
		"flow", flow,
		"user_id", userID,
		"error", sendErr,
	)

	if err := s.store.ClearResetChallenge(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to roll back reset challenge",
			"flow", flow,
			"user_id", userID,
			"error", err,
		)
	}
}

// forgotPasswordResult is the single constructor for every forgot-password
// outcome. Unknown, soft-deleted, inactive and successful branches must all
// flow through here so responses stay byte-identical.
func forgotPasswordResult() *MessageResponse {
	return &MessageResponse{Message: msgForgotGeneric}
}

func (s *Service) verificationMail(to, plain string) mail.Message {
	msg := mail.Message{
		To:      to,
		Subject: "Verify your email",
	}

	if s.codec.Mode() == token.ModeToken {
		msg.Text = fmt.Sprintf(
			"Click the link to verify: %s/verify-email?token=%s",
			s.baseURL,
			plain,
		)
	} else {
		msg.Text = "Your verification code is " + plain
	}

	return msg
}

func (s *Service) resetMail(to, plain string) mail.Message {
	msg := mail.Message{
		To:      to,
		Subject: "Reset your password",
	}

	if s.codec.Mode() == token.ModeToken {
		msg.Text = fmt.Sprintf(
			"Click to verify reset request: %s/reset-password?token=%s",
			s.baseURL,
			plain,
		)
	} else {
		msg.Text = "Your password reset code is: " + plain
	}

	return msg
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		VerifiedAt: u.VerifiedAt,
		CreatedAt:  u.CreatedAt,
	}
}
