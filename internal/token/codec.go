// AngelaMos | 2026
// codec.go

// Package token generates and hashes the one-time secrets used for email
// verification and password-reset challenges. Only the SHA-256 digest of a
// secret is ever persisted; the plaintext exists once, in the outbound mail.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

type Mode string

const (
	// ModeOTP issues a 6-digit zero-padded numeric code. Its entropy is far
	// below the digest's strength; endpoint rate limiting is the compensating
	// control.
	ModeOTP Mode = "otp"
	// ModeToken issues a 256-bit secret as a 64-character hex string,
	// delivered as a clickable link.
	ModeToken Mode = "token"
)

const (
	DefaultExpiry = 15 * time.Minute

	otpDigits   = 6
	tokenBytes  = 32
	otpUpperExc = 1_000_000
)

// Challenge is one freshly generated secret: the plaintext to mail out, the
// digest to store, and the deadline stamped at generation time.
type Challenge struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

type Codec struct {
	mode   Mode
	expiry time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces the codec's time source. Tests use it to pin expiry
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(mode Mode, expiry time.Duration, opts ...Option) *Codec {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	c := &Codec{
		mode:   mode,
		expiry: expiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Codec) Mode() Mode {
	return c.mode
}

func (c *Codec) Generate() (Challenge, error) {
	var plain string
	var err error

	switch c.mode {
	case ModeToken:
		plain, err = randomHexToken()
	default:
		plain, err = randomOTP()
	}
	if err != nil {
		return Challenge{}, err
	}

	return Challenge{
		Plain:     plain,
		Hash:      Digest(plain),
		ExpiresAt: c.now().Add(c.expiry),
	}, nil
}

// Digest converts a client-submitted secret into the comparable form stored
// on the user row. Whitespace is trimmed first so copy-pasted codes match.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpUpperExc))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func randomHexToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
