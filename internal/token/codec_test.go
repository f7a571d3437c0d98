// AngelaMos | 2026
// codec_test.go

package token

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	codec := NewCodec(ModeOTP, 15*time.Minute)
	otpFormat := regexp.MustCompile(`^\d{6}$`)

	for range 50 {
		ch, err := codec.Generate()
		require.NoError(t, err)

		assert.Regexp(t, otpFormat, ch.Plain)
		assert.Equal(t, Digest(ch.Plain), ch.Hash)
	}
}

func TestGenerateToken(t *testing.T) {
	codec := NewCodec(ModeToken, 15*time.Minute)

	ch, err := codec.Generate()
	require.NoError(t, err)

	assert.Len(t, ch.Plain, 64)
	_, err = hex.DecodeString(ch.Plain)
	assert.NoError(t, err, "token must be hex")
	assert.Equal(t, Digest(ch.Plain), ch.Hash)
}

func TestGenerateStampsExpiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name   string
		expiry time.Duration
		want   time.Time
	}{
		{
			name:   "configured expiry",
			expiry: 30 * time.Minute,
			want:   now.Add(30 * time.Minute),
		},
		{
			name:   "zero expiry falls back to default",
			expiry: 0,
			want:   now.Add(DefaultExpiry),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewCodec(ModeOTP, tt.expiry, WithClock(clock))

			ch, err := codec.Generate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ch.ExpiresAt)
		})
	}
}

func TestDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("123456"))
	want := hex.EncodeToString(sum[:])

	assert.Equal(t, want, Digest("123456"))
	assert.Equal(t, want, Digest("  123456\n"), "digest trims whitespace")
	assert.NotEqual(t, want, Digest("123457"))
}

func TestGenerateUnique(t *testing.T) {
	codec := NewCodec(ModeToken, time.Minute)

	seen := make(map[string]struct{})
	for range 100 {
		ch, err := codec.Generate()
		require.NoError(t, err)

		_, dup := seen[ch.Plain]
		require.False(t, dup, "secrets must not repeat")
		seen[ch.Plain] = struct{}{}
	}
}
