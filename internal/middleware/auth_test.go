// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-service/internal/core"
)

type stubVerifier struct {
	claims *SessionClaims
	err    error
}

func (s *stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*SessionClaims, error) {
	return s.claims, s.err
}

type stubResolver struct {
	err error
}

func (s *stubResolver) ResolveSubject(_ context.Context, _ string) error {
	return s.err
}

func okHandler(t *testing.T, sawRequest *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sawRequest = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestAuthenticatorMissingToken(t *testing.T) {
	var saw bool
	verifier := &stubVerifier{claims: &SessionClaims{UserID: "u1"}}

	handler := Authenticator(verifier, nil)(okHandler(t, &saw))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, saw)
}

func TestAuthenticatorExpiredToken(t *testing.T) {
	var saw bool
	verifier := &stubVerifier{
		err: fmt.Errorf("verify token: %w", core.ErrTokenExpired),
	}

	handler := Authenticator(verifier, nil)(okHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer stale")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeErrorCode(t, rec))
	assert.False(t, saw)
}

func TestAuthenticatorPopulatesContext(t *testing.T) {
	verifier := &stubVerifier{claims: &SessionClaims{
		UserID: "u1",
		Email:  "ctx@example.com",
		Role:   "admin",
	}}

	var gotID, gotEmail, gotRole string
	handler := Authenticator(verifier, &stubResolver{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
			gotEmail = GetUserEmail(r.Context())
			gotRole = GetUserRole(r.Context())
			assert.True(t, IsAuthenticated(r.Context()))
			assert.True(t, IsAdmin(r.Context()))
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotID)
	assert.Equal(t, "ctx@example.com", gotEmail)
	assert.Equal(t, "admin", gotRole)
}

func TestAuthenticatorRejectsDeletedSubject(t *testing.T) {
	var saw bool
	verifier := &stubVerifier{claims: &SessionClaims{UserID: "ghost"}}
	resolver := &stubResolver{
		err: fmt.Errorf("get user: %w", core.ErrNotFound),
	}

	handler := Authenticator(verifier, resolver)(okHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer orphaned")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, saw)
}

func TestRequireRole(t *testing.T) {
	var saw bool
	handler := RequireRole("admin")(okHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	ctx := context.WithValue(req.Context(), UserRoleKey, "user")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, saw)

	ctx = context.WithValue(req.Context(), UserRoleKey, "admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, saw)
}

func TestRequireRoleUnauthenticated(t *testing.T) {
	var saw bool
	handler := RequireRole("admin")(okHandler(t, &saw))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, saw)
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing", header: "", want: ""},
		{name: "bearer", header: "Bearer abc123", want: "abc123"},
		{name: "case insensitive", header: "bearer abc123", want: "abc123"},
		{name: "wrong scheme", header: "Basic abc123", want: ""},
		{name: "no token", header: "Bearer", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, ExtractToken(req))
		})
	}
}

func TestOptionalAuthPassesThroughOnBadToken(t *testing.T) {
	var saw bool
	verifier := &stubVerifier{err: errors.New("bad token")}

	handler := OptionalAuth(verifier)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			saw = true
			assert.False(t, IsAuthenticated(r.Context()))
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, saw)
}
