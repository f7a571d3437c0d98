// AngelaMos | 2026
// entity_test.go

package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsVerified(t *testing.T) {
	u := &User{}
	assert.False(t, u.IsVerified())

	now := time.Now()
	u.VerifiedAt = &now
	assert.True(t, u.IsVerified())
}

func TestIsInert(t *testing.T) {
	active := &User{IsActive: true}
	assert.False(t, active.IsInert())

	suspended := &User{IsActive: false}
	assert.True(t, suspended.IsInert())

	deletedAt := time.Now()
	deleted := &User{IsActive: true, DeletedAt: &deletedAt}
	assert.True(t, deleted.IsInert())
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
