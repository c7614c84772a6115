package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect-digitals-backend/internal/domains/user"
)

// The cache layer serializes values with encoding/json, so the cached
// record must survive a marshal/unmarshal round trip with every
// credential field intact. user.User itself hides those fields from
// JSON and would come back empty.
func TestCachedUser_RoundTripKeepsCredentialFields(t *testing.T) {
	changedAt := time.Now().Add(-time.Hour).Truncate(time.Second)
	resetExpiry := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := "a3f8c2"

	u := &user.User{
		ID:                  uuid.New(),
		Email:               "jane@example.com",
		PasswordHash:        "$2a$12$abcdefghijklmnopqrstuv",
		Name:                "Jane Author",
		Role:                user.RoleAuthor,
		IsActive:            true,
		IsVerified:          true,
		ResetToken:          &token,
		ResetTokenExpiresAt: &resetExpiry,
		PasswordChangedAt:   &changedAt,
		CreatedAt:           time.Now().Truncate(time.Second),
		UpdatedAt:           time.Now().Truncate(time.Second),
	}

	data, err := json.Marshal(newCachedUser(u))
	require.NoError(t, err)

	var cached cachedUser
	require.NoError(t, json.Unmarshal(data, &cached))
	got := cached.toUser()

	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	require.NotNil(t, got.PasswordChangedAt)
	assert.True(t, got.PasswordChangedAt.Equal(changedAt))
	require.NotNil(t, got.ResetToken)
	assert.Equal(t, token, *got.ResetToken)
	require.NotNil(t, got.ResetTokenExpiresAt)
	assert.True(t, got.ResetTokenExpiresAt.Equal(resetExpiry))
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Role, got.Role)
}

// A token issued before the password change must still read as stale
// when the account comes back from the cache.
func TestCachedUser_StaleTokenCheckSurvivesCacheHit(t *testing.T) {
	changedAt := time.Now()
	issuedBefore := changedAt.Add(-time.Minute)

	u := &user.User{
		ID:                uuid.New(),
		Email:             "jane@example.com",
		PasswordChangedAt: &changedAt,
	}
	require.True(t, u.TokenIssuedBeforePasswordChange(issuedBefore))

	data, err := json.Marshal(newCachedUser(u))
	require.NoError(t, err)

	var cached cachedUser
	require.NoError(t, json.Unmarshal(data, &cached))

	assert.True(t, cached.toUser().TokenIssuedBeforePasswordChange(issuedBefore))
}
