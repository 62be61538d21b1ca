package utils

import (
	"testing"
	"time"

	appErrors "bloodlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerIssueAndValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	manager := NewTokenManager("test-secret", "bloodlink", time.Hour).WithClock(func() time.Time { return now })
	accountID := uuid.New()

	issued, err := manager.Issue(accountID, "donor")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := manager.Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "donor", claims.Role)
	assert.Equal(t, issued.TokenID, claims.ID)
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	manager := NewTokenManager("test-secret", "bloodlink", time.Hour).WithClock(func() time.Time { return now })

	issued, err := manager.Issue(uuid.New(), "patient")
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Second)
	_, err = manager.Validate(issued.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestTokenManagerRejectsForeignTokens(t *testing.T) {
	issuer := NewTokenManager("secret-a", "bloodlink", time.Hour)
	other := NewTokenManager("secret-b", "bloodlink", time.Hour)
	wrongIssuer := NewTokenManager("secret-a", "someone-else", time.Hour)

	issued, err := issuer.Issue(uuid.New(), "hospital")
	require.NoError(t, err)

	_, err = other.Validate(issued.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = wrongIssuer.Validate(issued.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}
