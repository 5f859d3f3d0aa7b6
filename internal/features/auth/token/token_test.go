package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	signed, err := m.Issue(42, "user@example.com", RoleEmployee)
	require.NoError(t, err)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, RoleEmployee, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret-a", time.Hour).Issue(1, "a@example.com", RoleUser)
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)

	signed, err := m.Issue(1, "a@example.com", RoleUser)
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshKeepsIdentity(t *testing.T) {
	m := NewManager("secret", time.Hour)

	signed, err := m.Issue(7, "admin@example.com", RoleSuperAdmin)
	require.NoError(t, err)

	refreshed, err := m.Refresh(signed)
	require.NoError(t, err)

	claims, err := m.Parse(refreshed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AccountID)
	assert.Equal(t, RoleSuperAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
}
