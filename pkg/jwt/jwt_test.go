package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	token, err := manager.GenerateToken(42, "marta", "official")
	require.NoError(t, err)

	identity, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, identity.UserID)
	assert.Equal(t, "marta", identity.Name)
	assert.Equal(t, "official", identity.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateToken(1, "jon", "athlete")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	manager := NewManager("secret", -time.Minute)

	token, err := manager.GenerateToken(1, "jon", "athlete")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := NewManager("secret", time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
