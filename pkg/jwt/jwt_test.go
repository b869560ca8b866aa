package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/librarium/lending/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(7, "reader@example.com", "Reader", "user")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Reader", claims.Name)
	assert.Equal(t, "user", claims.Role)

	ttl := m.RemainingTTL(claims)
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour)
}

func TestManager_ParseToken_Failures(t *testing.T) {
	t.Run("过期Token", func(t *testing.T) {
		m := NewManager("test-secret", -time.Minute)
		token, err := m.GenerateToken(1, "a@b.c", "A", "admin")
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("签名密钥不一致", func(t *testing.T) {
		token, err := NewManager("secret-a", time.Hour).GenerateToken(1, "a@b.c", "A", "admin")
		require.NoError(t, err)

		_, err = NewManager("secret-b", time.Hour).ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := NewManager("s", time.Hour).ParseToken("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
