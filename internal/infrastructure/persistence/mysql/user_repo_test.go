package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/lending/internal/domain/user"
	apperrors "github.com/librarium/lending/pkg/errors"
)

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := seedUser(t, db, "reader@example.com")

	t.Run("按邮箱查找", func(t *testing.T) {
		found, err := repo.FindByEmail(ctxBG, "reader@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
		assert.Equal(t, user.RoleUser, found.Role)

		_, err = repo.FindByEmail(ctxBG, "nobody@example.com")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("邮箱重复", func(t *testing.T) {
		dup := user.NewUser("Someone", "reader@example.com", "hashed", user.RoleUser)
		assert.ErrorIs(t, repo.Create(ctxBG, dup), apperrors.ErrEmailDuplicate)

		exists, err := repo.ExistsByEmail(ctxBG, "reader@example.com", 0)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctxBG, "reader@example.com", u.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("更新资料", func(t *testing.T) {
		u.Name = "Renamed"
		u.Email = "renamed@example.com"
		require.NoError(t, repo.Update(ctxBG, u))

		found, err := repo.FindByID(ctxBG, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.Name)
		assert.Equal(t, "renamed@example.com", found.Email)
		assert.Equal(t, "hashed", found.Password)
	})

	t.Run("不存在的用户", func(t *testing.T) {
		_, err := repo.FindByID(ctxBG, 9999)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
