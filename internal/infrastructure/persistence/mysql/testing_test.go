package mysql

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/user"
)

// newTestDB 每个测试独立的SQLite内存库
// 单连接：共享缓存内存库在多连接并发写时会返回SQLITE_LOCKED
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *user.User {
	t.Helper()
	u := user.NewUser("Reader "+email, email, "hashed", user.RoleUser)
	require.NoError(t, NewUserRepository(db).Create(ctxBG, u))
	return u
}

func seedBook(t *testing.T, db *gorm.DB, title, isbn string) *book.Book {
	t.Helper()
	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	b := book.NewBook(title, "Author of "+title, isbn, &published, "About "+title, book.StatusAvailable)
	require.NoError(t, NewBookRepository(db).Create(ctxBG, b))
	return b
}
