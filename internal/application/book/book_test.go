package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appborrowing "github.com/librarium/lending/internal/application/borrowing"
	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/internal/infrastructure/persistence/memory"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
	apperrors "github.com/librarium/lending/pkg/errors"
	"github.com/librarium/lending/pkg/event"
)

type fixture struct {
	db     *gorm.DB
	repo   book.Repository
	cache  *CatalogCache
	list   *ListBooksUseCase
	get    *GetBookUseCase
	create *CreateBookUseCase
	update *UpdateBookUseCase
	delete *DeleteBookUseCase
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := mysql.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newFixture(t *testing.T, listCache book.ListCache) *fixture {
	t.Helper()
	db := newTestDB(t)
	repo := mysql.NewBookRepository(db)
	if listCache == nil {
		mc := memory.NewListCache(time.Hour)
		t.Cleanup(mc.Stop)
		listCache = mc
	}
	cache := NewCatalogCache(listCache, time.Hour, zap.NewNop())
	return &fixture{
		db:     db,
		repo:   repo,
		cache:  cache,
		list:   NewListBooksUseCase(repo, cache),
		get:    NewGetBookUseCase(repo),
		create: NewCreateBookUseCase(repo, cache),
		update: NewUpdateBookUseCase(repo, mysql.NewBorrowingRepository(db), cache),
		delete: NewDeleteBookUseCase(repo, cache),
	}
}

func (f *fixture) mustCreate(t *testing.T, title, isbn string) *BookResponse {
	t.Helper()
	resp, err := f.create.Execute(context.Background(), CreateBookRequest{Title: title, Author: "Someone", ISBN: isbn})
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	resp, err := f.create.Execute(ctx, CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", PublishedAt: &published,
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "available", resp.Status)
	require.NotNil(t, resp.PublishedAt)
	assert.Equal(t, "1965-08-01", *resp.PublishedAt)

	t.Run("ISBN重复不创建记录", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateBookRequest{Title: "Other", Author: "X", ISBN: "9780441013593"})
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)
		assert.True(t, apperrors.IsValidation(err))

		page, err := f.list.Execute(ctx, ListBooksRequest{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
	})

	t.Run("必填字段", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateBookRequest{Author: "X", ISBN: "1"})
		assert.ErrorIs(t, err, book.ErrTitleRequired)
		_, err = f.create.Execute(ctx, CreateBookRequest{Title: "T", ISBN: "1"})
		assert.ErrorIs(t, err, book.ErrAuthorRequired)
		_, err = f.create.Execute(ctx, CreateBookRequest{Title: "T", Author: "X"})
		assert.ErrorIs(t, err, book.ErrISBNRequired)
	})

	t.Run("非法状态", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateBookRequest{Title: "T", Author: "X", ISBN: "2", Status: "lost"})
		assert.ErrorIs(t, err, book.ErrInvalidStatus)
	})
}

func TestListBooks_CacheInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	dune := f.mustCreate(t, "Dune", "isbn-1")

	first, err := f.list.Execute(ctx, ListBooksRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, first.Total)

	// 绕过用例直接写库：缓存仍返回旧结果，证明命中了缓存
	require.NoError(t, f.repo.Create(ctx, book.NewBook("Emma", "Austen", "isbn-2", nil, "", "")))
	cached, err := f.list.Execute(ctx, ListBooksRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, cached.Total)

	t.Run("新增后可见", func(t *testing.T) {
		f.mustCreate(t, "Ulysses", "isbn-3")
		page, err := f.list.Execute(ctx, ListBooksRequest{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
	})

	t.Run("更新后可见", func(t *testing.T) {
		_, err := f.list.Execute(ctx, ListBooksRequest{Search: "deluxe"})
		require.NoError(t, err)

		_, err = f.update.Execute(ctx, UpdateBookRequest{ID: dune.ID, Title: strPtr("Dune Deluxe")})
		require.NoError(t, err)

		page, err := f.list.Execute(ctx, ListBooksRequest{Search: "deluxe"})
		require.NoError(t, err)
		require.EqualValues(t, 1, page.Total)
		assert.Equal(t, "Dune Deluxe", page.Items[0].Title)
	})

	t.Run("删除后可见", func(t *testing.T) {
		require.NoError(t, f.delete.Execute(ctx, dune.ID))
		page, err := f.list.Execute(ctx, ListBooksRequest{Search: "deluxe"})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})
}

func TestListBooks_QueryNormalization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.mustCreate(t, "Beta", "isbn-b")
	f.mustCreate(t, "Alpha", "isbn-a")

	page, err := f.list.Execute(ctx, ListBooksRequest{SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", page.Items[0].Title)
	assert.Equal(t, book.PageSize, page.PerPage)
	assert.Equal(t, 1, page.LastPage)

	// 非法排序字段静默回退到created_at
	page, err = f.list.Execute(ctx, ListBooksRequest{SortBy: "password; DROP TABLE books", Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 2)

	// 未知状态返回空页
	page, err = f.list.Execute(ctx, ListBooksRequest{Status: "lost"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
}

// failingCache 模拟缓存服务不可用
type failingCache struct{ sets int }

func (c *failingCache) Get(context.Context, string) (*book.Page, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (c *failingCache) Set(context.Context, string, *book.Page, time.Duration) error {
	c.sets++
	return errors.New("connection refused")
}

func (c *failingCache) InvalidateAll(context.Context) error {
	return errors.New("connection refused")
}

func TestCatalog_CacheUnavailable(t *testing.T) {
	ctx := context.Background()
	fc := &failingCache{}
	f := newFixture(t, fc)

	// 缓存故障不影响读写
	f.mustCreate(t, "Dune", "isbn-1")
	page, err := f.list.Execute(ctx, ListBooksRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, fc.sets)
}

func TestCatalogCache_DiscardsStaleFill(t *testing.T) {
	ctx := context.Background()
	mc := memory.NewListCache(time.Hour)
	defer mc.Stop()
	cache := NewCatalogCache(mc, time.Hour, zap.NewNop())

	// 查询开始后发生写操作，旧结果不能回填
	generation := cache.snapshot()
	cache.Invalidate(ctx)
	cache.store(ctx, "k", book.NewPage(nil, 0, 1), generation)

	_, ok := cache.lookup(ctx, "k")
	assert.False(t, ok)

	cache.store(ctx, "k", book.NewPage(nil, 0, 1), cache.snapshot())
	_, ok = cache.lookup(ctx, "k")
	assert.True(t, ok)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	dune := f.mustCreate(t, "Dune", "isbn-1")
	f.mustCreate(t, "Emma", "isbn-2")

	t.Run("保留自身ISBN", func(t *testing.T) {
		resp, err := f.update.Execute(ctx, UpdateBookRequest{ID: dune.ID, ISBN: strPtr("isbn-1"), Author: strPtr("Herbert")})
		require.NoError(t, err)
		assert.Equal(t, "Herbert", resp.Author)
	})

	t.Run("ISBN与其他图书冲突", func(t *testing.T) {
		_, err := f.update.Execute(ctx, UpdateBookRequest{ID: dune.ID, ISBN: strPtr("isbn-2")})
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	})

	t.Run("必填字段不能清空", func(t *testing.T) {
		_, err := f.update.Execute(ctx, UpdateBookRequest{ID: dune.ID, Title: strPtr("  ")})
		assert.ErrorIs(t, err, book.ErrTitleRequired)
	})

	t.Run("图书不存在", func(t *testing.T) {
		_, err := f.update.Execute(ctx, UpdateBookRequest{ID: 9999, Title: strPtr("x")})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("非法状态", func(t *testing.T) {
		_, err := f.update.Execute(ctx, UpdateBookRequest{ID: dune.ID, Status: strPtr("lost")})
		assert.ErrorIs(t, err, book.ErrInvalidStatus)
	})
}

// borrowOnRead 第一次FindByID返回后执行hook，模拟读-写之间提交的借书
type borrowOnRead struct {
	book.Repository
	once sync.Once
	hook func()
}

func (r *borrowOnRead) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, err := r.Repository.FindByID(ctx, id)
	r.once.Do(r.hook)
	return b, err
}

func TestUpdateBook_ConcurrentBorrowKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	dune := f.mustCreate(t, "Dune", "isbn-1")

	reader := user.NewUser("Reader", "reader@example.com", "hashed", user.RoleUser)
	userRepo := mysql.NewUserRepository(f.db)
	require.NoError(t, userRepo.Create(ctx, reader))

	borrowingRepo := mysql.NewBorrowingRepository(f.db)
	borrow := appborrowing.NewBorrowBookUseCase(f.repo, borrowingRepo, userRepo,
		mysql.NewTxManager(f.db), &event.Recorder{}, zap.NewNop())

	wrapped := &borrowOnRead{Repository: f.repo}
	wrapped.hook = func() {
		_, err := borrow.Execute(ctx, appborrowing.BorrowRequest{UserID: reader.ID, BookID: dune.ID})
		require.NoError(t, err)
	}
	update := NewUpdateBookUseCase(wrapped, borrowingRepo, f.cache)

	resp, err := update.Execute(ctx, UpdateBookRequest{ID: dune.ID, Title: strPtr("Dune (Deluxe)")})
	require.NoError(t, err)
	assert.Equal(t, "Dune (Deluxe)", resp.Title)
	assert.Equal(t, string(book.StatusBorrowed), resp.Status, "响应反映数据库中的最新状态")

	stored, err := f.repo.FindByID(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, book.StatusBorrowed, stored.Status)
	active, err := borrowingRepo.CountActiveByBook(ctx, dune.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)

	// 借出期间不能改回available
	_, err = f.update.Execute(ctx, UpdateBookRequest{ID: dune.ID, Status: strPtr("available")})
	assert.ErrorIs(t, err, book.ErrBookOnLoan)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateBook_ClearOptionalFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	created, err := f.create.Execute(ctx, CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", ISBN: "isbn-1", PublishedAt: &published, Description: "Spice",
	})
	require.NoError(t, err)

	resp, err := f.update.Execute(ctx, UpdateBookRequest{ID: created.ID, ClearPublishedAt: true, Description: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, resp.PublishedAt)
	assert.Empty(t, resp.Description)
	assert.Equal(t, "Dune", resp.Title)
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	dune := f.mustCreate(t, "Dune", "isbn-1")
	emma := f.mustCreate(t, "Emma", "isbn-2")
	require.NoError(t, f.repo.MarkBorrowed(ctx, emma.ID))

	err := f.delete.Execute(ctx, emma.ID)
	assert.ErrorIs(t, err, book.ErrDeleteBorrowed)
	assert.True(t, apperrors.IsConflict(err))

	require.NoError(t, f.delete.Execute(ctx, dune.ID))
	_, err = f.get.Execute(ctx, dune.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	// 删除后同一ISBN可以重新录入
	again := f.mustCreate(t, "Dune", "isbn-1")
	assert.NotEqual(t, dune.ID, again.ID)

	assert.ErrorIs(t, f.delete.Execute(ctx, 9999), book.ErrBookNotFound)
}
