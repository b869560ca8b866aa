package book

import (
	"context"
	"time"

	"github.com/librarium/lending/internal/domain/book"
)

// CreateBookUseCase 新增图书用例（管理员）
// 设计说明:
// 1. title/author/isbn必填，status默认available
// 2. ISBN唯一：先查询给出友好提示，唯一索引兜底并发插入
// 3. 成功后清空全部列表缓存
type CreateBookUseCase struct {
	bookRepo book.Repository
	cache    *CatalogCache
}

// NewCreateBookUseCase 创建新增图书用例
func NewCreateBookUseCase(bookRepo book.Repository, cache *CatalogCache) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookRepo: bookRepo,
		cache:    cache,
	}
}

// CreateBookRequest 新增图书请求DTO
type CreateBookRequest struct {
	Title       string
	Author      string
	ISBN        string
	PublishedAt *time.Time
	Status      string
	Description string
}

// Execute 执行新增
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	// 1. 构造并校验实体
	status, err := book.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	b := book.NewBook(req.Title, req.Author, req.ISBN, req.PublishedAt, req.Description, status)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	// 2. ISBN唯一性
	exists, err := uc.bookRepo.ExistsByISBN(ctx, b.ISBN, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, book.ErrISBNDuplicate
	}

	// 3. 持久化
	if err := uc.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	// 4. 清空列表缓存
	uc.cache.Invalidate(ctx)

	resp := toBookResponse(b)
	return &resp, nil
}
