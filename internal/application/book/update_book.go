package book

import (
	"context"
	"time"

	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/borrowing"
)

// UpdateBookUseCase 更新图书用例（管理员）
// 设计说明:
// 1. 所有字段可选，只写入请求中出现的字段（不做读-改-写，避免覆盖并发借书写入的status）
// 2. ISBN唯一性校验排除自身
// 3. 有未归还借阅时不允许把状态改回available
type UpdateBookUseCase struct {
	bookRepo      book.Repository
	borrowingRepo borrowing.Repository
	cache         *CatalogCache
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(bookRepo book.Repository, borrowingRepo borrowing.Repository, cache *CatalogCache) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookRepo:      bookRepo,
		borrowingRepo: borrowingRepo,
		cache:         cache,
	}
}

// UpdateBookRequest 更新请求DTO，nil表示不修改
// ClearPublishedAt对应请求中显式的 "published_at": null
type UpdateBookRequest struct {
	ID               uint
	Title            *string
	Author           *string
	ISBN             *string
	PublishedAt      *time.Time
	ClearPublishedAt bool
	Status           *string
	Description      *string
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookResponse, error) {
	// 1. 查询图书
	b, err := uc.bookRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	changes := book.Changes{
		Title:            req.Title,
		Author:           req.Author,
		ISBN:             req.ISBN,
		PublishedAt:      req.PublishedAt,
		ClearPublishedAt: req.ClearPublishedAt,
		Description:      req.Description,
	}
	if req.Status != nil {
		status, err := book.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		changes.Status = &status
	}

	// 2. ISBN变化时检查唯一性
	if changes.ISBNChanged(b.ISBN) {
		exists, err := uc.bookRepo.ExistsByISBN(ctx, *changes.Normalized().ISBN, b.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, book.ErrISBNDuplicate
		}
	}

	// 3. 在读到的副本上应用变更，只用于校验必填字段
	if err := b.Apply(changes); err != nil {
		return nil, err
	}

	// 4. 改回available前确认没有未归还的借阅
	if changes.MarksAvailable() {
		active, err := uc.borrowingRepo.CountActiveByBook(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if active > 0 {
			return nil, book.ErrBookOnLoan
		}
	}

	// 5. 部分更新（条件写入由仓储保证）
	if err := uc.bookRepo.Update(ctx, req.ID, changes); err != nil {
		return nil, err
	}

	// 6. 清空列表缓存
	uc.cache.Invalidate(ctx)

	// 7. 重新读取，返回数据库中的最新状态
	updated, err := uc.bookRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	resp := toBookResponse(updated)
	return &resp, nil
}
