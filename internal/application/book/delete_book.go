package book

import (
	"context"

	"github.com/librarium/lending/internal/domain/book"
)

// DeleteBookUseCase 删除图书用例（管理员）
// 已借出的图书不能删除；判断与删除是同一条条件DELETE，不会与借书竞争
type DeleteBookUseCase struct {
	bookRepo book.Repository
	cache    *CatalogCache
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(bookRepo book.Repository, cache *CatalogCache) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookRepo: bookRepo,
		cache:    cache,
	}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	if err := uc.bookRepo.DeleteAvailable(ctx, id); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx)
	return nil
}
