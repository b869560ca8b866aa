package book

import (
	"context"

	"github.com/librarium/lending/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. Cache-Aside：先查缓存，未命中查数据库并回填（TTL默认60分钟）
// 2. 缓存键包含page/search/status/sortBy/sortOrder全部维度
// 3. 每页固定50条
type ListBooksUseCase struct {
	bookRepo book.Repository
	cache    *CatalogCache
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookRepo book.Repository, cache *CatalogCache) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookRepo: bookRepo,
		cache:    cache,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Search    string // 模糊匹配title/author/isbn/description
	Status    string // available(默认) | borrowed，其他值返回空页
	SortBy    string // 白名单外的值回退到created_at
	SortOrder string // asc | desc(默认)
	Page      int    // 页码(从1开始)
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	// 1. 参数规范化
	// 未知的status原样作为过滤条件，结果为空页而不是报错
	q := book.ListQuery{
		Search:    req.Search,
		Status:    book.Status(req.Status),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
	}.Normalize()
	key := q.CacheKey()

	// 2. 查缓存
	if page, ok := uc.cache.lookup(ctx, key); ok {
		return toListResponse(page), nil
	}

	// 3. 查数据库
	generation := uc.cache.snapshot()
	items, total, err := uc.bookRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	page := book.NewPage(items, total, q.Page)

	// 4. 回填缓存
	uc.cache.store(ctx, key, page, generation)

	return toListResponse(page), nil
}
