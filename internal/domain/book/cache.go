package book

import (
	"context"
	"time"
)

// ListTTL 列表缓存默认有效期
const ListTTL = 60 * time.Minute

// Page 一页查询结果（缓存的值）
type Page struct {
	Items    []*Book `json:"items"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PerPage  int     `json:"per_page"`
	LastPage int     `json:"last_page"`
}

// NewPage 计算总页数，空结果时LastPage为1
func NewPage(items []*Book, total int64, page int) *Page {
	lastPage := int((total + PageSize - 1) / PageSize)
	if lastPage < 1 {
		lastPage = 1
	}
	if items == nil {
		items = []*Book{}
	}
	return &Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  PageSize,
		LastPage: lastPage,
	}
}

// ListCache 图书列表缓存
// 设计说明:
// 1. 键由查询的全部维度组成（见ListQuery.CacheKey），无法按图书定位受影响的键
// 2. 因此任何图书写操作都整体失效（InvalidateAll）
// 3. 缓存只是派生数据，读失败时回源数据库
type ListCache interface {
	// Get 命中返回(page, true, nil)，未命中返回(nil, false, nil)
	Get(ctx context.Context, key string) (*Page, bool, error)

	// Set 写入缓存
	Set(ctx context.Context, key string, page *Page, ttl time.Duration) error

	// InvalidateAll 清空全部列表缓存
	InvalidateAll(ctx context.Context) error
}
