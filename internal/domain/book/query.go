package book

import (
	"fmt"
	"strings"
)

// PageSize 列表固定每页条数
const PageSize = 50

// 允许排序的字段，其他值静默回退到created_at
var sortableFields = map[string]bool{
	"title":        true,
	"author":       true,
	"isbn":         true,
	"published_at": true,
	"status":       true,
	"created_at":   true,
}

// ListQuery 图书列表查询条件
type ListQuery struct {
	Search    string // 模糊匹配title/author/isbn/description（不区分大小写）
	Status    Status
	SortBy    string
	SortOrder string // asc | desc
	Page      int    // 从1开始
}

// Normalize 填充默认值并修正非法参数
// - status默认available
// - sortBy不在白名单时回退created_at
// - sortOrder非asc一律desc
// - page<1时为1
func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Status == "" {
		q.Status = StatusAvailable
	}
	if !sortableFields[q.SortBy] {
		q.SortBy = "created_at"
	}
	if strings.EqualFold(q.SortOrder, "asc") {
		q.SortOrder = "asc"
	} else {
		q.SortOrder = "desc"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// Offset 分页偏移量
func (q ListQuery) Offset() int {
	return (q.Page - 1) * PageSize
}

// CacheKey 缓存键，包含查询的全部维度
// 调用前需先Normalize，保证等价查询命中同一个键
func (q ListQuery) CacheKey() string {
	return fmt.Sprintf("page:%d:search:%s:status:%s:sort:%s:order:%s",
		q.Page, q.Search, q.Status, q.SortBy, q.SortOrder)
}
