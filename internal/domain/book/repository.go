package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 状态变更使用条件更新（compare-and-set），并发借书时只有一个请求成功
type Repository interface {
	// Create 创建图书，ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书，不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// ExistsByISBN ISBN是否已被占用，excludeID为0时不排除任何行
	ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error)

	// Update 只写入changes中出现的字段，未出现的列（尤其是status）保持数据库中的值
	// 改为available时附带条件：该书不能有未归还的借阅，否则返回ErrBookOnLoan
	// 图书不存在返回ErrBookNotFound，ISBN冲突返回ErrISBNDuplicate
	Update(ctx context.Context, id uint, changes Changes) error

	// DeleteAvailable 删除未借出的图书（物理删除，ISBN随之释放）
	// 条件删除：WHERE id=? AND status='available'
	// 返回ErrBookNotFound或ErrDeleteBorrowed
	DeleteAvailable(ctx context.Context, id uint) error

	// List 分页查询（query需已Normalize）
	List(ctx context.Context, query ListQuery) ([]*Book, int64, error)

	// MarkBorrowed 借出：UPDATE ... SET status='borrowed' WHERE id=? AND status='available'
	// 返回ErrBookNotFound或ErrBookBorrowed
	MarkBorrowed(ctx context.Context, id uint) error

	// MarkAvailable 归还：status置为available
	MarkAvailable(ctx context.Context, id uint) error
}
