package borrowing

import (
	"context"
	"time"
)

// Repository 借阅记录仓储接口
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, b *Borrowing) error

	// FindByIDForUser 按ID和所属用户查找
	// 记录不存在或属于其他用户时都返回ErrBorrowingNotFound
	FindByIDForUser(ctx context.Context, id, userID uint) (*Borrowing, error)

	// MarkReturned 条件更新：UPDATE ... SET returned_at=? WHERE id=? AND returned_at IS NULL
	// 影响行数为0时返回ErrAlreadyReturned，并发归还只有一个成功
	MarkReturned(ctx context.Context, id uint, at time.Time) error

	// ListByUser 用户全部借阅（含书名），按借阅时间倒序
	ListByUser(ctx context.Context, userID uint) ([]*Summary, error)

	// CountActiveByBook 该书未归还的借阅数（不变量要求为0或1）
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)
}
