package borrowing

import (
	"time"
)

// Borrowing 借阅记录（聚合根）
// 生命周期：借书时创建（ReturnedAt=nil），还书时设置一次ReturnedAt，永不删除
// 不变量：同一本书最多只有一条ReturnedAt=nil的记录
type Borrowing struct {
	ID         uint
	UserID     uint
	BookID     uint
	BorrowedAt time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBorrowing 创建借阅记录（工厂方法）
func NewBorrowing(userID, bookID uint, borrowedAt time.Time) *Borrowing {
	return &Borrowing{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: borrowedAt,
		CreatedAt:  borrowedAt,
		UpdatedAt:  borrowedAt,
	}
}

// IsReturned 是否已归还
func (b *Borrowing) IsReturned() bool {
	return b.ReturnedAt != nil
}

// MarkReturned 归还（领域行为）
// 业务规则：只能归还一次
func (b *Borrowing) MarkReturned(at time.Time) error {
	if b.IsReturned() {
		return ErrAlreadyReturned
	}
	b.ReturnedAt = &at
	b.UpdatedAt = at
	return nil
}

// Summary 用户个人页中的借阅条目
type Summary struct {
	ID         uint
	BookID     uint
	BookTitle  string
	BorrowedAt time.Time
	ReturnedAt *time.Time
}
