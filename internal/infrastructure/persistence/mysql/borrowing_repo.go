package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/librarium/lending/internal/domain/borrowing"
	apperrors "github.com/librarium/lending/pkg/errors"
)

// borrowingRepository 借阅记录仓储实现
type borrowingRepository struct {
	db *gorm.DB
}

// NewBorrowingRepository 创建借阅记录仓储
func NewBorrowingRepository(db *gorm.DB) borrowing.Repository {
	return &borrowingRepository{db: db}
}

// Create 创建借阅记录（在借书事务中调用）
func (r *borrowingRepository) Create(ctx context.Context, b *borrowing.Borrowing) error {
	model := toBorrowingModel(b)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByIDForUser 查找属于指定用户的借阅记录
// 其他用户的记录同样返回ErrBorrowingNotFound，不泄露记录是否存在
func (r *borrowingRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*borrowing.Borrowing, error) {
	var model BorrowingModel
	err := r.getDB(ctx).Where("id = ? AND user_id = ?", id, userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrowing.ErrBorrowingNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toBorrowingEntity(&model), nil
}

// MarkReturned 归还(原子操作)
// UPDATE borrowings SET returned_at=? WHERE id=? AND returned_at IS NULL
func (r *borrowingRepository) MarkReturned(ctx context.Context, id uint, at time.Time) error {
	result := r.getDB(ctx).Model(&BorrowingModel{}).
		Where("id = ? AND returned_at IS NULL", id).
		Updates(map[string]interface{}{
			"returned_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}

	if result.RowsAffected == 0 {
		return borrowing.ErrAlreadyReturned
	}
	return nil
}

// borrowingSummaryRow ListByUser的查询结果
type borrowingSummaryRow struct {
	ID         uint
	BookID     uint
	BookTitle  string
	BorrowedAt time.Time
	ReturnedAt *time.Time
}

// ListByUser 用户借阅历史，连同书名
// LEFT JOIN：图书已删除的记录仍然展示，书名为空
func (r *borrowingRepository) ListByUser(ctx context.Context, userID uint) ([]*borrowing.Summary, error) {
	var rows []borrowingSummaryRow
	err := r.getDB(ctx).
		Table("borrowings").
		Select("borrowings.id, borrowings.book_id, COALESCE(books.title, '') AS book_title, borrowings.borrowed_at, borrowings.returned_at").
		Joins("LEFT JOIN books ON books.id = borrowings.book_id").
		Where("borrowings.user_id = ?", userID).
		Order("borrowings.borrowed_at DESC").
		Order("borrowings.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅历史失败")
	}

	summaries := make([]*borrowing.Summary, len(rows))
	for i, row := range rows {
		summaries[i] = &borrowing.Summary{
			ID:         row.ID,
			BookID:     row.BookID,
			BookTitle:  row.BookTitle,
			BorrowedAt: row.BorrowedAt,
			ReturnedAt: row.ReturnedAt,
		}
	}
	return summaries, nil
}

// CountActiveByBook 该书未归还的借阅数
func (r *borrowingRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&BorrowingModel{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅记录失败")
	}
	return count, nil
}

func (r *borrowingRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBorrowingModel(b *borrowing.Borrowing) *BorrowingModel {
	return &BorrowingModel{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowedAt: b.BorrowedAt,
		ReturnedAt: b.ReturnedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func toBorrowingEntity(model *BorrowingModel) *borrowing.Borrowing {
	return &borrowing.Borrowing{
		ID:         model.ID,
		UserID:     model.UserID,
		BookID:     model.BookID,
		BorrowedAt: model.BorrowedAt,
		ReturnedAt: model.ReturnedAt,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
