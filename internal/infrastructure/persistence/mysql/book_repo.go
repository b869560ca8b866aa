package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/librarium/lending/internal/domain/book"
	apperrors "github.com/librarium/lending/pkg/errors"
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 状态变更都是条件更新，影响行数为0时再查一次区分原因
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// ExistsByISBN ISBN是否已被占用
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	query := r.getDB(ctx).Model(&BookModel{}).Where("isbn = ?", isbn)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(err, "查询ISBN失败")
	}
	return count > 0, nil
}

// Update 部分更新图书
// 只写入changes中出现的列，并发借书写入的status不会被覆盖
// 改回available时带NOT EXISTS条件，与借书事务互斥
func (r *bookRepository) Update(ctx context.Context, id uint, changes book.Changes) error {
	db := r.getDB(ctx)
	query := db.Model(&BookModel{}).Where("id = ?", id)
	if changes.MarksAvailable() {
		query = query.Where("NOT EXISTS (?)", db.Model(&BorrowingModel{}).
			Select("1").
			Where("borrowings.book_id = books.id AND borrowings.returned_at IS NULL"))
	}

	result := query.Updates(bookColumns(changes.Normalized()))
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在，或者仍有未归还的借阅
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		if changes.MarksAvailable() {
			return book.ErrBookOnLoan
		}
	}
	return nil
}

// DeleteAvailable 删除未借出的图书
// 条件删除保证与并发借书互斥：借书先把status改成borrowed，这里就删不掉
// 物理删除，ISBN可以被新图书复用；历史借阅记录保留book_id
func (r *bookRepository) DeleteAvailable(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Where("id = ? AND status = ?", id, book.StatusAvailable).Delete(&BookModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在，或者已借出
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return book.ErrDeleteBorrowed
	}
	return nil
}

// List 分页查询图书列表
// 搜索匹配title/author/isbn/description，LOWER+LIKE保证MySQL与SQLite行为一致
func (r *bookRepository) List(ctx context.Context, q book.ListQuery) ([]*book.Book, int64, error) {
	query := r.getDB(ctx).Model(&BookModel{}).Where("status = ?", q.Status)

	if q.Search != "" {
		pattern := likePattern(q.Search)
		query = query.Where(
			"LOWER(title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(author) LIKE ? ESCAPE '"+likeEscape+
				"' OR LOWER(isbn) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(description) LIKE ? ESCAPE '"+likeEscape+"'",
			pattern, pattern, pattern, pattern,
		)
	}

	// 1. 总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 2. 排序（SortBy已经过白名单校验），id作为第二排序键保证分页稳定
	desc := q.SortOrder == "desc"
	var models []BookModel
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortBy}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Limit(book.PageSize).
		Offset(q.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// MarkBorrowed 借出图书(原子操作)
// UPDATE books SET status='borrowed' WHERE id=? AND status='available'
// 必须使用getDB(ctx)参与借书事务
func (r *bookRepository) MarkBorrowed(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Model(&BookModel{}).
		Where("id = ? AND status = ?", id, book.StatusAvailable).
		Update("status", book.StatusBorrowed)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书状态失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在，或者已被借出
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return book.ErrBookBorrowed
	}
	return nil
}

// MarkAvailable 归还图书
// 图书行不存在时不报错：借阅记录仍然可以归还
func (r *bookRepository) MarkAvailable(ctx context.Context, id uint) error {
	err := r.getDB(ctx).Model(&BookModel{}).
		Where("id = ?", id).
		Update("status", book.StatusAvailable).Error
	if err != nil {
		return apperrors.Wrap(err, "更新图书状态失败")
	}
	return nil
}

func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

// bookColumns 部分更新的列，nil字段不出现在map中
func bookColumns(c book.Changes) map[string]interface{} {
	columns := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if c.Title != nil {
		columns["title"] = *c.Title
	}
	if c.Author != nil {
		columns["author"] = *c.Author
	}
	if c.ISBN != nil {
		columns["isbn"] = *c.ISBN
	}
	switch {
	case c.ClearPublishedAt:
		columns["published_at"] = nil
	case c.PublishedAt != nil:
		columns["published_at"] = *c.PublishedAt
	}
	if c.Status != nil {
		columns["status"] = string(*c.Status)
	}
	if c.Description != nil {
		columns["description"] = *c.Description
	}
	return columns
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		PublishedAt: b.PublishedAt,
		Status:      string(b.Status),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:          model.ID,
		Title:       model.Title,
		Author:      model.Author,
		ISBN:        model.ISBN,
		PublishedAt: model.PublishedAt,
		Status:      book.Status(model.Status),
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
