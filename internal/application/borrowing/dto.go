package borrowing

import (
	"time"

	"github.com/librarium/lending/internal/domain/borrowing"
	apperrors "github.com/librarium/lending/pkg/errors"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// BorrowingResponse 借阅记录DTO
type BorrowingResponse struct {
	ID         uint    `json:"id"`
	UserID     uint    `json:"user_id"`
	BookID     uint    `json:"book_id"`
	BorrowedAt string  `json:"borrowed_at"`
	ReturnedAt *string `json:"returned_at"` // 未归还时为null
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toBorrowingResponse(b *borrowing.Borrowing) *BorrowingResponse {
	resp := &BorrowingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowedAt: formatTime(b.BorrowedAt),
		CreatedAt:  formatTime(b.CreatedAt),
		UpdatedAt:  formatTime(b.UpdatedAt),
	}
	if b.ReturnedAt != nil {
		s := formatTime(*b.ReturnedAt)
		resp.ReturnedAt = &s
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// outcome 指标标签：success|conflict|not_found|error
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsConflict(err):
		return "conflict"
	case apperrors.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
