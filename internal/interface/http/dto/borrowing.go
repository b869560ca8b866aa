package dto

// BorrowRequest 借书请求
type BorrowRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}
