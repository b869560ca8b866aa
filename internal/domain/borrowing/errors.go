package borrowing

import (
	apperrors "github.com/librarium/lending/pkg/errors"
)

var (
	// ErrBorrowingNotFound 借阅记录不存在，或不属于当前用户（两者对调用方不可区分）
	ErrBorrowingNotFound = apperrors.New(apperrors.ErrCodeBorrowingNotFound, "Borrowing not found.")

	// ErrAlreadyReturned 重复归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "Book already returned.")
)
