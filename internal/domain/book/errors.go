package book

import (
	apperrors "github.com/librarium/lending/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "Book not found.")

	// ErrBookBorrowed 图书已借出（借书时状态冲突）
	ErrBookBorrowed = apperrors.New(apperrors.ErrCodeBookBorrowed, "Book already borrowed.")

	// ErrDeleteBorrowed 已借出的图书不能删除
	ErrDeleteBorrowed = apperrors.New(apperrors.ErrCodeConflict, "Can not delete a borrowed book.")

	// ErrBookOnLoan 存在未归还借阅时不能把状态改回available
	ErrBookOnLoan = apperrors.New(apperrors.ErrCodeConflict, "Can not mark a book available while it is on loan.")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "The isbn has already been taken.")

	ErrTitleRequired  = apperrors.New(apperrors.ErrCodeInvalidParams, "The title field is required.")
	ErrAuthorRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "The author field is required.")
	ErrISBNRequired   = apperrors.New(apperrors.ErrCodeInvalidParams, "The isbn field is required.")
	ErrInvalidStatus  = apperrors.New(apperrors.ErrCodeInvalidParams, "The selected status is invalid.")
)
