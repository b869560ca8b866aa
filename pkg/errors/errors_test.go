package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("不带内部错误", func(t *testing.T) {
		err := New(ErrCodeConflict, "Book already borrowed.")
		assert.Equal(t, "[40900] Book already borrowed.", err.Error())
	})

	t.Run("带内部错误", func(t *testing.T) {
		err := Wrap(errors.New("connection refused"), "query failed")
		assert.Equal(t, "[50000] query failed: connection refused", err.Error())
		assert.ErrorContains(t, errors.Unwrap(err), "connection refused")
	})
}

func TestGetAppError(t *testing.T) {
	t.Run("包装后的AppError可以被提取", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", ErrForbidden)
		appErr := GetAppError(wrapped)
		assert.Same(t, ErrForbidden, appErr)
	})

	t.Run("普通错误转换为内部错误", func(t *testing.T) {
		appErr := GetAppError(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, appErr.Code)
	})
}

func TestErrorClasses(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeBorrowingNotFound, "Borrowing not found.")))
	assert.True(t, IsConflict(New(ErrCodeAlreadyReturned, "Book already returned.")))
	assert.True(t, IsValidation(ErrEmailDuplicate))

	assert.False(t, IsNotFound(ErrEmailDuplicate))
	assert.False(t, IsConflict(errors.New("plain")))
	assert.False(t, IsValidation(nil))
}
