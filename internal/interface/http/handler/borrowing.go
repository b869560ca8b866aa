package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appborrowing "github.com/librarium/lending/internal/application/borrowing"
	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/internal/interface/http/dto"
	"github.com/librarium/lending/internal/interface/http/middleware"
	"github.com/librarium/lending/pkg/response"
)

// BorrowingHandler 借阅HTTP处理器
type BorrowingHandler struct {
	borrowBook *appborrowing.BorrowBookUseCase
	returnBook *appborrowing.ReturnBookUseCase
}

// NewBorrowingHandler 创建借阅处理器
func NewBorrowingHandler(borrowBook *appborrowing.BorrowBookUseCase, returnBook *appborrowing.ReturnBookUseCase) *BorrowingHandler {
	return &BorrowingHandler{
		borrowBook: borrowBook,
		returnBook: returnBook,
	}
}

// Borrow 借书
// @Summary      借书
// @Description  当前用户借出一本在馆图书
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BorrowRequest true "图书ID"
// @Success      200 {object} response.Response{data=appborrowing.BorrowingResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      422 {object} response.Response "图书不存在或已借出"
// @Router       /api/borrowings [post]
func (h *BorrowingHandler) Borrow(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.BorrowRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. 调用借书用例
	result, err := h.borrowBook.Execute(c.Request.Context(), appborrowing.BorrowRequest{
		UserID: middleware.MustGetUserID(c),
		BookID: req.BookID,
	})
	if err != nil {
		// book_id属于请求参数，不存在时按参数错误处理
		if errors.Is(err, book.ErrBookNotFound) {
			response.Fail(c, http.StatusUnprocessableEntity, book.ErrBookNotFound.Message)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, "Book borrowed successfully", result)
}

// Return 还书
// @Summary      还书
// @Description  归还当前用户自己的借阅记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} response.Response{data=appborrowing.BorrowingResponse}
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Failure      422 {object} response.Response "已归还"
// @Router       /api/borrowings/{id}/return [post]
func (h *BorrowingHandler) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Error(c, borrowing.ErrBorrowingNotFound)
		return
	}

	result, err := h.returnBook.Execute(c.Request.Context(), appborrowing.ReturnRequest{
		UserID:      middleware.MustGetUserID(c),
		BorrowingID: id,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Book returned successfully", result)
}
