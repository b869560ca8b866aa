package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appbook "github.com/librarium/lending/internal/application/book"
	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/interface/http/dto"
	"github.com/librarium/lending/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	listBooks  *appbook.ListBooksUseCase
	getBook    *appbook.GetBookUseCase
	createBook *appbook.CreateBookUseCase
	updateBook *appbook.UpdateBookUseCase
	deleteBook *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:  listBooks,
		getBook:    getBook,
		createBook: createBook,
		updateBook: updateBook,
		deleteBook: deleteBook,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询图书，支持关键字搜索、状态过滤和排序，每页50条
// @Tags         图书
// @Produce      json
// @Param        search     query string false "匹配title/author/isbn/description"
// @Param        status     query string false "available(默认) | borrowed，其他值返回空页"
// @Param        sort_by    query string false "title | author | isbn | published_at | status | created_at"
// @Param        sort_order query string false "asc | desc"
// @Param        page       query int    false "页码"
// @Success      200 {object} response.Paginator{data=[]appbook.BookResponse}
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	// 1. 绑定查询参数
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, dto.ValidationMessages(err)...)
		return
	}

	// 2. 调用应用层用例（缓存在用例内部处理）
	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Search:    q.Search,
		Status:    q.Status,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 分页对象直接作为响应体
	response.Paginate(c, response.NewPaginator(
		result.Items, len(result.Items), result.Total, result.Page, result.PerPage,
	))
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Error(c, book.ErrBookNotFound)
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Book found successfully", result)
}

// CreateBook 新增图书
// @Summary      新增图书
// @Description  管理员录入图书，ISBN唯一
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      422 {object} response.Response "参数错误或ISBN已存在"
// @Router       /api/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. 调用应用层用例
	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		PublishedAt: req.PublishedAt.TimePtr(),
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Book created successfully", result)
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  只修改请求中出现的字段，published_at/description传null时清空；借出期间不能把status改回available
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      422 {object} response.Response "参数错误、ISBN已存在或图书借出中"
// @Router       /api/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Error(c, book.ErrBookNotFound)
		return
	}

	var req dto.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:               id,
		Title:            req.Title,
		Author:           req.Author,
		ISBN:             req.ISBN,
		PublishedAt:      req.PublishedAt.TimePtr(),
		ClearPublishedAt: req.PublishedAt.Cleared(),
		Status:           req.Status,
		Description:      req.Description.Ptr(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Book updated successfully", result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  已借出的图书不能删除，删除后ISBN可重新使用
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      201 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      422 {object} response.Response "图书已借出"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Error(c, book.ErrBookNotFound)
		return
	}

	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Book deleted successfully", nil)
}
