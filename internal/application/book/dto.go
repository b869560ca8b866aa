package book

import (
	"time"

	"github.com/librarium/lending/internal/domain/book"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// BookResponse 图书DTO
type BookResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	ISBN        string  `json:"isbn"`
	PublishedAt *string `json:"published_at"` // 2006-01-02，未设置时为null
	Status      string  `json:"status"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ListBooksResponse 分页结果
type ListBooksResponse struct {
	Items    []BookResponse
	Total    int64
	Page     int
	PerPage  int
	LastPage int
}

func toBookResponse(b *book.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Status:      string(b.Status),
		Description: b.Description,
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
	}
	if b.PublishedAt != nil {
		s := b.PublishedAt.Format(dateLayout)
		resp.PublishedAt = &s
	}
	return resp
}

func toListResponse(p *book.Page) *ListBooksResponse {
	items := make([]BookResponse, len(p.Items))
	for i, b := range p.Items {
		items[i] = toBookResponse(b)
	}
	return &ListBooksResponse{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PerPage:  p.PerPage,
		LastPage: p.LastPage,
	}
}

func formatTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}
