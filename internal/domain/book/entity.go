package book

import (
	"strings"
	"time"
)

// Status 图书借阅状态
type Status string

const (
	StatusAvailable Status = "available"
	StatusBorrowed  Status = "borrowed"
)

// ParseStatus 解析状态，空字符串返回默认值available
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusAvailable, nil
	case StatusAvailable, StatusBorrowed:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Book 图书实体（聚合根）
// DDD设计说明:
// 1. Status只由借阅流程（borrow/return）或管理员修改
// 2. Status为borrowed当且仅当存在一条未归还的借阅记录
// 3. ISBN全局唯一（数据库唯一索引保证）
type Book struct {
	ID          uint
	Title       string
	Author      string
	ISBN        string
	PublishedAt *time.Time // 出版日期（可选）
	Status      Status
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书（工厂方法）
// status为空时默认为available
func NewBook(title, author, isbn string, publishedAt *time.Time, description string, status Status) *Book {
	if status == "" {
		status = StatusAvailable
	}
	now := time.Now()
	return &Book{
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		ISBN:        strings.TrimSpace(isbn),
		PublishedAt: publishedAt,
		Status:      status,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate 必填字段校验
func (b *Book) Validate() error {
	switch {
	case b.Title == "":
		return ErrTitleRequired
	case b.Author == "":
		return ErrAuthorRequired
	case b.ISBN == "":
		return ErrISBNRequired
	}
	return nil
}

// IsBorrowed 是否已借出
func (b *Book) IsBorrowed() bool {
	return b.Status == StatusBorrowed
}

// Changes 部分更新，nil字段表示不修改
// ClearPublishedAt为true时把出版日期置空（请求中显式传null）
type Changes struct {
	Title            *string
	Author           *string
	ISBN             *string
	PublishedAt      *time.Time
	ClearPublishedAt bool
	Status           *Status
	Description      *string
}

// Normalized 去掉字符串字段首尾空白
func (c Changes) Normalized() Changes {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	c.Title = trim(c.Title)
	c.Author = trim(c.Author)
	c.ISBN = trim(c.ISBN)
	return c
}

// ISBNChanged 本次更新是否修改了ISBN
func (c Changes) ISBNChanged(current string) bool {
	return c.ISBN != nil && strings.TrimSpace(*c.ISBN) != current
}

// MarksAvailable 本次更新是否把状态改为available
func (c Changes) MarksAvailable() bool {
	return c.Status != nil && *c.Status == StatusAvailable
}

// Apply 应用部分更新并校验结果
func (b *Book) Apply(c Changes) error {
	c = c.Normalized()
	if c.Title != nil {
		b.Title = *c.Title
	}
	if c.Author != nil {
		b.Author = *c.Author
	}
	if c.ISBN != nil {
		b.ISBN = *c.ISBN
	}
	switch {
	case c.ClearPublishedAt:
		b.PublishedAt = nil
	case c.PublishedAt != nil:
		b.PublishedAt = c.PublishedAt
	}
	if c.Status != nil {
		b.Status = *c.Status
	}
	if c.Description != nil {
		b.Description = *c.Description
	}
	b.UpdatedAt = time.Now()
	return b.Validate()
}
