package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CreateBookRequest 新增图书请求
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Author      string `json:"author" binding:"required,max=255"`
	ISBN        string `json:"isbn" binding:"required,max=255"`
	PublishedAt *Date  `json:"published_at"`
	Status      string `json:"status" binding:"omitempty,oneof=available borrowed"`
	Description string `json:"description"`
}

// UpdateBookRequest 更新图书请求，未出现的字段保持不变
// published_at、description传null时清空
type UpdateBookRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=255"`
	Author      *string        `json:"author" binding:"omitempty,min=1,max=255"`
	ISBN        *string        `json:"isbn" binding:"omitempty,min=1,max=255"`
	PublishedAt NullableDate   `json:"published_at" swaggertype:"string" example:"2006-01-02"`
	Status      *string        `json:"status" binding:"omitempty,oneof=available borrowed"`
	Description NullableString `json:"description" swaggertype:"string"`
}

// ListBooksQuery 图书列表查询参数
// status/sort_by/sort_order的合法性由用例层判断
type ListBooksQuery struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
}

// =========================================
// Date 日期字段
// =========================================

const dateLayout = "2006-01-02"

// Date 接受 "2006-01-02" 或 RFC3339，空串和null视为未设置
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("published_at must be a date string: %w", err)
	}
	if s == "" {
		return nil
	}

	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("published_at is not a valid date: %q", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// TimePtr 转换为用例层使用的*time.Time
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// =========================================
// 可清空字段：区分缺失、null和有值
// =========================================

// NullableString Set表示请求中出现了该字段，Value为nil表示显式null
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("value must be a string: %w", err)
	}
	n.Value = &s
	return nil
}

// Ptr 转换为用例层的*string：缺失为nil，null清空为""
func (n NullableString) Ptr() *string {
	if !n.Set {
		return nil
	}
	if n.Value == nil {
		empty := ""
		return &empty
	}
	return n.Value
}

// NullableDate 同NullableString，空串等同null
type NullableDate struct {
	Set   bool
	Value *Date
}

func (n *NullableDate) UnmarshalJSON(data []byte) error {
	n.Set = true
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	if d.IsZero() {
		n.Value = nil
		return nil
	}
	n.Value = &d
	return nil
}

// TimePtr 新的出版日期，未设置或清空时为nil
func (n NullableDate) TimePtr() *time.Time {
	return n.Value.TimePtr()
}

// Cleared 请求中显式传了null或空串
func (n NullableDate) Cleared() bool {
	return n.Set && n.Value == nil
}
