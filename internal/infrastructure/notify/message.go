// Package notify 借阅事件的订阅者
//
//   - LogNotifier：把借还书记录为一行通知日志
//   - MQForwarder：把事件转发到RabbitMQ，由cmd/notifier在进程外消费
//
// 两者都通过Register订阅event.Dispatcher，借阅用例不感知订阅者的存在。
package notify

import (
	"fmt"
	"time"

	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/pkg/event"
)

// Message 转发到消息队列的事件载荷
type Message struct {
	Event       string     `json:"event"`
	BorrowingID uint       `json:"borrowing_id"`
	UserID      uint       `json:"user_id"`
	UserName    string     `json:"user_name"`
	BookID      uint       `json:"book_id"`
	BookTitle   string     `json:"book_title"`
	BorrowedAt  time.Time  `json:"borrowed_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
}

// NewMessage 借阅事件 → 消息载荷，不认识的事件返回false
func NewMessage(ev event.Event) (Message, bool) {
	var (
		b               borrowing.Borrowing
		userName, title string
	)
	switch e := ev.(type) {
	case borrowing.BookBorrowed:
		b, userName, title = e.Borrowing, e.UserName, e.BookTitle
	case borrowing.BookReturned:
		b, userName, title = e.Borrowing, e.UserName, e.BookTitle
	default:
		return Message{}, false
	}

	return Message{
		Event:       ev.EventName(),
		BorrowingID: b.ID,
		UserID:      b.UserID,
		UserName:    userName,
		BookID:      b.BookID,
		BookTitle:   title,
		BorrowedAt:  b.BorrowedAt,
		ReturnedAt:  b.ReturnedAt,
	}, true
}

// Line 通知文本
//
//	User Alice borrowed book: Dune
//	User Alice returned book: Dune
func (m Message) Line() string {
	verb := "borrowed"
	if m.Event == borrowing.EventBookReturned {
		verb = "returned"
	}
	return fmt.Sprintf("User %s %s book: %s", m.UserName, verb, m.BookTitle)
}
