package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/pkg/event"
	"github.com/librarium/lending/pkg/mq"
)

// LogNotifier 把借还书事件写成通知日志
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notification")}
}

// Register 订阅借书、还书事件
func (n *LogNotifier) Register(d *event.Dispatcher) {
	d.Subscribe(borrowing.EventBookBorrowed, "log_notifier", n.Handle)
	d.Subscribe(borrowing.EventBookReturned, "log_notifier", n.Handle)
}

// Handle 处理单个事件
func (n *LogNotifier) Handle(_ context.Context, ev event.Event) error {
	msg, ok := NewMessage(ev)
	if !ok {
		return fmt.Errorf("unsupported event %q", ev.EventName())
	}
	n.Record(msg)
	return nil
}

// Record 记录一条通知（cmd/notifier消费消息后也走这里）
func (n *LogNotifier) Record(msg Message) {
	n.logger.Info(msg.Line(),
		zap.String("event", msg.Event),
		zap.Uint("borrowing_id", msg.BorrowingID),
		zap.Uint("user_id", msg.UserID),
		zap.Uint("book_id", msg.BookID),
	)
}

// HandleDelivery 消费队列中的通知消息
// 无法解析的消息直接确认并丢弃，避免反复重新入队
func (n *LogNotifier) HandleDelivery(_ context.Context, d mq.Delivery) error {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		n.logger.Warn("discard malformed message",
			zap.String("routing_key", d.RoutingKey),
			zap.Error(err),
		)
		return nil
	}
	if msg.Event == "" {
		msg.Event = d.RoutingKey
	}
	n.Record(msg)
	return nil
}
