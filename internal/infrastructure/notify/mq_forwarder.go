package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/pkg/circuitbreaker"
	"github.com/librarium/lending/pkg/event"
	"github.com/librarium/lending/pkg/metrics"
)

// MessagePublisher 消息发布（*mq.Publisher实现）
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// publishTimeout 单条消息发布超时
const publishTimeout = 5 * time.Second

// MQForwarder 把借阅事件转发到RabbitMQ
// 事件名即routing key；发布经过熔断器，RabbitMQ不可用时快速失败
type MQForwarder struct {
	publisher MessagePublisher
	breaker   *circuitbreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewMQForwarder 创建转发器
// openTimeout为熔断后的冷却时间
func NewMQForwarder(publisher MessagePublisher, openTimeout time.Duration, logger *zap.Logger) *MQForwarder {
	const name = "rabbitmq"

	cb := circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		Timeout: openTimeout,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))

	return &MQForwarder{
		publisher: publisher,
		breaker:   cb,
		logger:    logger,
	}
}

// Register 订阅借书、还书事件
func (f *MQForwarder) Register(d *event.Dispatcher) {
	d.Subscribe(borrowing.EventBookBorrowed, "mq_forwarder", f.Handle)
	d.Subscribe(borrowing.EventBookReturned, "mq_forwarder", f.Handle)
}

// Handle 发布单个事件
func (f *MQForwarder) Handle(ctx context.Context, ev event.Event) error {
	msg, ok := NewMessage(ev)
	if !ok {
		return fmt.Errorf("unsupported event %q", ev.EventName())
	}

	err := f.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return f.publisher.Publish(ctx, msg.Event, msg)
	})

	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrOpenState), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		result = "rejected"
	default:
		result = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues(f.breaker.Name(), result).Inc()

	if err != nil {
		return fmt.Errorf("forward %s: %w", msg.Event, err)
	}
	return nil
}

// State 熔断器当前状态
func (f *MQForwarder) State() circuitbreaker.State {
	return f.breaker.State()
}
