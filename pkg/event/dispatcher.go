// Package event 进程内异步事件分发
//
// 借阅用例在事务提交后调用Publish，Dispatcher把事件放入缓冲队列，
// 由固定数量的worker调用订阅者。投递是尽力而为的：
//   - 队列满时丢弃事件并记录告警，Publish永不阻塞请求
//   - 订阅者返回错误或panic只记录日志，不影响其他订阅者和发布方
//   - 不保证事件之间的顺序
package event

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/librarium/lending/pkg/metrics"
)

// Event 事件，值类型，发布后不应再被修改
type Event interface {
	EventName() string
}

// Handler 事件处理函数
type Handler func(ctx context.Context, ev Event) error

// Publisher 发布事件（用例层依赖此接口）
type Publisher interface {
	Publish(ev Event)
}

// Options 分发器参数
type Options struct {
	Workers   int // worker数量，默认2
	QueueSize int // 缓冲队列长度，默认256
}

type subscriber struct {
	name    string
	handler Handler
}

// Dispatcher 异步事件分发器
type Dispatcher struct {
	logger *zap.Logger
	queue  chan Event
	wg     sync.WaitGroup

	subMu       sync.RWMutex
	subscribers map[string][]subscriber

	closeMu sync.RWMutex
	closed  bool
}

// NewDispatcher 创建分发器并启动worker
func NewDispatcher(logger *zap.Logger, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}

	d := &Dispatcher{
		logger:      logger,
		queue:       make(chan Event, opts.QueueSize),
		subscribers: make(map[string][]subscriber),
	}

	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Subscribe 订阅事件
// name用于日志和指标标签，如 log_notifier、mq_forwarder
func (d *Dispatcher) Subscribe(eventName, name string, handler Handler) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subscribers[eventName] = append(d.subscribers[eventName], subscriber{name: name, handler: handler})
}

// Publish 非阻塞入队，队列满或已关闭时丢弃
func (d *Dispatcher) Publish(ev Event) {
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()

	if d.closed {
		d.drop(ev, "dispatcher closed")
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.drop(ev, "queue full")
	}
}

// Shutdown 停止接收新事件，等待队列中的事件处理完毕或ctx到期
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.closeMu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	d.subMu.RLock()
	subs := d.subscribers[ev.EventName()]
	d.subMu.RUnlock()

	for _, sub := range subs {
		d.invoke(ev, sub)
	}
}

// invoke 调用单个订阅者，隔离错误与panic
// 订阅者使用独立的Background上下文，请求结束不会取消投递
func (d *Dispatcher) invoke(ev Event, sub subscriber) {
	result := "delivered"
	defer func() {
		if r := recover(); r != nil {
			result = "failed"
			d.logger.Error("event handler panicked",
				zap.String("event", ev.EventName()),
				zap.String("handler", sub.name),
				zap.Any("panic", r),
			)
		}
		metrics.NotificationsTotal.WithLabelValues(ev.EventName(), sub.name, result).Inc()
	}()

	if err := sub.handler(context.Background(), ev); err != nil {
		result = "failed"
		d.logger.Warn("event handler failed",
			zap.String("event", ev.EventName()),
			zap.String("handler", sub.name),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) drop(ev Event, reason string) {
	metrics.NotificationsTotal.WithLabelValues(ev.EventName(), "", "dropped").Inc()
	d.logger.Warn("event dropped",
		zap.String("event", ev.EventName()),
		zap.String("reason", reason),
	)
}

// =========================================
// 测试辅助
// =========================================

// Recorder 同步记录发布的事件，用于用例层测试
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events 已记录事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
