// notifier 独立的通知消费进程
// 从RabbitMQ队列读取借还书消息，记录与API进程内相同的通知日志
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/infrastructure/logger"
	"github.com/librarium/lending/internal/infrastructure/notify"
	"github.com/librarium/lending/pkg/mq"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认按LIBRARY_ENV查找config目录）")
	flag.Parse()

	// 步骤1：配置与日志
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.MQ.URL == "" {
		zl.Fatal("mq.url is required")
	}

	// 步骤2：声明队列并绑定routing key
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType,
		cfg.MQ.Queue, cfg.MQ.RoutingKeys, zl)
	if err != nil {
		zl.Fatal("create consumer failed", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	// 步骤3：阻塞消费，收到信号后退出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := notify.NewLogNotifier(zl)
	if err := consumer.Consume(ctx, notifier.HandleDelivery); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("consumer stopped with error", zap.Error(err))
	}
	zl.Info("notifier exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
