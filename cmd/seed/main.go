// seed 生成演示数据：管理员账号 admin@gmail.com，以及若干读者、图书和借阅记录
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/infrastructure/logger"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认按LIBRARY_ENV查找config目录）")
	borrowings := flag.Int("borrowings", 500, "借阅记录数")
	books := flag.Int("books", 0, "额外的在馆图书数")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "随机种子")
	flag.Parse()

	// 步骤1：配置与日志
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// 步骤2：数据库（NewDB会自动迁移）
	db, err := mysql.NewDB(cfg, zl)
	if err != nil {
		zl.Fatal("connect database failed", zap.Error(err))
	}

	// 步骤3：生成数据
	userRepo := mysql.NewUserRepository(db)
	seeder := NewSeeder(
		userRepo,
		user.NewService(userRepo),
		mysql.NewBookRepository(db),
		mysql.NewBorrowingRepository(db),
		mysql.NewTxManager(db),
		rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)),
		zl,
	)
	if err := seeder.Run(context.Background(), Options{Borrowings: *borrowings, Books: *books}); err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}
}
