package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/librarium/lending/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 生产使用MySQL，本地/测试可切换为SQLite（database.driver）
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境SQL日志输出到zap，生产环境只记录慢查询
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	// 1. 选择方言
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DBName)
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	// 2. 连接数据库
	db, err := Open(dialector, newGormLogger(logger, cfg.Server.Mode == "debug"))
	if err != nil {
		return nil, err
	}

	// 3. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 4. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	logger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 5. 自动迁移表结构
	// 注意：生产环境应使用版本化的迁移脚本
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Open 打开GORM连接
// TranslateError让唯一索引冲突统一返回gorm.ErrDuplicatedKey
func Open(dialector gorm.Dialector, logger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// OpenSQLite 打开SQLite数据库并迁移（测试与本地演示）
// 内存库示例：file:lending?mode=memory&cache=shared
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := Open(sqlite.Open(dsn), gormlogger.Default.LogMode(gormlogger.Silent))
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&BorrowingModel{},
	)
}

// newGormLogger SQL日志写入zap
// debug模式打印全部SQL，其他模式只打印慢查询和错误
func newGormLogger(logger *zap.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// =========================================
// GORM数据模型
// 说明：infrastructure层的数据模型带GORM tag，domain实体不依赖GORM
// =========================================

// UserModel GORM用户模型
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null;comment:姓名"`
	Email     string    `gorm:"uniqueIndex;size:191;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role      string    `gorm:"size:20;not null;default:user;comment:角色(admin|user)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN有唯一索引；删除是物理删除，ISBN随之释放
// 2. status + created_at复合索引覆盖默认列表查询
type BookModel struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"size:255;not null;comment:书名"`
	Author      string     `gorm:"size:255;not null;comment:作者"`
	ISBN        string     `gorm:"uniqueIndex;size:255;not null;comment:ISBN号"`
	PublishedAt *time.Time `gorm:"type:date;comment:出版日期"`
	Status      string     `gorm:"index:idx_status_created,priority:1;size:20;not null;default:available;comment:状态(available|borrowed)"`
	Description string     `gorm:"type:text;comment:图书描述"`
	CreatedAt   time.Time  `gorm:"index:idx_status_created,priority:2;comment:创建时间"`
	UpdatedAt   time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BorrowingModel GORM借阅记录模型
// 外键只关联users；book_id不建外键约束，图书删除后历史借阅仍保留
// returned_at为NULL表示未归还
type BorrowingModel struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"index;not null;comment:借阅用户ID"`
	BookID     uint       `gorm:"index:idx_book_returned,priority:1;not null;comment:图书ID"`
	BorrowedAt time.Time  `gorm:"not null;comment:借出时间"`
	ReturnedAt *time.Time `gorm:"index:idx_book_returned,priority:2;comment:归还时间"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName 指定表名
func (BorrowingModel) TableName() string {
	return "borrowings"
}
