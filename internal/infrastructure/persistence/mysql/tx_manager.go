package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey 事务DB在context中的键（私有类型避免冲突）
type txKey struct{}

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内的所有Repository操作都在同一事务中执行，返回error时ROLLBACK，nil时COMMIT
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    // 1. 条件更新图书状态（并发借书的串行化点）
//	    if err := bookRepo.MarkBorrowed(ctx, bookID); err != nil {
//	        return err
//	    }
//	    // 2. 创建借阅记录
//	    return borrowingRepo.Create(ctx, b)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbFromContext(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext 从context获取事务DB,如果没有则使用默认DB
// Repository的所有方法都必须通过它取DB，才能参与外层事务
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
