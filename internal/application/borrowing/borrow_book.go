package borrowing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
	"github.com/librarium/lending/pkg/event"
	"github.com/librarium/lending/pkg/metrics"
	"github.com/librarium/lending/pkg/tracing"
)

const tracerName = "lending"

// BorrowBookUseCase 借书用例
// 核心问题：同一本书被两个用户同时借走
// 错误实现：
//  1. 查询图书 → available
//  2. 创建借阅记录
//  3. 更新status=borrowed
//     两个请求都通过了步骤1，产生两条未归还的借阅记录
//
// 正确实现：条件更新（Compare-And-Set）
//  1. UPDATE books SET status='borrowed' WHERE id=? AND status='available'
//  2. 影响行数为0 → 图书不存在或已借出
//  3. 同一事务内创建借阅记录，COMMIT
//  4. 提交后发布BookBorrowed事件（异步通知，失败不影响借书结果）
type BorrowBookUseCase struct {
	bookRepo      book.Repository
	borrowingRepo borrowing.Repository
	userRepo      user.Repository
	txManager     *mysql.TxManager
	events        event.Publisher
	logger        *zap.Logger
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	bookRepo book.Repository,
	borrowingRepo borrowing.Repository,
	userRepo user.Repository,
	txManager *mysql.TxManager,
	events event.Publisher,
	logger *zap.Logger,
) *BorrowBookUseCase {
	return &BorrowBookUseCase{
		bookRepo:      bookRepo,
		borrowingRepo: borrowingRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		events:        events,
		logger:        logger,
	}
}

// BorrowRequest 借书请求DTO
type BorrowRequest struct {
	UserID uint // 从JWT中提取
	BookID uint
}

// Execute 执行借书
func (uc *BorrowBookUseCase) Execute(ctx context.Context, req BorrowRequest) (resp *BorrowingResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Borrow")
	span.SetAttributes(
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.Int64("book.id", int64(req.BookID)),
	)
	defer func() {
		metrics.ObserveLending("borrow", outcome(err), start)
		tracing.EndSpan(span, err)
	}()

	var ev borrowing.BookBorrowed
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1：抢占图书（串行化点）
		// ========================================
		if err := uc.bookRepo.MarkBorrowed(txCtx, req.BookID); err != nil {
			return err
		}

		// ========================================
		// 步骤2：创建借阅记录
		// ========================================
		record := borrowing.NewBorrowing(req.UserID, req.BookID, time.Now())
		if err := uc.borrowingRepo.Create(txCtx, record); err != nil {
			return err
		}

		// ========================================
		// 步骤3：解析事件需要的用户名、书名
		// ========================================
		b, err := uc.bookRepo.FindByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		u, err := uc.userRepo.FindByID(txCtx, req.UserID)
		if err != nil {
			return err
		}

		ev = borrowing.BookBorrowed{Borrowing: *record, UserName: u.Name, BookTitle: b.Title}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 步骤4：事务已提交，发布事件
	uc.events.Publish(ev)
	uc.logger.Debug("book borrowed",
		zap.Uint("borrowing_id", ev.Borrowing.ID),
		zap.Uint("user_id", req.UserID),
		zap.Uint("book_id", req.BookID),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
	)

	return toBorrowingResponse(&ev.Borrowing), nil
}
