package borrowing

import (
	"context"
	"errors"
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

// ReturnBookUseCase 还书用例
// 流程：
//  1. 按ID+用户查找借阅记录（他人的记录视为不存在）
//  2. 已归还 → ErrAlreadyReturned
//  3. UPDATE borrowings SET returned_at=? WHERE id=? AND returned_at IS NULL（串行化点）
//  4. 同一事务内把图书改回available
//  5. 提交后发布BookReturned事件
type ReturnBookUseCase struct {
	bookRepo      book.Repository
	borrowingRepo borrowing.Repository
	userRepo      user.Repository
	txManager     *mysql.TxManager
	events        event.Publisher
	logger        *zap.Logger
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	bookRepo book.Repository,
	borrowingRepo borrowing.Repository,
	userRepo user.Repository,
	txManager *mysql.TxManager,
	events event.Publisher,
	logger *zap.Logger,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		bookRepo:      bookRepo,
		borrowingRepo: borrowingRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		events:        events,
		logger:        logger,
	}
}

// ReturnRequest 还书请求DTO
type ReturnRequest struct {
	UserID      uint // 从JWT中提取
	BorrowingID uint
}

// Execute 执行还书
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnRequest) (resp *BorrowingResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Return")
	span.SetAttributes(
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.Int64("borrowing.id", int64(req.BorrowingID)),
	)
	defer func() {
		metrics.ObserveLending("return", outcome(err), start)
		tracing.EndSpan(span, err)
	}()

	var ev borrowing.BookReturned
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 查找借阅记录（归属校验是查询条件的一部分）
		record, err := uc.borrowingRepo.FindByIDForUser(txCtx, req.BorrowingID, req.UserID)
		if err != nil {
			return err
		}

		// 2. 领域规则：只能归还一次
		now := time.Now()
		if err := record.MarkReturned(now); err != nil {
			return err
		}

		// 3. 条件更新，并发归还只有一个成功
		if err := uc.borrowingRepo.MarkReturned(txCtx, record.ID, now); err != nil {
			return err
		}

		// 4. 图书恢复可借
		if err := uc.bookRepo.MarkAvailable(txCtx, record.BookID); err != nil {
			return err
		}

		// 5. 解析事件需要的用户名、书名
		u, err := uc.userRepo.FindByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		ev = borrowing.BookReturned{Borrowing: *record, UserName: u.Name}
		b, err := uc.bookRepo.FindByID(txCtx, record.BookID)
		switch {
		case err == nil:
			ev.BookTitle = b.Title
		case !errors.Is(err, book.ErrBookNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ev)
	uc.logger.Debug("book returned",
		zap.Uint("borrowing_id", ev.Borrowing.ID),
		zap.Uint("user_id", req.UserID),
		zap.Uint("book_id", ev.Borrowing.BookID),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
	)

	return toBorrowingResponse(&ev.Borrowing), nil
}
