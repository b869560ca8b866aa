package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
)

const (
	adminName     = "Administrator"
	adminEmail    = "admin@gmail.com"
	adminPassword = "123456789"

	// 演示读者统一密码
	readerPassword = "password"
)

// Options 生成数量
type Options struct {
	Borrowings int // 借阅记录数，每条附带一个读者和一本书，约一半已归还
	Books      int // 额外的在馆图书
}

// Seeder 演示数据生成器
// 每条借阅记录与对应图书在同一事务内写入，图书状态与未归还记录保持一致
type Seeder struct {
	users      user.Repository
	userSvc    user.Service
	books      book.Repository
	borrowings borrowing.Repository
	tx         *mysql.TxManager
	rng        *rand.Rand
	logger     *zap.Logger
}

// NewSeeder 创建生成器
func NewSeeder(
	users user.Repository,
	userSvc user.Service,
	books book.Repository,
	borrowings borrowing.Repository,
	tx *mysql.TxManager,
	rng *rand.Rand,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		users:      users,
		userSvc:    userSvc,
		books:      books,
		borrowings: borrowings,
		tx:         tx,
		rng:        rng,
		logger:     logger,
	}
}

// Run 生成数据，可重复执行（管理员已存在时跳过）
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	// 1. 管理员
	if err := s.ensureAdmin(ctx); err != nil {
		return err
	}

	// 2. 读者共用一个密码哈希，bcrypt每次都算太慢
	hashed, err := bcrypt.GenerateFromPassword([]byte(readerPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash reader password: %w", err)
	}

	// 3. 借阅记录
	for i := 0; i < opts.Borrowings; i++ {
		if err := s.tx.Transaction(ctx, func(ctx context.Context) error {
			return s.seedBorrowing(ctx, string(hashed))
		}); err != nil {
			return fmt.Errorf("seed borrowing %d: %w", i+1, err)
		}
	}

	// 4. 在馆图书
	for i := 0; i < opts.Books; i++ {
		if err := s.books.Create(ctx, s.fakeBook(book.StatusAvailable)); err != nil {
			return fmt.Errorf("seed book %d: %w", i+1, err)
		}
	}

	s.logger.Info("seed finished",
		zap.Int("borrowings", opts.Borrowings),
		zap.Int("books", opts.Books),
	)
	return nil
}

func (s *Seeder) ensureAdmin(ctx context.Context) error {
	exists, err := s.users.ExistsByEmail(ctx, adminEmail, 0)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("admin already exists", zap.String("email", adminEmail))
		return nil
	}

	if _, err := s.userSvc.Register(ctx, adminName, adminEmail, adminPassword, user.RoleAdmin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin created", zap.String("email", adminEmail))
	return nil
}

func (s *Seeder) seedBorrowing(ctx context.Context, hashedPassword string) error {
	// 1. 读者
	first, last := pick(s.rng, firstNames), pick(s.rng, lastNames)
	email := fmt.Sprintf("%s.%s.%s@example.com",
		strings.ToLower(first), strings.ToLower(last), uuid.NewString()[:8])
	reader := user.NewUser(first+" "+last, email, hashedPassword, user.RoleUser)
	if err := s.users.Create(ctx, reader); err != nil {
		return err
	}

	// 2. 借阅时间在最近一个月内，一半已归还
	now := time.Now()
	borrowedAt := now.Add(-time.Duration(s.rng.Int64N(int64(30 * 24 * time.Hour))))
	var returnedAt *time.Time
	if s.rng.IntN(2) == 0 {
		t := borrowedAt.Add(time.Duration(s.rng.Int64N(int64(now.Sub(borrowedAt)) + 1)))
		returnedAt = &t
	}

	// 3. 图书状态与借阅记录一致
	status := book.StatusBorrowed
	if returnedAt != nil {
		status = book.StatusAvailable
	}
	b := s.fakeBook(status)
	if err := s.books.Create(ctx, b); err != nil {
		if errors.Is(err, book.ErrISBNDuplicate) {
			b.ISBN = isbn13(s.rng)
			err = s.books.Create(ctx, b)
		}
		if err != nil {
			return err
		}
	}

	// 4. 借阅记录
	record := borrowing.NewBorrowing(reader.ID, b.ID, borrowedAt)
	if returnedAt != nil {
		if err := record.MarkReturned(*returnedAt); err != nil {
			return err
		}
	}
	return s.borrowings.Create(ctx, record)
}

func (s *Seeder) fakeBook(status book.Status) *book.Book {
	published := time.Date(1950+s.rng.IntN(75), time.Month(1+s.rng.IntN(12)), 1+s.rng.IntN(28), 0, 0, 0, 0, time.Local)
	title := strings.Join([]string{
		pick(s.rng, titleWords), pick(s.rng, titleWords), pick(s.rng, titleWords), pick(s.rng, titleWords),
	}, " ")
	description := fmt.Sprintf("A %s story about %s.", pick(s.rng, adjectives), strings.ToLower(pick(s.rng, titleWords)))

	return book.NewBook(title, pick(s.rng, firstNames)+" "+pick(s.rng, lastNames), isbn13(s.rng), &published, description, status)
}

// isbn13 随机生成带校验位的ISBN-13
func isbn13(rng *rand.Rand) string {
	digits := make([]int, 0, 13)
	digits = append(digits, 9, 7, 8)
	for i := 0; i < 9; i++ {
		digits = append(digits, rng.IntN(10))
	}

	sum := 0
	for i, d := range digits {
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	digits = append(digits, (10-sum%10)%10)

	var sb strings.Builder
	for _, d := range digits {
		sb.WriteByte(byte('0' + d))
	}
	return sb.String()
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.IntN(len(words))]
}

var (
	firstNames = []string{"Ada", "Alan", "Grace", "Edsger", "Barbara", "Donald", "Frances", "Ken", "Margaret", "Niklaus", "Radia", "Tony"}
	lastNames  = []string{"Lovelace", "Turing", "Hopper", "Dijkstra", "Liskov", "Knuth", "Allen", "Thompson", "Hamilton", "Wirth", "Perlman", "Hoare"}
	titleWords = []string{"Silent", "River", "Garden", "Machine", "Winter", "Empire", "Shadow", "Letters", "Harbor", "Atlas", "Memory", "Orchard", "Signal", "Lantern", "Voyage", "Archive"}
	adjectives = []string{"quiet", "sweeping", "curious", "haunting", "playful", "patient", "restless"}
)
