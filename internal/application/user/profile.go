package user

import (
	"context"

	"github.com/librarium/lending/internal/domain/borrowing"
	"github.com/librarium/lending/internal/domain/user"
)

// ProfileUseCase 个人信息+借阅历史
type ProfileUseCase struct {
	userRepo      user.Repository
	borrowingRepo borrowing.Repository
}

// NewProfileUseCase 创建个人信息用例
func NewProfileUseCase(userRepo user.Repository, borrowingRepo borrowing.Repository) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo:      userRepo,
		borrowingRepo: borrowingRepo,
	}
}

// BorrowedBook 借阅历史条目
type BorrowedBook struct {
	ID         uint    `json:"id"`
	BookID     uint    `json:"book_id"`
	BookTitle  string  `json:"book_title"`
	BorrowedAt string  `json:"borrowed_at"`
	ReturnedAt *string `json:"returned_at"`
}

// ProfileResponse 个人信息响应
type ProfileResponse struct {
	User          UserInfo       `json:"user"`
	BorrowedBooks []BorrowedBook `json:"borrowed_books"`
}

// Execute 查询个人信息
func (uc *ProfileUseCase) Execute(ctx context.Context, userID uint) (*ProfileResponse, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries, err := uc.borrowingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	books := make([]BorrowedBook, len(summaries))
	for i, s := range summaries {
		books[i] = BorrowedBook{
			ID:         s.ID,
			BookID:     s.BookID,
			BookTitle:  s.BookTitle,
			BorrowedAt: s.BorrowedAt.Format(dateTimeLayout),
		}
		if s.ReturnedAt != nil {
			r := s.ReturnedAt.Format(dateTimeLayout)
			books[i].ReturnedAt = &r
		}
	}

	return &ProfileResponse{User: toUserInfo(u), BorrowedBooks: books}, nil
}

// UpdateProfileUseCase 更新个人资料
type UpdateProfileUseCase struct {
	userService user.Service
}

// NewUpdateProfileUseCase 创建更新资料用例
func NewUpdateProfileUseCase(userService user.Service) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userService: userService}
}

// UpdateProfileRequest 更新资料请求，nil或空字符串表示不修改
type UpdateProfileRequest struct {
	UserID   uint
	Name     *string
	Email    *string
	Password *string
}

// Execute 执行更新
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, req UpdateProfileRequest) (*UserInfo, error) {
	u, err := uc.userService.UpdateProfile(ctx, req.UserID, user.ProfileChanges{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
