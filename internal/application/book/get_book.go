package book

import (
	"context"

	"github.com/librarium/lending/internal/domain/book"
)

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	bookRepo book.Repository
}

func NewGetBookUseCase(bookRepo book.Repository) *GetBookUseCase {
	return &GetBookUseCase{bookRepo: bookRepo}
}

func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toBookResponse(b)
	return &resp, nil
}
