package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// UpdateBookUseCase 图书维护用例(更新信息/补货/删除)
// 权限规则:发布者本人或管理员
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建图书维护用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 部分更新请求DTO
// 指针字段为nil表示不修改;非nil的零值(如空字符串)是合法的更新值
type UpdateBookRequest struct {
	ID          uint
	UserID      uint // 操作者(从JWT中提取)
	IsAdmin     bool
	Title       *string
	Author      *string
	Publisher   *string
	Genre       *string
	Price       *int64
	CoverURL    *string
	Description *string
	IsUpcoming  *bool
}

// Execute 执行部分更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDetail, error) {
	patch := book.Patch{
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Genre:       req.Genre,
		Price:       req.Price,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		IsUpcoming:  req.IsUpcoming,
	}

	b, err := uc.bookService.UpdateBook(ctx, req.ID, req.UserID, req.IsAdmin, patch)
	if err != nil {
		return nil, err
	}

	return toBookDetail(b), nil
}

// Restock 补充库存
func (uc *UpdateBookUseCase) Restock(ctx context.Context, id, userID uint, isAdmin bool, quantity int) error {
	return uc.bookService.RestockBook(ctx, id, userID, isAdmin, quantity)
}

// Delete 删除图书
func (uc *UpdateBookUseCase) Delete(ctx context.Context, id, userID uint, isAdmin bool) error {
	return uc.bookService.DeleteBook(ctx, id, userID, isAdmin)
}
