package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// PublishBookUseCase 图书上架用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO,与HTTP层解耦
type PublishBookUseCase struct {
	bookService book.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
	}
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	ISBN        string // ISBN号
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Genre       string // 分类
	Price       int64  // 价格(分)
	Stock       int    // 初始库存
	CoverURL    string // 封面图URL
	Description string // 图书描述
	IsUpcoming  bool   // 是否预告(预告图书不可下单)
	PublisherID uint   // 发布者用户ID(从认证中间件获取)
}

// BookDetail 图书详情DTO(上架/查询/更新用例共用)
type BookDetail struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Genre       string `json:"genre"`
	Price       int64  `json:"price"` // 价格(分)
	Stock       int    `json:"stock"`
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
	IsUpcoming  bool   `json:"is_upcoming"`
	PublisherID uint   `json:"publisher_id"`
	CreatedAt   string `json:"created_at"`
}

func toBookDetail(b *book.Book) *BookDetail {
	return &BookDetail{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Genre:       b.Genre,
		Price:       b.Price,
		Stock:       b.Stock,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		IsUpcoming:  b.IsUpcoming,
		PublisherID: b.PublisherID,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Execute 执行上架用例
// 业务规则校验(ISBN格式、价格范围、ISBN重复)由领域服务负责
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.PublishBook(
		ctx,
		req.ISBN,
		req.Title,
		req.Author,
		req.Publisher,
		req.Genre,
		req.Price,
		req.Stock,
		req.CoverURL,
		req.Description,
		req.IsUpcoming,
		req.PublisherID,
	)
	if err != nil {
		return nil, err
	}

	return toBookDetail(b), nil
}
