package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN作为业务唯一标识(数据库层保证唯一性)
// 4. PublisherID关联发布图书的用户
// 5. IsUpcoming标记即将上架的预告图书,不可下单
type Book struct {
	ID          uint
	ISBN        string // ISBN号(国际标准书号)
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Genre       string // 分类(如fiction, science)
	Price       int64  // 价格(单位:分,1元=100分)
	Stock       int    // 库存数量
	CoverURL    string // 封面图片URL
	Description string // 图书描述
	IsUpcoming  bool   // 是否为预告图书(未上架,不可购买)
	PublisherID uint   // 发布者用户ID(关联User表)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// isbn需由调用方先校验格式;price单位为分,必须>0
func NewBook(isbn, title, author, publisher, genre string, price int64, stock int, coverURL, description string, isUpcoming bool, publisherID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Genre:       genre,
		Price:       price,
		Stock:       stock,
		CoverURL:    coverURL,
		Description: description,
		IsUpcoming:  isUpcoming,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Patch 图书信息部分更新
// 指针字段区分"未提供"(nil)和"提供了零值":
// Description=""、IsUpcoming=false是合法更新,nil表示保持原值
type Patch struct {
	Title       *string
	Author      *string
	Publisher   *string
	Genre       *string
	Price       *int64
	CoverURL    *string
	Description *string
	IsUpcoming  *bool
}

// ApplyPatch 应用部分更新(领域行为)
// 只修改patch中非nil的字段;价格仍需满足>0的业务规则
func (b *Book) ApplyPatch(p Patch) error {
	if p.Price != nil && *p.Price <= 0 {
		return ErrInvalidPrice
	}

	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.CoverURL != nil {
		b.CoverURL = *p.CoverURL
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.IsUpcoming != nil {
		b.IsUpcoming = *p.IsUpcoming
	}

	b.UpdatedAt = time.Now()
	return nil
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateStock 更新库存(领域行为)
// 业务规则:库存不能为负数
func (b *Book) UpdateStock(newStock int) error {
	if newStock < 0 {
		return ErrInvalidStock
	}
	b.Stock = newStock
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存(用于订单创建)
// 业务规则:扣减后库存不能为负数
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return NewInsufficientStockError(b.Title, b.Stock, quantity)
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存(用于订单取消、补货)
func (b *Book) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.PublisherID == userID
}

// IsOrderable 检查图书是否可下单
// 预告图书不可购买,与库存是否充足无关
func (b *Book) IsOrderable() bool {
	return !b.IsUpcoming
}
