package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// PublishBook 发布图书(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 价格必须在1-999999分之间
	// - 库存必须>=0
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, publisher, genre string, price int64, stock int, coverURL, description string, isUpcoming bool, publisherID uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateBook 部分更新图书信息
	// 业务规则:发布者本人或管理员可以修改;只更新patch中提供的字段
	UpdateBook(ctx context.Context, id uint, userID uint, isAdmin bool, patch Patch) (*Book, error)

	// RestockBook 补充库存
	// 业务规则:发布者本人或管理员可以操作,数量必须>0
	RestockBook(ctx context.Context, id uint, userID uint, isAdmin bool, quantity int) error

	// DeleteBook 删除图书
	// 业务规则:发布者本人或管理员可以删除
	DeleteBook(ctx context.Context, id uint, userID uint, isAdmin bool) error

	// ListBooks 分页查询图书列表
	// 公开接口,不需要权限校验
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PublishBook 发布图书
func (s *service) PublishBook(ctx context.Context, isbn, title, author, publisher, genre string, price int64, stock int, coverURL, description string, isUpcoming bool, publisherID uint) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 价格范围校验(1分-9999.99元)
	if price < 1 || price > 999999 {
		return nil, ErrInvalidPrice
	}

	// 3. 库存校验
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	// 4. 检查ISBN是否已存在
	existingBook, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existingBook != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 5. 创建图书实体并持久化
	book := NewBook(isbn, title, author, publisher, genre, price, stock, coverURL, description, isUpcoming, publisherID)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// UpdateBook 部分更新图书信息
func (s *service) UpdateBook(ctx context.Context, id uint, userID uint, isAdmin bool, patch Patch) (*Book, error) {
	// 1. 查询图书
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. 权限检查:发布者本人或管理员
	if !isAdmin && !book.IsOwnedBy(userID) {
		return nil, ErrUnauthorized
	}

	// 3. 应用部分更新(nil字段保持原值)
	if err := book.ApplyPatch(patch); err != nil {
		return nil, err
	}

	// 4. 持久化
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// RestockBook 补充库存
func (s *service) RestockBook(ctx context.Context, id uint, userID uint, isAdmin bool, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !isAdmin && !book.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	// 原子增量更新,避免读-改-写竞态
	return s.repo.UpdateStock(ctx, id, quantity)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint, userID uint, isAdmin bool) error {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !isAdmin && !book.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	return s.repo.Delete(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10(10位)和ISBN-13(13位),允许带分隔符
// 简化实现:只检查位数(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9Xx]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	length := len(cleanISBN)
	return length == 10 || length == 13
}
