package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// memRepo 内存版图书仓储(测试用)
type memRepo struct {
	nextID uint
	books  map[uint]*book.Book
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, books: make(map[uint]*book.Book)}
}

func (r *memRepo) Create(ctx context.Context, b *book.Book) error {
	b.ID = r.nextID
	r.nextID++
	copied := *b
	r.books[b.ID] = &copied
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	for _, b := range r.books {
		if b.ISBN == isbn {
			copied := *b
			return &copied, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *memRepo) Update(ctx context.Context, b *book.Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	copied := *b
	r.books[b.ID] = &copied
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *memRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var result []*book.Book
	for _, b := range r.books {
		copied := *b
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (r *memRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *memRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.NewInsufficientStockError(b.Title, b.Stock, -delta)
	}
	b.Stock += delta
	return nil
}

func seedBook(t *testing.T, repo *memRepo, publisherID uint) uint {
	t.Helper()
	svc := book.NewService(repo)
	b, err := svc.PublishBook(context.Background(),
		"9787115428028", "Go程序设计语言", "Alan Donovan", "人民邮电出版社", "计算机",
		5900, 10, "http://example.com/cover.jpg", "Go语言权威指南", false, publisherID)
	require.NoError(t, err)
	return b.ID
}

func strPtr(s string) *string { return &s }

func TestUpdateBook(t *testing.T) {
	repo := newMemRepo()
	bookID := seedBook(t, repo, 1)
	uc := NewUpdateBookUseCase(book.NewService(repo))

	t.Run("部分更新只修改提供的字段", func(t *testing.T) {
		newPrice := int64(6900)
		detail, err := uc.Execute(context.Background(), UpdateBookRequest{
			ID:     bookID,
			UserID: 1,
			Title:  strPtr("Go程序设计语言(第2版)"),
			Price:  &newPrice,
		})
		require.NoError(t, err)

		assert.Equal(t, "Go程序设计语言(第2版)", detail.Title)
		assert.Equal(t, int64(6900), detail.Price)
		// 未提供的字段保持原值
		assert.Equal(t, "Alan Donovan", detail.Author)
		assert.Equal(t, "Go语言权威指南", detail.Description)
	})

	t.Run("显式空字符串是合法的更新值", func(t *testing.T) {
		detail, err := uc.Execute(context.Background(), UpdateBookRequest{
			ID:       bookID,
			UserID:   1,
			CoverURL: strPtr(""),
		})
		require.NoError(t, err)
		assert.Empty(t, detail.CoverURL)
		// 其他字段不受影响
		assert.Equal(t, "Go程序设计语言(第2版)", detail.Title)
	})

	t.Run("价格必须大于0", func(t *testing.T) {
		zero := int64(0)
		_, err := uc.Execute(context.Background(), UpdateBookRequest{
			ID:     bookID,
			UserID: 1,
			Price:  &zero,
		})
		assert.ErrorIs(t, err, book.ErrInvalidPrice)
	})

	t.Run("非发布者不能修改", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), UpdateBookRequest{
			ID:     bookID,
			UserID: 999,
			Title:  strPtr("恶意修改"),
		})
		assert.ErrorIs(t, err, book.ErrUnauthorized)
	})

	t.Run("管理员可以修改任意图书", func(t *testing.T) {
		detail, err := uc.Execute(context.Background(), UpdateBookRequest{
			ID:      bookID,
			UserID:  999,
			IsAdmin: true,
			Genre:   strPtr("编程语言"),
		})
		require.NoError(t, err)
		assert.Equal(t, "编程语言", detail.Genre)
	})
}

func TestRestockBook(t *testing.T) {
	repo := newMemRepo()
	bookID := seedBook(t, repo, 1)
	uc := NewUpdateBookUseCase(book.NewService(repo))

	err := uc.Restock(context.Background(), bookID, 1, false, 5)
	require.NoError(t, err)

	b, err := repo.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, 15, b.Stock)

	// 数量必须为正
	err = uc.Restock(context.Background(), bookID, 1, false, 0)
	assert.ErrorIs(t, err, book.ErrInvalidQuantity)
}

func TestDeleteBook(t *testing.T) {
	repo := newMemRepo()
	bookID := seedBook(t, repo, 1)
	uc := NewUpdateBookUseCase(book.NewService(repo))

	// 非发布者不能删除
	err := uc.Delete(context.Background(), bookID, 999, false)
	assert.ErrorIs(t, err, book.ErrUnauthorized)

	err = uc.Delete(context.Background(), bookID, 1, false)
	require.NoError(t, err)

	_, err = repo.FindByID(context.Background(), bookID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}
