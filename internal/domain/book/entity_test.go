package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func newTestBook() *Book {
	return NewBook("9787115428028", "Go程序设计语言", "Alan Donovan", "人民邮电出版社",
		"programming", 5900, 10, "", "经典教材", false, 1)
}

func TestDecrStock(t *testing.T) {
	b := newTestBook()

	require.NoError(t, b.DecrStock(3))
	assert.Equal(t, 7, b.Stock)

	t.Run("数量必须大于0", func(t *testing.T) {
		assert.ErrorIs(t, b.DecrStock(0), ErrInvalidQuantity)
	})

	t.Run("库存不足", func(t *testing.T) {
		err := b.DecrStock(8)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
		// 失败不改变库存
		assert.Equal(t, 7, b.Stock)
	})

	t.Run("恰好扣空", func(t *testing.T) {
		require.NoError(t, b.DecrStock(7))
		assert.Equal(t, 0, b.Stock)
	})
}

func TestIncrStock(t *testing.T) {
	b := newTestBook()

	require.NoError(t, b.IncrStock(5))
	assert.Equal(t, 15, b.Stock)

	assert.ErrorIs(t, b.IncrStock(-1), ErrInvalidQuantity)
}

// 库存不足错误带书名和数量上下文
func TestInsufficientStockError(t *testing.T) {
	err := NewInsufficientStockError("Go程序设计语言", 2, 5)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "Go程序设计语言")
	assert.Contains(t, appErr.Message, "剩余2本")
}

func TestApplyPatch(t *testing.T) {
	b := newTestBook()

	t.Run("只更新提供的字段", func(t *testing.T) {
		newTitle := "Go语言圣经"
		newPrice := int64(6900)
		err := b.ApplyPatch(Patch{Title: &newTitle, Price: &newPrice})
		require.NoError(t, err)

		assert.Equal(t, "Go语言圣经", b.Title)
		assert.Equal(t, int64(6900), b.Price)
		// 未提供的字段保持原值
		assert.Equal(t, "Alan Donovan", b.Author)
		assert.Equal(t, "programming", b.Genre)
	})

	t.Run("零值是合法更新", func(t *testing.T) {
		empty := ""
		upcoming := false
		b.IsUpcoming = true
		err := b.ApplyPatch(Patch{Description: &empty, IsUpcoming: &upcoming})
		require.NoError(t, err)

		assert.Equal(t, "", b.Description)
		assert.False(t, b.IsUpcoming)
	})

	t.Run("价格仍需满足业务规则", func(t *testing.T) {
		bad := int64(0)
		err := b.ApplyPatch(Patch{Price: &bad})
		assert.ErrorIs(t, err, ErrInvalidPrice)
		assert.Equal(t, int64(6900), b.Price)
	})
}

func TestIsOrderable(t *testing.T) {
	b := newTestBook()
	assert.True(t, b.IsOrderable())

	b.IsUpcoming = true
	assert.False(t, b.IsOrderable())
}
