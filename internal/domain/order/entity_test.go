package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShipping() ShippingAddress {
	return ShippingAddress{
		Address:    "中关村大街1号",
		City:       "北京",
		PostalCode: "100080",
		Country:    "中国",
	}
}

func validItems() []OrderItem {
	return []OrderItem{
		{BookID: 1, Title: "Go程序设计语言", Quantity: 2, Price: 5900},
		{BookID: 2, Title: "数据密集型应用系统设计", Quantity: 1, Price: 9900},
	}
}

func TestNewOrder(t *testing.T) {
	items := validItems()
	itemsPrice := CalculateItemsPrice(items)
	require.Equal(t, int64(2*5900+9900), itemsPrice)

	o, err := NewOrder("ORD1", 42, items, validShipping(), "alipay", itemsPrice, 1000, 976)
	require.NoError(t, err)

	assert.Equal(t, uint(42), o.UserID)
	assert.Equal(t, itemsPrice+1000+976, o.TotalPrice)
	assert.False(t, o.Paid)
	assert.False(t, o.Delivered)
	assert.Nil(t, o.PaidAt)
	assert.Nil(t, o.PaymentResult)
}

func TestNewOrderValidation(t *testing.T) {
	shipping := validShipping()

	t.Run("明细为空", func(t *testing.T) {
		_, err := NewOrder("ORD1", 1, nil, shipping, "alipay", 0, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidOrderItems)
	})

	t.Run("数量为0", func(t *testing.T) {
		items := []OrderItem{{BookID: 1, Quantity: 0, Price: 100}}
		_, err := NewOrder("ORD1", 1, items, shipping, "alipay", 0, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("单价为负", func(t *testing.T) {
		items := []OrderItem{{BookID: 1, Quantity: 1, Price: -1}}
		_, err := NewOrder("ORD1", 1, items, shipping, "alipay", 0, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidItemPrice)
	})

	t.Run("地址不完整", func(t *testing.T) {
		incomplete := shipping
		incomplete.PostalCode = ""
		_, err := NewOrder("ORD1", 1, validItems(), incomplete, "alipay", 100, 0, 0)
		assert.ErrorIs(t, err, ErrIncompleteShippingAddress)
	})

	t.Run("缺少支付方式", func(t *testing.T) {
		_, err := NewOrder("ORD1", 1, validItems(), shipping, "", 100, 0, 0)
		assert.ErrorIs(t, err, ErrMissingPaymentMethod)
	})

	t.Run("金额为负", func(t *testing.T) {
		_, err := NewOrder("ORD1", 1, validItems(), shipping, "alipay", 100, -1, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

// 支付只能翻转一次，重复支付不得覆盖首次的支付凭证
func TestMarkPaid(t *testing.T) {
	o, err := NewOrder("ORD1", 1, validItems(), validShipping(), "alipay", 20700, 0, 0)
	require.NoError(t, err)

	first := PaymentResult{TransactionID: "TXN-001", Status: "COMPLETED", PayerEmail: "a@example.com"}
	paidAt := time.Now()
	require.NoError(t, o.MarkPaid(first, paidAt))

	assert.True(t, o.Paid)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, "TXN-001", o.PaymentResult.TransactionID)

	// 重复支付
	second := PaymentResult{TransactionID: "TXN-002", Status: "COMPLETED"}
	err = o.MarkPaid(second, time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	// 首次支付的凭证和时间不被覆盖
	assert.Equal(t, "TXN-001", o.PaymentResult.TransactionID)
	assert.True(t, o.PaidAt.Equal(paidAt))
}

func TestMarkDelivered(t *testing.T) {
	o, err := NewOrder("ORD1", 1, validItems(), validShipping(), "cod", 20700, 1000, 0)
	require.NoError(t, err)

	// 未支付也可以发货（货到付款）
	require.NoError(t, o.MarkDelivered("SF123456", time.Now()))
	assert.True(t, o.Delivered)
	assert.Equal(t, "SF123456", o.TrackingNo)
	assert.False(t, o.Paid)

	// 重复发货
	err = o.MarkDelivered("SF999999", time.Now())
	assert.ErrorIs(t, err, ErrAlreadyDelivered)
	assert.Equal(t, "SF123456", o.TrackingNo)
}

func TestIsOwnedBy(t *testing.T) {
	o, err := NewOrder("ORD1", 7, validItems(), validShipping(), "wechat", 20700, 0, 0)
	require.NoError(t, err)

	assert.True(t, o.IsOwnedBy(7))
	assert.False(t, o.IsOwnedBy(8))
}

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	assert.True(t, len(no) > 10)
	assert.Equal(t, "ORD", no[:3])
}
