package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// createTestOrder 先走一遍下单流程,返回已创建的订单ID
func createTestOrder(t *testing.T, orderRepo *memOrderRepo, events EventPublisher, userID uint) uint {
	t.Helper()
	bookRepo := newMemBookRepo(testBook(1, "Go程序设计语言", 5900, 10))
	uc := NewCreateOrderUseCase(orderRepo, bookRepo, &memTransactor{}, events, testPricing())

	resp, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:        userID,
		Items:         []CreateOrderItem{{BookID: 1, Quantity: 2}},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	require.NoError(t, err)
	return resp.OrderID
}

func TestPayOrder(t *testing.T) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	orderID := createTestOrder(t, orderRepo, events, 100)

	uc := NewPayOrderUseCase(orderRepo, events)
	detail, err := uc.Execute(context.Background(), PayOrderRequest{
		OrderID:       orderID,
		UserID:        100,
		TransactionID: "TXN-001",
		Status:        "COMPLETED",
		PaidTime:      "2026-08-28T10:00:00Z",
		PayerEmail:    "buyer@example.com",
	})
	require.NoError(t, err)

	assert.True(t, detail.Paid)
	require.NotNil(t, detail.PaidAt)
	require.NotNil(t, detail.Payment)
	assert.Equal(t, "TXN-001", detail.Payment.TransactionID)

	assert.Equal(t, []string{RoutingKeyOrderCreated, RoutingKeyOrderPaid}, events.routingKeys())
}

// TestPayOrderIdempotent 重复支付被拒绝,首次支付记录不被覆盖
func TestPayOrderIdempotent(t *testing.T) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	orderID := createTestOrder(t, orderRepo, events, 100)

	uc := NewPayOrderUseCase(orderRepo, events)
	_, err := uc.Execute(context.Background(), PayOrderRequest{
		OrderID: orderID, UserID: 100, TransactionID: "TXN-001", Status: "COMPLETED",
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), PayOrderRequest{
		OrderID: orderID, UserID: 100, TransactionID: "TXN-002", Status: "COMPLETED",
	})
	assert.ErrorIs(t, err, order.ErrAlreadyPaid)

	// 落库的仍是第一笔交易
	o, err := orderRepo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, o.PaymentResult)
	assert.Equal(t, "TXN-001", o.PaymentResult.TransactionID)

	// 第二次支付没有产生事件
	assert.Equal(t, []string{RoutingKeyOrderCreated, RoutingKeyOrderPaid}, events.routingKeys())
}

// TestPayOrderForbidden 普通用户不能支付他人的订单
func TestPayOrderForbidden(t *testing.T) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	orderID := createTestOrder(t, orderRepo, events, 100)

	uc := NewPayOrderUseCase(orderRepo, events)
	_, err := uc.Execute(context.Background(), PayOrderRequest{
		OrderID: orderID, UserID: 200, TransactionID: "TXN-001",
	})
	assert.ErrorIs(t, err, order.ErrForbidden)

	o, _ := orderRepo.FindByID(context.Background(), orderID)
	assert.False(t, o.Paid)
}

// TestPayOrderAdmin 管理员可代客确认他人订单的支付
func TestPayOrderAdmin(t *testing.T) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	orderID := createTestOrder(t, orderRepo, events, 100)

	uc := NewPayOrderUseCase(orderRepo, events)
	detail, err := uc.Execute(context.Background(), PayOrderRequest{
		OrderID: orderID, UserID: 999, IsAdmin: true,
		TransactionID: "TXN-ADMIN", Status: "COMPLETED",
	})
	require.NoError(t, err)

	assert.True(t, detail.Paid)
	require.NotNil(t, detail.Payment)
	assert.Equal(t, "TXN-ADMIN", detail.Payment.TransactionID)
}

// TestPayOrderConcurrent 并发支付只成功一次
// 读屏障保证两个请求都先读到paid=false再写,
// 条件更新必须让后写的一方拿到已支付错误
func TestPayOrderConcurrent(t *testing.T) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	orderID := createTestOrder(t, orderRepo, events, 100)

	var reads sync.WaitGroup
	reads.Add(2)
	staleRepo := &staleReadOrderRepo{memOrderRepo: orderRepo, reads: &reads}

	uc := NewPayOrderUseCase(staleRepo, events)
	errs := make([]error, 2)
	txns := []string{"TXN-A", "TXN-B"}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), PayOrderRequest{
				OrderID: orderID, UserID: 100,
				TransactionID: txns[i], Status: "COMPLETED",
			})
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "不应有两次支付都成功")
			winner = i
		} else {
			assert.ErrorIs(t, err, order.ErrAlreadyPaid)
		}
	}
	require.NotEqual(t, -1, winner, "应恰好有一次支付成功")

	// 落库的是胜出一方的交易,事件也只发布一次
	o, err := orderRepo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, o.PaymentResult)
	assert.Equal(t, txns[winner], o.PaymentResult.TransactionID)
	assert.Equal(t, []string{RoutingKeyOrderCreated, RoutingKeyOrderPaid}, events.routingKeys())
}

// TestPayOrderImmutableSnapshot 支付不改变订单明细和金额
func TestPayOrderImmutableSnapshot(t *testing.T) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	orderID := createTestOrder(t, orderRepo, events, 100)

	before, err := orderRepo.FindByID(context.Background(), orderID)
	require.NoError(t, err)

	uc := NewPayOrderUseCase(orderRepo, events)
	_, err = uc.Execute(context.Background(), PayOrderRequest{
		OrderID: orderID, UserID: 100, TransactionID: "TXN-001", Status: "COMPLETED",
	})
	require.NoError(t, err)

	after, err := orderRepo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.TotalPrice, after.TotalPrice)
	assert.Equal(t, before.ItemsPrice, after.ItemsPrice)
}
