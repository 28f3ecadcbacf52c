package order

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}

func testPricing() config.OrderConfig {
	return config.OrderConfig{
		ShippingFee:        1000,  // 10元
		FreeShippingOver:   10000, // 满100元免运费
		TaxRateBasisPoints: 650,   // 6.5%
		MaxItemsPerOrder:   20,
		MaxQuantityPerItem: 99,
	}
}

func testBook(id uint, title string, price int64, stock int) *book.Book {
	b := book.NewBook("9787115428028", title, "作者", "出版社", "计算机",
		price, stock, "", "", false, 1)
	b.ID = id
	return b
}

func testShipping() order.ShippingAddress {
	return order.ShippingAddress{
		Address:    "中关村大街1号",
		City:       "北京",
		PostalCode: "100080",
		Country:    "中国",
	}
}

func newCreateUseCase(bookRepo *memBookRepo) (*CreateOrderUseCase, *memOrderRepo, *recordingPublisher) {
	orderRepo := newMemOrderRepo()
	events := &recordingPublisher{}
	uc := NewCreateOrderUseCase(orderRepo, bookRepo, &memTransactor{}, events, testPricing())
	return uc, orderRepo, events
}

func TestCreateOrder(t *testing.T) {
	bookRepo := newMemBookRepo(testBook(1, "Go程序设计语言", 5900, 10))
	uc, orderRepo, events := newCreateUseCase(bookRepo)

	resp, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Items:         []CreateOrderItem{{BookID: 1, Quantity: 2}},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	require.NoError(t, err)

	// 11800 >= 免运费门槛10000,运费为0;税费 = 11800 * 650 / 10000 = 767
	assert.Equal(t, int64(11800), resp.ItemsPrice)
	assert.Equal(t, int64(0), resp.ShippingPrice)
	assert.Equal(t, int64(767), resp.TaxPrice)
	assert.Equal(t, int64(12567), resp.TotalPrice)
	assert.Equal(t, "125.67", resp.TotalYuan)
	assert.NotEmpty(t, resp.OrderNo)

	// 库存已扣减,订单已落库
	assert.Equal(t, 8, bookRepo.stock(1))
	assert.Equal(t, 1, orderRepo.count())

	// 订单明细使用数据库价格和书名快照
	o, err := orderRepo.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Go程序设计语言", o.Items[0].Title)
	assert.Equal(t, int64(5900), o.Items[0].Price)

	assert.Equal(t, []string{RoutingKeyOrderCreated}, events.routingKeys())
}

func TestCreateOrderShippingFee(t *testing.T) {
	bookRepo := newMemBookRepo(testBook(1, "Go语言圣经", 5900, 10))
	uc, _, _ := newCreateUseCase(bookRepo)

	resp, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Items:         []CreateOrderItem{{BookID: 1, Quantity: 1}},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	require.NoError(t, err)

	// 5900 < 10000,收基础运费;税费 5900 * 650 / 10000 = 383(向下取整)
	assert.Equal(t, int64(1000), resp.ShippingPrice)
	assert.Equal(t, int64(383), resp.TaxPrice)
	assert.Equal(t, int64(5900+1000+383), resp.TotalPrice)
}

func TestCreateOrderValidation(t *testing.T) {
	shipping := testShipping()

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr error
	}{
		{
			name:    "明细为空",
			req:     CreateOrderRequest{UserID: 1, Shipping: shipping, PaymentMethod: "alipay"},
			wantErr: order.ErrInvalidOrderItems,
		},
		{
			name: "数量为0",
			req: CreateOrderRequest{
				UserID:        1,
				Items:         []CreateOrderItem{{BookID: 1, Quantity: 0}},
				Shipping:      shipping,
				PaymentMethod: "alipay",
			},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name: "数量超过单品上限",
			req: CreateOrderRequest{
				UserID:        1,
				Items:         []CreateOrderItem{{BookID: 1, Quantity: 100}},
				Shipping:      shipping,
				PaymentMethod: "alipay",
			},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name: "重复明细",
			req: CreateOrderRequest{
				UserID:        1,
				Items:         []CreateOrderItem{{BookID: 1, Quantity: 1}, {BookID: 1, Quantity: 2}},
				Shipping:      shipping,
				PaymentMethod: "alipay",
			},
			wantErr: order.ErrInvalidOrderItems,
		},
		{
			name: "收货地址不完整",
			req: CreateOrderRequest{
				UserID:        1,
				Items:         []CreateOrderItem{{BookID: 1, Quantity: 1}},
				Shipping:      order.ShippingAddress{Address: "中关村大街1号"},
				PaymentMethod: "alipay",
			},
			wantErr: order.ErrIncompleteShippingAddress,
		},
		{
			name: "缺少支付方式",
			req: CreateOrderRequest{
				UserID:   1,
				Items:    []CreateOrderItem{{BookID: 1, Quantity: 1}},
				Shipping: shipping,
			},
			wantErr: order.ErrMissingPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookRepo := newMemBookRepo(testBook(1, "测试图书", 5900, 10))
			uc, orderRepo, _ := newCreateUseCase(bookRepo)

			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 10, bookRepo.stock(1))
			assert.Equal(t, 0, orderRepo.count())
		})
	}
}

// TestCreateOrderNoOversell 并发下单不超卖:
// 库存5本,20个并发请求各买1本,最终恰好5单成功、库存为0
func TestCreateOrderNoOversell(t *testing.T) {
	bookRepo := newMemBookRepo(testBook(1, "爆款图书", 5900, 5))
	uc, orderRepo, _ := newCreateUseCase(bookRepo)

	const concurrency = 20
	var wg sync.WaitGroup
	errs := make([]error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = uc.Execute(context.Background(), CreateOrderRequest{
				UserID:        uint(idx + 1),
				Items:         []CreateOrderItem{{BookID: 1, Quantity: 1}},
				Shipping:      testShipping(),
				PaymentMethod: "alipay",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, bookRepo.stock(1))
	assert.Equal(t, 5, orderRepo.count())
}

// TestCreateOrderMultiItemAtomicity 多明细整单原子性:
// 任何一项库存不足时,整单失败,已校验通过的明细也不扣库存
func TestCreateOrderMultiItemAtomicity(t *testing.T) {
	bookRepo := newMemBookRepo(
		testBook(1, "库存充足的书", 5900, 10),
		testBook(2, "库存紧张的书", 3900, 5),
	)
	uc, orderRepo, events := newCreateUseCase(bookRepo)

	_, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID: 100,
		Items: []CreateOrderItem{
			{BookID: 1, Quantity: 2},
			{BookID: 2, Quantity: 100},
		},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))

	// 两本书的库存都不变,没有订单,没有事件
	assert.Equal(t, 10, bookRepo.stock(1))
	assert.Equal(t, 5, bookRepo.stock(2))
	assert.Equal(t, 0, orderRepo.count())
	assert.Empty(t, events.routingKeys())
}

// TestCreateOrderUpcomingBook 即将出版的图书不可下单
func TestCreateOrderUpcomingBook(t *testing.T) {
	upcoming := book.NewBook("9787115428028", "未出版新书", "作者", "出版社", "计算机",
		9900, 100, "", "", true, 1)
	upcoming.ID = 1
	bookRepo := newMemBookRepo(upcoming)
	uc, orderRepo, _ := newCreateUseCase(bookRepo)

	_, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Items:         []CreateOrderItem{{BookID: 1, Quantity: 1}},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	assert.ErrorIs(t, err, book.ErrBookNotOrderable)
	assert.Equal(t, 100, bookRepo.stock(1))
	assert.Equal(t, 0, orderRepo.count())
}

// TestCreateOrderBookNotFound 图书不存在时整单失败
func TestCreateOrderBookNotFound(t *testing.T) {
	bookRepo := newMemBookRepo(testBook(1, "存在的书", 5900, 10))
	uc, orderRepo, _ := newCreateUseCase(bookRepo)

	_, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID: 100,
		Items: []CreateOrderItem{
			{BookID: 1, Quantity: 1},
			{BookID: 999, Quantity: 1},
		},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Equal(t, 10, bookRepo.stock(1))
	assert.Equal(t, 0, orderRepo.count())
}

// TestCreateOrderSnapshotImmutable 下单后改价改名,订单快照不受影响
func TestCreateOrderSnapshotImmutable(t *testing.T) {
	bookRepo := newMemBookRepo(testBook(1, "Go程序设计语言", 5900, 10))
	uc, orderRepo, _ := newCreateUseCase(bookRepo)

	resp, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Items:         []CreateOrderItem{{BookID: 1, Quantity: 2}},
		Shipping:      testShipping(),
		PaymentMethod: "alipay",
	})
	require.NoError(t, err)

	// 卖家改价改名
	b, err := bookRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	newTitle := "Go程序设计语言(第2版)"
	newPrice := int64(9900)
	require.NoError(t, b.ApplyPatch(book.Patch{Title: &newTitle, Price: &newPrice}))
	require.NoError(t, bookRepo.Update(context.Background(), b))

	// 重新读取订单,明细仍是下单时刻的快照
	o, err := orderRepo.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Go程序设计语言", o.Items[0].Title)
	assert.Equal(t, int64(5900), o.Items[0].Price)
	assert.Equal(t, int64(11800), o.ItemsPrice)
	assert.Equal(t, resp.TotalPrice, o.TotalPrice)
}
