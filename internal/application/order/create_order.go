package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// CreateOrderUseCase 创建订单用例
// 这是整个系统最核心的用例:下单与库存扣减必须原子完成,
// 防止超卖、防止改价,并在提交后发布order.created事件
type CreateOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	tx        Transactor
	events    EventPublisher
	pricing   config.OrderConfig
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	tx Transactor,
	events EventPublisher,
	pricing config.OrderConfig,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		tx:        tx,
		events:    events,
		pricing:   pricing,
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	UserID        uint                  // 买家用户ID(从JWT中提取)
	Items         []CreateOrderItem     // 订单明细
	Shipping      order.ShippingAddress // 收货地址
	PaymentMethod string                // 支付方式
}

// CreateOrderItem 订单明细项
type CreateOrderItem struct {
	BookID   uint // 图书ID
	Quantity int  // 购买数量
}

// CreateOrderResponse 下单响应DTO
type CreateOrderResponse struct {
	OrderID       uint   `json:"order_id"`
	OrderNo       string `json:"order_no"`
	ItemsPrice    int64  `json:"items_price"`
	ShippingPrice int64  `json:"shipping_price"`
	TaxPrice      int64  `json:"tax_price"`
	TotalPrice    int64  `json:"total_price"`
	TotalYuan     string `json:"total_yuan"`
	CreatedAt     string `json:"created_at"`
}

// Execute 执行下单用例
//
// 防超卖流程:
//  1. 按BookID升序SELECT FOR UPDATE锁定全部库存行(固定加锁顺序,避免死锁)
//  2. 锁内校验:图书可售、库存充足,任何一项失败整单拒绝,不做部分扣减
//  3. 用锁定时的数据库价格快照计算金额(防止前端改价)
//  4. 扣减库存、创建订单,同一事务COMMIT
//  5. 提交后发布order.created事件(失败不回滚业务)
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	start := time.Now()

	if err := uc.validate(req); err != nil {
		return nil, err
	}

	// 固定加锁顺序:两个事务以不同顺序锁定同一组图书会互相等待形成死锁
	sorted := make([]CreateOrderItem, len(req.Items))
	copy(sorted, req.Items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BookID < sorted[j].BookID })

	// Tracer未初始化时返回no-op Span,无需判断开关
	spanCtx, span := tracing.StartSpan(ctx, "bookshop/order", "ReserveStock")
	span.SetAttributes(attribute.Int("order.item_count", len(req.Items)))

	var result *order.Order
	err := uc.tx.Transaction(spanCtx, func(txCtx context.Context) error {
		// 步骤1:锁定并校验全部明细,校验全部通过前不做任何变更
		bookMap := make(map[uint]*book.Book, len(sorted))
		for _, item := range sorted {
			b, err := uc.bookRepo.LockByID(txCtx, item.BookID)
			if err != nil {
				return err
			}

			if !b.IsOrderable() {
				return book.ErrBookNotOrderable
			}
			// 必须在锁定后检查库存,否则并发扣减会超卖
			if b.Stock < item.Quantity {
				metrics.IncCounter(metrics.StockConflictsTotal)
				return book.NewInsufficientStockError(b.Title, b.Stock, item.Quantity)
			}

			bookMap[item.BookID] = b
		}

		// 步骤2:用锁定时的价格和书名做快照,保持请求原始顺序
		orderItems := make([]order.OrderItem, len(req.Items))
		for i, item := range req.Items {
			b := bookMap[item.BookID]
			orderItems[i] = order.OrderItem{
				BookID:   item.BookID,
				Title:    b.Title,
				Quantity: item.Quantity,
				Price:    b.Price,
			}
		}

		// 步骤3:服务端计算金额,不信任前端传入的任何价格
		itemsPrice := order.CalculateItemsPrice(orderItems)
		shippingPrice := uc.shippingPrice(itemsPrice)
		taxPrice := uc.taxPrice(itemsPrice)

		newOrder, err := order.NewOrder(
			order.GenerateOrderNo(), req.UserID, orderItems,
			req.Shipping, req.PaymentMethod,
			itemsPrice, shippingPrice, taxPrice,
		)
		if err != nil {
			return err
		}

		// 步骤4:扣减库存
		// UpdateStock内部再做一次条件更新(WHERE stock + ? >= 0)兜底
		for _, item := range sorted {
			if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, -item.Quantity); err != nil {
				return err
			}
		}

		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		result = newOrder
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	if err != nil {
		metrics.IncCounter(metrics.OrdersFailedTotal)
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())

	// 事务已提交,事件发布失败只记日志,不影响下单结果
	_ = uc.events.Publish(ctx, RoutingKeyOrderCreated, OrderCreatedEvent{
		OrderID:    result.ID,
		OrderNo:    result.OrderNo,
		UserID:     result.UserID,
		TotalPrice: result.TotalPrice,
		ItemCount:  len(result.Items),
		CreatedAt:  result.CreatedAt,
	})

	logger.L().Info("订单创建成功",
		"order_no", result.OrderNo, "user_id", result.UserID, "total", result.TotalPrice)

	return &CreateOrderResponse{
		OrderID:       result.ID,
		OrderNo:       result.OrderNo,
		ItemsPrice:    result.ItemsPrice,
		ShippingPrice: result.ShippingPrice,
		TaxPrice:      result.TaxPrice,
		TotalPrice:    result.TotalPrice,
		TotalYuan:     formatPrice(result.TotalPrice),
		CreatedAt:     result.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// validate 校验请求参数(不触库的前置检查)
func (uc *CreateOrderUseCase) validate(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return order.ErrInvalidOrderItems
	}
	if uc.pricing.MaxItemsPerOrder > 0 && len(req.Items) > uc.pricing.MaxItemsPerOrder {
		return order.ErrInvalidOrderItems
	}

	seen := make(map[uint]bool, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return order.ErrInvalidQuantity
		}
		if uc.pricing.MaxQuantityPerItem > 0 && item.Quantity > uc.pricing.MaxQuantityPerItem {
			return order.ErrInvalidQuantity
		}
		// 重复明细应由客户端合并,服务端直接拒绝
		if seen[item.BookID] {
			return order.ErrInvalidOrderItems
		}
		seen[item.BookID] = true
	}

	if !req.Shipping.IsComplete() {
		return order.ErrIncompleteShippingAddress
	}
	if req.PaymentMethod == "" {
		return order.ErrMissingPaymentMethod
	}
	return nil
}

// shippingPrice 计算运费:满额免运费
func (uc *CreateOrderUseCase) shippingPrice(itemsPrice int64) int64 {
	if uc.pricing.FreeShippingOver > 0 && itemsPrice >= uc.pricing.FreeShippingOver {
		return 0
	}
	return uc.pricing.ShippingFee
}

// taxPrice 按基点计算税费,向下取整到分
func (uc *CreateOrderUseCase) taxPrice(itemsPrice int64) int64 {
	return itemsPrice * uc.pricing.TaxRateBasisPoints / 10000
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
