package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// DeliverOrderUseCase 订单发货用例
// 管理员操作(路由层已做RequireAdmin校验)
// 注意:发货不要求订单已支付,支持货到付款场景
type DeliverOrderUseCase struct {
	orderRepo order.Repository
	events    EventPublisher
}

// NewDeliverOrderUseCase 创建发货用例
func NewDeliverOrderUseCase(orderRepo order.Repository, events EventPublisher) *DeliverOrderUseCase {
	return &DeliverOrderUseCase{orderRepo: orderRepo, events: events}
}

// DeliverOrderRequest 发货请求DTO
type DeliverOrderRequest struct {
	OrderID    uint
	TrackingNo string // 物流单号(可为空)
}

// Execute 执行发货
// 重复发货返回ErrAlreadyDelivered,首次发货记录不会被覆盖
func (uc *DeliverOrderUseCase) Execute(ctx context.Context, req DeliverOrderRequest) (*OrderDetail, error) {
	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	deliveredAt := time.Now()
	if err := o.MarkDelivered(req.TrackingNo, deliveredAt); err != nil {
		return nil, err
	}

	// 条件更新:并发的两次发货只有一次生效,首个物流单号保留
	if err := uc.orderRepo.UpdateDeliveryState(ctx, o); err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersDeliveredTotal)

	_ = uc.events.Publish(ctx, RoutingKeyOrderDelivered, OrderDeliveredEvent{
		OrderID:     o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		TrackingNo:  o.TrackingNo,
		DeliveredAt: deliveredAt,
	})

	logger.L().Info("订单发货成功", "order_no", o.OrderNo, "tracking_no", o.TrackingNo)

	return toOrderDetail(o), nil
}
