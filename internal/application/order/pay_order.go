package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// PayOrderUseCase 订单支付用例
// 记录支付网关回传的结果,把订单标记为已支付
type PayOrderUseCase struct {
	orderRepo order.Repository
	events    EventPublisher
}

// NewPayOrderUseCase 创建支付用例
func NewPayOrderUseCase(orderRepo order.Repository, events EventPublisher) *PayOrderUseCase {
	return &PayOrderUseCase{orderRepo: orderRepo, events: events}
}

// PayOrderRequest 支付请求DTO
type PayOrderRequest struct {
	OrderID uint // 订单ID
	UserID  uint // 当前用户ID(从JWT中提取)
	IsAdmin bool // 管理员可代客确认支付(如线下转账到账后补录)

	// 支付网关回传的结果
	TransactionID string
	Status        string
	PaidTime      string
	PayerEmail    string
}

// Execute 执行支付
// 订单所有者或管理员可以确认支付;重复支付返回ErrAlreadyPaid,
// 首次支付的记录不会被覆盖(仓储层条件更新保证并发下也成立)
func (uc *PayOrderUseCase) Execute(ctx context.Context, req PayOrderRequest) (*OrderDetail, error) {
	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !o.IsOwnedBy(req.UserID) && !req.IsAdmin {
		return nil, order.ErrForbidden
	}

	result := order.PaymentResult{
		TransactionID: req.TransactionID,
		Status:        req.Status,
		PaidTime:      req.PaidTime,
		PayerEmail:    req.PayerEmail,
	}
	paidAt := time.Now()
	if err := o.MarkPaid(result, paidAt); err != nil {
		return nil, err
	}

	// 读到写之间另一笔支付可能已提交,条件更新失败时以仓储结果为准
	if err := uc.orderRepo.UpdatePaymentState(ctx, o); err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersPaidTotal)

	_ = uc.events.Publish(ctx, RoutingKeyOrderPaid, OrderPaidEvent{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		TransactionID: req.TransactionID,
		TotalPrice:    o.TotalPrice,
		PaidAt:        paidAt,
	})

	logger.L().Info("订单支付成功",
		"order_no", o.OrderNo, "user_id", o.UserID, "transaction_id", req.TransactionID)

	return toOrderDetail(o), nil
}
