package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// GetOrderUseCase 查询订单详情用例
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建查询订单用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// Execute 查询订单详情
// 普通用户只能查看自己的订单,管理员可以查看任意订单
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID, userID uint, isAdmin bool) (*OrderDetail, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && !o.IsOwnedBy(userID) {
		return nil, order.ErrForbidden
	}

	return toOrderDetail(o), nil
}
