package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// ListOrdersUseCase 订单列表用例
// 同时服务两个入口:用户查自己的订单、管理员查全部订单
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersResponse 订单列表响应DTO
type ListOrdersResponse struct {
	Orders   []*OrderDetail `json:"orders"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ListMyOrders 查询用户自己的订单(按创建时间倒序)
func (uc *ListOrdersUseCase) ListMyOrders(ctx context.Context, userID uint, page, pageSize int) (*ListOrdersResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	return buildListResponse(orders, total, page, pageSize), nil
}

// ListAll 查询全部订单(管理员,按创建时间倒序)
func (uc *ListOrdersUseCase) ListAll(ctx context.Context, page, pageSize int) (*ListOrdersResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	orders, total, err := uc.orderRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	return buildListResponse(orders, total, page, pageSize), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

func buildListResponse(orders []*order.Order, total int64, page, pageSize int) *ListOrdersResponse {
	details := make([]*OrderDetail, len(orders))
	for i, o := range orders {
		details[i] = toOrderDetail(o)
	}
	return &ListOrdersResponse{
		Orders:   details,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
