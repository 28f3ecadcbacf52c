package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细)
	// 订单和明细必须在同一事务中创建
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdatePaymentState 持久化支付状态变更(条件更新)
	// 只在paid=false时写入,订单已支付返回ErrAlreadyPaid;
	// 并发的两次支付只有先提交的生效,首次支付记录不会被覆盖
	UpdatePaymentState(ctx context.Context, order *Order) error

	// UpdateDeliveryState 持久化发货状态变更(条件更新)
	// 只在delivered=false时写入,订单已发货返回ErrAlreadyDelivered
	UpdateDeliveryState(ctx context.Context, order *Order) error

	// ListByUserID 查询用户的订单列表(分页,按创建时间倒序)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// List 查询全部订单(管理员用,分页,按创建时间倒序)
	List(ctx context.Context, page, pageSize int) ([]*Order, int64, error)
}
