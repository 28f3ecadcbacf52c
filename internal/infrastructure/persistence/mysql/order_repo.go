package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// GORM通过foreignKey自动保存关联的Items;
// 下单流程必须在事务中调用(getDB从context取事务DB)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}

	return nil
}

// FindByID 根据ID查找订单
// Preload("Items")分两条SQL加载订单和明细,避免N+1查询
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdatePaymentState 持久化支付状态(条件更新)
// 与UpdateStock同样的套路:WHERE paid = false保证并发的两次支付
// 只有一次写入成功,先读后写的竞态窗口被数据库层关死。
// RowsAffected==0时回查,区分订单不存在和已被支付
func (r *orderRepository) UpdatePaymentState(ctx context.Context, o *order.Order) error {
	updates := map[string]interface{}{
		"paid":       o.Paid,
		"paid_at":    o.PaidAt,
		"updated_at": o.UpdatedAt,
	}
	if o.PaymentResult != nil {
		updates["pay_transaction_id"] = o.PaymentResult.TransactionID
		updates["pay_status"] = o.PaymentResult.Status
		updates["pay_time"] = o.PaymentResult.PaidTime
		updates["payer_email"] = o.PaymentResult.PayerEmail
	}

	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND paid = ?", o.ID, false).
		Updates(updates)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单支付状态失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := getDB(ctx, r.db).Model(&OrderModel{}).
			Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrAlreadyPaid
	}

	return nil
}

// UpdateDeliveryState 持久化发货状态(条件更新)
// WHERE delivered = false,首次发货的物流单号不会被覆盖
func (r *orderRepository) UpdateDeliveryState(ctx context.Context, o *order.Order) error {
	updates := map[string]interface{}{
		"delivered":    o.Delivered,
		"delivered_at": o.DeliveredAt,
		"tracking_no":  o.TrackingNo,
		"updated_at":   o.UpdatedAt,
	}

	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND delivered = ?", o.ID, false).
		Updates(updates)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单发货状态失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := getDB(ctx, r.db).Model(&OrderModel{}).
			Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrAlreadyDelivered
	}

	return nil
}

// ListByUserID 查询用户的订单列表
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID)
	return r.listOrders(query, page, pageSize)
}

// List 查询全部订单(管理员)
func (r *orderRepository) List(ctx context.Context, page, pageSize int) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{})
	return r.listOrders(query, page, pageSize)
}

func (r *orderRepository) listOrders(query *gorm.DB, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i, model := range models {
		orders[i] = toOrderEntity(&model)
	}

	return orders, total, nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	model := &OrderModel{
		ID:      o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Items:   items,

		ShippingAddress:    o.Shipping.Address,
		ShippingCity:       o.Shipping.City,
		ShippingPostalCode: o.Shipping.PostalCode,
		ShippingCountry:    o.Shipping.Country,

		PaymentMethod: o.PaymentMethod,

		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,

		Paid:        o.Paid,
		PaidAt:      o.PaidAt,
		Delivered:   o.Delivered,
		DeliveredAt: o.DeliveredAt,
		TrackingNo:  o.TrackingNo,

		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}

	if o.PaymentResult != nil {
		model.PayTransactionID = o.PaymentResult.TransactionID
		model.PayStatus = o.PaymentResult.Status
		model.PayTime = o.PaymentResult.PaidTime
		model.PayerEmail = o.PaymentResult.PayerEmail
	}

	return model
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	o := &order.Order{
		ID:      model.ID,
		OrderNo: model.OrderNo,
		UserID:  model.UserID,
		Items:   items,

		Shipping: order.ShippingAddress{
			Address:    model.ShippingAddress,
			City:       model.ShippingCity,
			PostalCode: model.ShippingPostalCode,
			Country:    model.ShippingCountry,
		},

		PaymentMethod: model.PaymentMethod,

		ItemsPrice:    model.ItemsPrice,
		ShippingPrice: model.ShippingPrice,
		TaxPrice:      model.TaxPrice,
		TotalPrice:    model.TotalPrice,

		Paid:        model.Paid,
		PaidAt:      model.PaidAt,
		Delivered:   model.Delivered,
		DeliveredAt: model.DeliveredAt,
		TrackingNo:  model.TrackingNo,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	if model.Paid && model.PayTransactionID != "" {
		o.PaymentResult = &order.PaymentResult{
			TransactionID: model.PayTransactionID,
			Status:        model.PayStatus,
			PaidTime:      model.PayTime,
			PayerEmail:    model.PayerEmail,
		}
	}

	return o
}
