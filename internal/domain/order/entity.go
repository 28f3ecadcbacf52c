package order

import (
	"time"
)

// Order 订单实体(聚合根)
// 设计说明:
//  1. Order是聚合根,OrderItem/ShippingAddress/PaymentResult是聚合内的值对象和子实体
//  2. OrderNo全局唯一,时间有序,作为业务主键
//  3. 金额字段(ItemsPrice等)在下单时由服务端计算并冗余存储,
//     订单一旦创建即为快照,后续改价不影响历史订单
//  4. 生命周期用Paid/Delivered两个独立标志表达:
//     支付和发货互不为前置条件(支持货到付款),各自只能从false翻转到true一次
type Order struct {
	ID      uint
	OrderNo string // 订单号(业务主键,全局唯一)
	UserID  uint   // 买家用户ID

	Items    []OrderItem     // 订单明细(下单时的价格快照)
	Shipping ShippingAddress // 收货地址

	PaymentMethod string // 支付方式(如alipay, wechat, cod)

	// 金额明细(单位:分),服务端计算,总价=商品+运费+税费
	ItemsPrice    int64 // 商品小计
	ShippingPrice int64 // 运费
	TaxPrice      int64 // 税费
	TotalPrice    int64 // 订单总金额

	// 支付状态:Paid翻转为true时记录PaidAt和支付凭证
	Paid          bool
	PaidAt        *time.Time
	PaymentResult *PaymentResult

	// 发货状态:Delivered翻转为true时记录DeliveredAt和运单号
	Delivered   bool
	DeliveredAt *time.Time
	TrackingNo  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem 订单明细项
// 设计说明:
//  1. 不是独立聚合根,必须通过Order访问
//  2. Title/Price记录"下单时"的书名和单价(历史快照),
//     商家后续改价、改名不影响已创建的订单
//  3. 不直接关联Book对象,只保存BookID(避免跨聚合引用)
type OrderItem struct {
	ID       uint
	OrderID  uint   // 所属订单ID
	BookID   uint   // 图书ID
	Title    string // 下单时的书名快照
	Quantity int    // 购买数量
	Price    int64  // 下单时的单价(分)
}

// Subtotal 明细小计
func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// ShippingAddress 收货地址(值对象,随订单不可变)
type ShippingAddress struct {
	Address    string // 街道地址
	City       string // 城市
	PostalCode string // 邮编
	Country    string // 国家
}

// IsComplete 地址四要素是否齐全
func (a ShippingAddress) IsComplete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// PaymentResult 支付结果(第三方支付回执)
type PaymentResult struct {
	TransactionID string // 第三方交易号
	Status        string // 支付状态(如COMPLETED)
	PaidTime      string // 第三方返回的支付时间(原样保存)
	PayerEmail    string // 付款人邮箱
}

// NewOrder 创建新订单(工厂方法)
// 设计说明:
// 1. 校验聚合的创建不变量:明细非空、数量为正、地址齐全、支付方式非空
// 2. 金额由调用方(应用层定价逻辑)计算后传入,此处校验非负
// 3. 新订单始终是未支付、未发货状态
func NewOrder(orderNo string, userID uint, items []OrderItem, shipping ShippingAddress, paymentMethod string, itemsPrice, shippingPrice, taxPrice int64) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.Price < 0 {
			return nil, ErrInvalidItemPrice
		}
	}
	if !shipping.IsComplete() {
		return nil, ErrIncompleteShippingAddress
	}
	if paymentMethod == "" {
		return nil, ErrMissingPaymentMethod
	}
	if itemsPrice < 0 || shippingPrice < 0 || taxPrice < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Order{
		OrderNo:       orderNo,
		UserID:        userID,
		Items:         items,
		Shipping:      shipping,
		PaymentMethod: paymentMethod,
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    itemsPrice + shippingPrice + taxPrice,
		Paid:          false,
		Delivered:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CalculateItemsPrice 根据明细快照计算商品小计
// 用于校验冗余字段与明细的一致性
func CalculateItemsPrice(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// MarkPaid 标记订单已支付(领域行为)
// 业务规则:
// 1. 只能从未支付翻转到已支付,重复支付返回ErrAlreadyPaid
// 2. 记录支付时间和第三方支付凭证
// 3. 不触碰库存:库存已在下单时扣减
func (o *Order) MarkPaid(result PaymentResult, paidAt time.Time) error {
	if o.Paid {
		return ErrAlreadyPaid
	}
	o.Paid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered 标记订单已发货(领域行为)
// 业务规则:
// 1. 只能翻转一次,重复发货返回ErrAlreadyDelivered
// 2. 不要求已支付:货到付款的订单先发货后收款
func (o *Order) MarkDelivered(trackingNo string, deliveredAt time.Time) error {
	if o.Delivered {
		return ErrAlreadyDelivered
	}
	o.Delivered = true
	o.DeliveredAt = &deliveredAt
	o.TrackingNo = trackingNo
	o.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查订单是否属于指定用户
// 权限校验,防止用户访问他人订单
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
