package order

import "time"

// 订单事件路由键
// 消费方按 "order.*" 绑定即可订阅全部订单事件
const (
	RoutingKeyOrderCreated   = "order.created"
	RoutingKeyOrderPaid      = "order.paid"
	RoutingKeyOrderDelivered = "order.delivered"
)

// 订单事件载荷
// 只携带标识和关键金额,消费方需要全量数据时自行回查

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	TotalPrice int64     `json:"total_price"`
	ItemCount  int       `json:"item_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderPaidEvent 订单支付事件
type OrderPaidEvent struct {
	OrderID       uint      `json:"order_id"`
	OrderNo       string    `json:"order_no"`
	UserID        uint      `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	TotalPrice    int64     `json:"total_price"`
	PaidAt        time.Time `json:"paid_at"`
}

// OrderDeliveredEvent 订单发货事件
type OrderDeliveredEvent struct {
	OrderID     uint      `json:"order_id"`
	OrderNo     string    `json:"order_no"`
	UserID      uint      `json:"user_id"`
	TrackingNo  string    `json:"tracking_no"`
	DeliveredAt time.Time `json:"delivered_at"`
}
