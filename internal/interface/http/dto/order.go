package dto

// CreateOrderRequest HTTP下单请求
type CreateOrderRequest struct {
	Items         []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Shipping      ShippingAddressRequest   `json:"shipping" binding:"required"`
	PaymentMethod string                   `json:"payment_method" binding:"required,max=50" example:"alipay"`
}

// CreateOrderItemRequest 订单明细项
type CreateOrderItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999"`
}

// ShippingAddressRequest 收货地址
type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required,max=255" example:"中关村大街1号"`
	City       string `json:"city" binding:"required,max=100" example:"北京"`
	PostalCode string `json:"postal_code" binding:"required,max=20" example:"100080"`
	Country    string `json:"country" binding:"required,max=100" example:"中国"`
}

// CreateOrderResponse HTTP下单响应
type CreateOrderResponse struct {
	OrderID       uint   `json:"order_id" example:"1"`
	OrderNo       string `json:"order_no" example:"ORD1699248000123456"`
	ItemsPrice    int64  `json:"items_price" example:"11800"`
	ShippingPrice int64  `json:"shipping_price" example:"0"`
	TaxPrice      int64  `json:"tax_price" example:"767"`
	TotalPrice    int64  `json:"total_price" example:"12567"`
	TotalYuan     string `json:"total_yuan" example:"125.67"`
	CreatedAt     string `json:"created_at" example:"2024-11-06 10:30:00"`
}

// PayOrderRequest HTTP支付结果上报请求
// 字段来自支付网关回调/前端SDK回传
type PayOrderRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,max=100"`
	Status        string `json:"status" binding:"required,max=50" example:"COMPLETED"`
	PaidTime      string `json:"paid_time" binding:"omitempty,max=50"`
	PayerEmail    string `json:"payer_email" binding:"omitempty,email"`
}

// DeliverOrderRequest HTTP发货请求(管理员)
type DeliverOrderRequest struct {
	TrackingNo string `json:"tracking_no" binding:"omitempty,max=100" example:"SF1234567890"`
}
