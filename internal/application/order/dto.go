package order

import (
	"time"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// OrderDetail 订单详情DTO(各查询/变更用例共用的响应结构)
type OrderDetail struct {
	ID            uint              `json:"id"`
	OrderNo       string            `json:"order_no"`
	UserID        uint              `json:"user_id"`
	Items         []OrderItemDetail `json:"items"`
	Shipping      ShippingDetail    `json:"shipping"`
	PaymentMethod string            `json:"payment_method"`
	ItemsPrice    int64             `json:"items_price"`
	ShippingPrice int64             `json:"shipping_price"`
	TaxPrice      int64             `json:"tax_price"`
	TotalPrice    int64             `json:"total_price"`
	TotalYuan     string            `json:"total_yuan"`
	Paid          bool              `json:"paid"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	Payment       *PaymentDetail    `json:"payment,omitempty"`
	Delivered     bool              `json:"delivered"`
	DeliveredAt   *time.Time        `json:"delivered_at,omitempty"`
	TrackingNo    string            `json:"tracking_no,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// OrderItemDetail 订单明细DTO
type OrderItemDetail struct {
	BookID   uint   `json:"book_id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Subtotal int64  `json:"subtotal"`
}

// ShippingDetail 收货地址DTO
type ShippingDetail struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentDetail 支付结果DTO
type PaymentDetail struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	PaidTime      string `json:"paid_time"`
	PayerEmail    string `json:"payer_email"`
}

func toOrderDetail(o *order.Order) *OrderDetail {
	items := make([]OrderItemDetail, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDetail{
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal(),
		}
	}

	detail := &OrderDetail{
		ID:      o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Items:   items,
		Shipping: ShippingDetail{
			Address:    o.Shipping.Address,
			City:       o.Shipping.City,
			PostalCode: o.Shipping.PostalCode,
			Country:    o.Shipping.Country,
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,
		TotalYuan:     formatPrice(o.TotalPrice),
		Paid:          o.Paid,
		PaidAt:        o.PaidAt,
		Delivered:     o.Delivered,
		DeliveredAt:   o.DeliveredAt,
		TrackingNo:    o.TrackingNo,
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if o.PaymentResult != nil {
		detail.Payment = &PaymentDetail{
			TransactionID: o.PaymentResult.TransactionID,
			Status:        o.PaymentResult.Status,
			PaidTime:      o.PaymentResult.PaidTime,
			PayerEmail:    o.PaymentResult.PayerEmail,
		}
	}

	return detail
}
