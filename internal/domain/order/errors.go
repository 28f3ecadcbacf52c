package order

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrAlreadyPaid 订单已支付,不能重复支付
	ErrAlreadyPaid = apperrors.New(apperrors.ErrCodeAlreadyPaid, "订单已支付")

	// ErrAlreadyDelivered 订单已发货,不能重复发货
	ErrAlreadyDelivered = apperrors.New(apperrors.ErrCodeAlreadyDelivered, "订单已发货")

	// ErrOrderNoGenerate 订单号生成失败
	ErrOrderNoGenerate = apperrors.New(apperrors.ErrCodeInternal, "订单号生成失败")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidItemPrice 明细单价不合法
	ErrInvalidItemPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "商品单价不能为负数")

	// ErrIncompleteShippingAddress 收货地址不完整
	ErrIncompleteShippingAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "收货地址信息不完整")

	// ErrMissingPaymentMethod 未指定支付方式
	ErrMissingPaymentMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "请选择支付方式")

	// ErrInvalidAmount 金额不合法
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "订单金额不能为负数")

	// ErrForbidden 无权访问此订单
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权访问此订单")
)
