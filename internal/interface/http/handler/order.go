package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrderUseCase  *apporder.CreateOrderUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
	listOrdersUseCase   *apporder.ListOrdersUseCase
	payOrderUseCase     *apporder.PayOrderUseCase
	deliverOrderUseCase *apporder.DeliverOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrderUseCase *apporder.CreateOrderUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	listOrdersUseCase *apporder.ListOrdersUseCase,
	payOrderUseCase *apporder.PayOrderUseCase,
	deliverOrderUseCase *apporder.DeliverOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrderUseCase:  createOrderUseCase,
		getOrderUseCase:     getOrderUseCase,
		listOrdersUseCase:   listOrdersUseCase,
		payOrderUseCase:     payOrderUseCase,
		deliverOrderUseCase: deliverOrderUseCase,
	}
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  下单并原子扣减库存(悲观锁防超卖);金额由服务端按库中价格计算
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.CreateOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误/库存不足"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
	}

	result, err := h.createOrderUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID: userID,
		Items:  items,
		Shipping: order.ShippingAddress{
			Address:    req.Shipping.Address,
			City:       req.Shipping.City,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CreateOrderResponse{
		OrderID:       result.OrderID,
		OrderNo:       result.OrderNo,
		ItemsPrice:    result.ItemsPrice,
		ShippingPrice: result.ShippingPrice,
		TaxPrice:      result.TaxPrice,
		TotalPrice:    result.TotalPrice,
		TotalYuan:     result.TotalYuan,
		CreatedAt:     result.CreatedAt,
	})
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  普通用户只能查看自己的订单,管理员可查看任意订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDetail}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// 订单详情结构较深,应用层DTO已是纯数据形式,直接序列化返回
	detail, err := h.getOrderUseCase.Execute(c.Request.Context(), id,
		middleware.MustGetUserID(c), middleware.GetIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail)
}

// ListMyOrders 我的订单列表
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码,默认1"
// @Param        page_size query int false "每页数量,默认10"
// @Success      200 {object} response.Response{data=apporder.ListOrdersResponse}
// @Router       /api/v1/orders/myorders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	page, pageSize := parsePageQuery(c)

	result, err := h.listOrdersUseCase.ListMyOrders(c.Request.Context(),
		middleware.MustGetUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOrders 全部订单列表(管理员)
// @Summary      全部订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码,默认1"
// @Param        page_size query int false "每页数量,默认10"
// @Success      200 {object} response.Response{data=apporder.ListOrdersResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := parsePageQuery(c)

	result, err := h.listOrdersUseCase.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PayOrder 订单支付
// @Summary      支付订单
// @Description  记录支付网关回传结果(所有者或管理员);重复支付返回已支付错误,首次记录不被覆盖
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.PayOrderRequest true "支付结果"
// @Success      200 {object} response.Response{data=apporder.OrderDetail}
// @Failure      400 {object} response.Response "订单已支付"
// @Failure      403 {object} response.Response "无权操作"
// @Router       /api/v1/orders/{id}/pay [put]
func (h *OrderHandler) PayOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	detail, err := h.payOrderUseCase.Execute(c.Request.Context(), apporder.PayOrderRequest{
		OrderID:       id,
		UserID:        middleware.MustGetUserID(c),
		IsAdmin:       middleware.GetIsAdmin(c),
		TransactionID: req.TransactionID,
		Status:        req.Status,
		PaidTime:      req.PaidTime,
		PayerEmail:    req.PayerEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail)
}

// DeliverOrder 订单发货(管理员)
// @Summary      订单发货
// @Description  发货不要求订单已支付(支持货到付款);重复发货返回已发货错误
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.DeliverOrderRequest false "物流信息"
// @Success      200 {object} response.Response{data=apporder.OrderDetail}
// @Failure      400 {object} response.Response "订单已发货"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/orders/{id}/deliver [put]
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// 物流单号可省略,请求体允许为空
	var req dto.DeliverOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
			return
		}
	}

	detail, err := h.deliverOrderUseCase.Execute(c.Request.Context(), apporder.DeliverOrderRequest{
		OrderID:    id,
		TrackingNo: req.TrackingNo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail)
}

// parsePageQuery 解析分页查询参数,非法值由用例层归一化
func parsePageQuery(c *gin.Context) (int, int) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)
	return page, pageSize
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
