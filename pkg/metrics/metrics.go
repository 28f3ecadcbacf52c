// Package metrics 提供基于Prometheus的业务指标
//
// 指标分类：
// 1. HTTP指标：请求总数、耗时分布、并发数
// 2. 订单指标：下单/支付/发货计数、库存冲突计数、下单耗时
// 3. 熔断器指标：状态、请求结果
// 4. 消息队列指标：事件发布计数
//
// 使用方式：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//	metrics.IncCounter(metrics.OrdersCreatedTotal)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var initialized bool

var (
	// HTTP指标

	// HTTPRequestsTotal HTTP请求总数，标签：method、path、code
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（秒），标签：method、path
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 订单业务指标

	// OrdersCreatedTotal 下单成功总数
	OrdersCreatedTotal prometheus.Counter

	// OrdersFailedTotal 下单失败总数
	OrdersFailedTotal prometheus.Counter

	// OrdersPaidTotal 订单支付成功总数
	OrdersPaidTotal prometheus.Counter

	// OrdersDeliveredTotal 订单发货总数
	OrdersDeliveredTotal prometheus.Counter

	// StockConflictsTotal 库存不足导致的下单失败总数
	// 该指标持续偏高说明热门图书备货不足
	StockConflictsTotal prometheus.Counter

	// OrderCreationDuration 下单耗时（秒），含库存锁定与事务提交
	OrderCreationDuration prometheus.Histogram

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN），标签：name
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数，标签：name、result
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// EventsPublishedTotal 订单事件发布总数，标签：routing_key、result
	EventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次；promauto自动注册到默认Registry
func InitMetrics() {
	// 防止重复初始化（重复注册会panic）
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "下单成功总数",
		},
	)

	OrdersFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "下单失败总数",
		},
	)

	OrdersPaidTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_paid_total",
			Help: "订单支付成功总数",
		},
	)

	OrdersDeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_delivered_total",
			Help: "订单发货总数",
		},
	)

	StockConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_stock_conflicts_total",
			Help: "库存不足导致的下单失败总数",
		},
	)

	OrderCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "order_creation_duration_seconds",
			Help: "下单耗时（秒）",
			// 下单涉及行锁与事务提交，桶范围偏大
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "订单事件发布总数",
		},
		[]string{"routing_key", "result"},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
