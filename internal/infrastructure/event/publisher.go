package event

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// Publisher 订单事件发布器
// 设计说明：
//  1. 包装pkg/mq的Publisher，加上熔断保护：MQ不可用时快速失败，
//     不让事件发布拖垮下单主链路
//  2. 事件在事务提交后发布（fire-and-forget），发布失败只记录
//     日志和指标，不回滚业务
type Publisher struct {
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewPublisher 创建事件发布器
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	pub, err := mq.NewPublisher(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	cb := circuitbreaker.NewCircuitBreaker("event_publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.L().Warn("事件发布熔断器状态变化",
			"name", name, "from", from.String(), "to", to.String())
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &Publisher{publisher: pub, breaker: cb}, nil
}

// Publish 发布事件
// 失败不向上传播错误，由调用方决定是否关心（通常不关心）
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(ctx, routingKey, payload)
	})
	if err != nil {
		logger.L().Error("事件发布失败", "routing_key", routingKey, "error", err)
		metrics.IncCounterVec(metrics.EventsPublishedTotal,
			map[string]string{"routing_key": routingKey, "result": "failure"})
		return err
	}

	metrics.IncCounterVec(metrics.EventsPublishedTotal,
		map[string]string{"routing_key": routingKey, "result": "success"})
	return nil
}

// Close 关闭底层连接
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// NopPublisher 空实现
// mq.enabled=false时使用，本地开发无需启动RabbitMQ
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	logger.L().Debug("事件发布已禁用, 丢弃事件", "routing_key", routingKey)
	return nil
}

func (NopPublisher) Close() error { return nil }
