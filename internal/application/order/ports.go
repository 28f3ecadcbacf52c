package order

import "context"

// Transactor 事务边界接口
// 设计说明:
// 1. 用例层只依赖接口,不依赖mysql.TxManager具体实现
// 2. 便于测试时用串行化的fake替代真实事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 事件发布接口
// 事件在事务提交后发布,发布失败不影响业务结果
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}
