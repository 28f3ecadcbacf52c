package order

import (
	"context"
	"sync"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
)

// 内存版仓储与事务实现
// memTransactor用互斥锁串行化事务,模拟SELECT FOR UPDATE的互斥语义:
// 事务内对同一组图书的锁定-校验-扣减整体原子执行

type memTransactor struct {
	mu sync.Mutex
}

func (t *memTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type memBookRepo struct {
	mu    sync.Mutex
	books map[uint]*book.Book
}

func newMemBookRepo(books ...*book.Book) *memBookRepo {
	r := &memBookRepo{books: make(map[uint]*book.Book)}
	for _, b := range books {
		copied := *b
		r.books[b.ID] = &copied
	}
	return r
}

func (r *memBookRepo) get(id uint) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *b
	r.books[b.ID] = &copied
	return nil
}

func (r *memBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			copied := *b
			return &copied, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *memBookRepo) Update(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	copied := *b
	r.books[b.ID] = &copied
	return nil
}

func (r *memBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

func (r *memBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*book.Book
	for _, b := range r.books {
		copied := *b
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (r *memBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memBookRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.NewInsufficientStockError(b.Title, b.Stock, -delta)
	}
	b.Stock += delta
	return nil
}

// stock 读取当前库存(测试断言用)
func (r *memBookRepo) stock(id uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.books[id].Stock
}

type memOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*order.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{nextID: 1, orders: make(map[uint]*order.Order)}
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			copied := *o
			return &copied, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) UpdatePaymentState(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	// 模拟mysql实现:WHERE paid = false条件更新,检查和写入在同一临界区
	if stored.Paid {
		return order.ErrAlreadyPaid
	}
	stored.Paid = o.Paid
	stored.PaidAt = o.PaidAt
	stored.PaymentResult = o.PaymentResult
	stored.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *memOrderRepo) UpdateDeliveryState(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if stored.Delivered {
		return order.ErrAlreadyDelivered
	}
	stored.Delivered = o.Delivered
	stored.DeliveredAt = o.DeliveredAt
	stored.TrackingNo = o.TrackingNo
	stored.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			copied := *o
			result = append(result, &copied)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memOrderRepo) List(ctx context.Context, page, pageSize int) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		copied := *o
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

// count 订单总数(测试断言用)
func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// staleReadOrderRepo 强制所有读在任何写之前完成
// 用WaitGroup做读屏障,复现"两个请求都读到paid=false"的最坏交错,
// 验证条件更新在先读后写的竞态窗口下仍然只放行一次
type staleReadOrderRepo struct {
	*memOrderRepo
	reads *sync.WaitGroup
}

func (r *staleReadOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o, err := r.memOrderRepo.FindByID(ctx, id)
	r.reads.Done()
	r.reads.Wait()
	return o, err
}

// recordingPublisher 记录发布过的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	routingKey string
	payload    interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

// routingKeys 已发布事件的路由键列表
func (p *recordingPublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.events))
	for i, e := range p.events {
		keys[i] = e.routingKey
	}
	return keys
}
