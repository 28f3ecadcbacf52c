package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(timeout time.Duration, threshold uint32) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// TestClosedState 关闭状态下请求正常通过
func TestClosedState(t *testing.T) {
	cb := newTestBreaker(30*time.Second, 5)

	for i := 0; i < 10; i++ {
		err := cb.Execute(func() error { return nil })
		require.NoError(t, err)
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

// TestTripToOpen 连续失败达到阈值后熔断，后续请求快速失败
func TestTripToOpen(t *testing.T) {
	cb := newTestBreaker(30*time.Second, 5)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("broker unavailable")
		})
	}

	require.Equal(t, StateOpen, cb.State())

	// 熔断打开时不应调用实际函数
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

// TestHalfOpenRecovery 超时后进入半开，探测成功则恢复关闭
func TestHalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker(100*time.Millisecond, 3)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("fail") })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(150 * time.Millisecond)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StateClosed, cb.State())
}

// TestHalfOpenFailure 半开状态下探测失败，立即转回打开
func TestHalfOpenFailure(t *testing.T) {
	cb := newTestBreaker(100*time.Millisecond, 3)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("fail") })
	}

	time.Sleep(150 * time.Millisecond)

	_ = cb.Execute(func() error { return errors.New("still failing") })

	assert.Equal(t, StateOpen, cb.State())
}

// TestStateChangeCallback 状态变化回调按顺序触发
func TestStateChangeCallback(t *testing.T) {
	cb := newTestBreaker(100*time.Millisecond, 3)

	var changes []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		changes = append(changes, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("fail") })
	}

	time.Sleep(150 * time.Millisecond)
	_ = cb.Execute(func() error { return nil })

	assert.Equal(t, []string{
		"CLOSED->OPEN",
		"OPEN->HALF_OPEN",
		"HALF_OPEN->CLOSED",
	}, changes)
}

// TestFailureRateTrip 基于失败率的熔断策略
func TestFailureRateTrip(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    time.Hour, // 长窗口，避免测试中被重置
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.Requests >= 10 && counts.FailureRate() > 0.5
		},
	})

	// 4次成功 + 6次失败，失败率60%
	for i := 0; i < 10; i++ {
		ok := i < 4
		_ = cb.Execute(func() error {
			if ok {
				return nil
			}
			return errors.New("fail")
		})
	}

	assert.Equal(t, StateOpen, cb.State())
}

// flakyPublisher 模拟前N次发布失败的消息队列
type flakyPublisher struct {
	failCount int
	callCount int
}

func (p *flakyPublisher) Publish() error {
	p.callCount++
	if p.callCount <= p.failCount {
		return errors.New("connection refused")
	}
	return nil
}

// TestProtectPublisher 熔断器保护消息发布：失败触发熔断后不再调用下游，恢复后放行
func TestProtectPublisher(t *testing.T) {
	pub := &flakyPublisher{failCount: 5}

	cb := NewCircuitBreaker("event-publisher", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     200 * time.Millisecond,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for i := 0; i < 10; i++ {
		_ = cb.Execute(pub.Publish)
	}

	// 前5次失败触发熔断，第6-10次快速失败，不再触达下游
	assert.Equal(t, 5, pub.callCount)

	time.Sleep(250 * time.Millisecond)

	err := cb.Execute(pub.Publish)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func BenchmarkExecute(b *testing.B) {
	cb := newTestBreaker(30*time.Second, 5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(func() error { return nil })
	}
}
