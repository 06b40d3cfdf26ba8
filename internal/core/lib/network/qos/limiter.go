package qos

import (
	"context"
	"sync"
)

// AdaptiveLimiter 基于 AIMD 的并发窗口
// 每积累 limit 次连接成功窗口 +1，任意一次连接失败窗口乘以 0.7
// 窗口缩小时已借出的名额不强制收回，随 Release 自然回落
type AdaptiveLimiter struct {
	mu       sync.Mutex
	limit    int
	min      int
	max      int
	inflight int
	streak   int           // 连续成功次数
	wake     chan struct{} // 名额变化时关闭以唤醒等待者
}

// NewAdaptiveLimiter initial 会被夹在 [min, max] 之间
func NewAdaptiveLimiter(initial, min, max int) *AdaptiveLimiter {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}
	return &AdaptiveLimiter{
		limit: initial,
		min:   min,
		max:   max,
		wake:  make(chan struct{}),
	}
}

// Acquire 占用一个名额，窗口已满时阻塞到有名额释放或 ctx 结束
func (l *AdaptiveLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		if l.inflight < l.limit {
			l.inflight++
			l.mu.Unlock()
			return nil
		}
		wake := l.wake
		l.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release 归还名额
func (l *AdaptiveLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inflight > 0 {
		l.inflight--
	}
	l.broadcast()
}

// OnSuccess 加性增长
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.streak++
	if l.streak < l.limit {
		return
	}
	l.streak = 0
	if l.limit < l.max {
		l.limit++
		l.broadcast()
	}
}

// OnFailure 乘性减少，至少减 1，不低于 min
func (l *AdaptiveLimiter) OnFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.streak = 0
	next := int(float64(l.limit) * 0.7)
	if next >= l.limit {
		next = l.limit - 1
	}
	if next < l.min {
		next = l.min
	}
	l.limit = next
}

// CurrentLimit 当前窗口大小
func (l *AdaptiveLimiter) CurrentLimit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}

// InFlight 当前已借出名额
func (l *AdaptiveLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight
}

// 调用方须持有 mu
func (l *AdaptiveLimiter) broadcast() {
	close(l.wake)
	l.wake = make(chan struct{})
}
