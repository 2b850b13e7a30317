package xreslock

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// waiter 一次排队中的获取请求
type waiter struct {
	token  Token
	ticket uint64

	// ready 在授予时关闭，是该等待者专属的一次性信号
	ready chan struct{}

	// claimed 由授予、超时、取消或 Close 之一从 false 置为 true，胜者决定结果
	claimed atomic.Bool

	// 以下字段由 lockState.mu 保护；grantedAt 在 close(ready) 前写入
	elem      *list.Element
	grantedAt time.Time
}

// lockState 单个资源的状态。
//
// mu 只保护纯内存状态变更，临界区内不做 I/O、不打日志、不阻塞。
type lockState struct {
	mu         sync.Mutex
	owner      Token
	since      time.Time
	queue      list.List // *waiter，FIFO
	nextTicket uint64

	// refs 持有者 + 等待者数量，由所在分片的 mu 保护，归零时从分片删除
	refs int
}

// tryClaim 资源空闲时把所有权交给 token
func (st *lockState) tryClaim(token Token, now time.Time) bool {
	if !st.owner.IsZero() {
		return false
	}
	st.owner, st.since = token, now
	return true
}

// enqueue 在队尾追加等待者
func (st *lockState) enqueue(token Token) *waiter {
	st.nextTicket++
	w := &waiter{
		token:  token,
		ticket: st.nextTicket,
		ready:  make(chan struct{}),
	}
	w.elem = st.queue.PushBack(w)
	return w
}

// abandon 等待者因超时、取消或 Close 放弃等待。
// 返回 false 表示授予已先一步认领该等待者。
func (st *lockState) abandon(w *waiter) bool {
	if !w.claimed.CompareAndSwap(false, true) {
		return false
	}
	st.mu.Lock()
	st.remove(w)
	st.mu.Unlock()
	return true
}

// remove 调用方持有 mu。已被释放路径弹出的等待者 elem 为 nil。
func (st *lockState) remove(w *waiter) {
	if w.elem != nil {
		st.queue.Remove(w.elem)
		w.elem = nil
	}
}

// handoff 由持有者 token 释放资源，调用方持有 mu。
//
// 依次弹出队首，跳过已自行结束的等待者，把所有权交给第一个认领成功的等待者并唤醒它；
// 队列耗尽则资源变为空闲。token 不是当前持有者时返回 ok=false 且不修改任何状态。
func (st *lockState) handoff(token Token, now time.Time) (next *waiter, ok bool) {
	if token.IsZero() || st.owner != token {
		return nil, false
	}
	for e := st.queue.Front(); e != nil; e = st.queue.Front() {
		w := st.queue.Remove(e).(*waiter) //nolint:errcheck,forcetypeassert // 队列只存 *waiter
		w.elem = nil
		if !w.claimed.CompareAndSwap(false, true) {
			continue
		}
		st.owner, st.since = w.token, now
		w.grantedAt = now
		close(w.ready)
		return w, true
	}
	st.owner, st.since = Token{}, time.Time{}
	return nil, true
}

// snapshot 调用方持有 mu
func (st *lockState) snapshot() Stat {
	s := Stat{
		Held:  !st.owner.IsZero(),
		Since: st.since,
	}
	for e := st.queue.Front(); e != nil; e = e.Next() {
		w := e.Value.(*waiter) //nolint:errcheck,forcetypeassert // 队列只存 *waiter
		if !w.claimed.Load() {
			s.Tickets = append(s.Tickets, w.ticket)
		}
	}
	s.Waiters = len(s.Tickets)
	return s
}

// Stat 资源状态快照
type Stat struct {
	// Held 是否有持有者
	Held bool
	// Since 当前持有者的授予时刻，空闲时为零值
	Since time.Time
	// Waiters 仍在等待的请求数，不含已超时或取消但尚未出队的请求
	Waiters int
	// Tickets 等待者的排队号，按授予顺序排列
	Tickets []uint64
}
