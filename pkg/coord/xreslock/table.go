package xreslock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

const component = "xreslock"

// Table 内存锁表，[Locker] 的进程内实现。所有方法并发安全。
//
// 资源状态在首次获取时创建，无持有者也无等待者时回收。
type Table struct {
	shards []shard
	mask   uint64
	opts   options
	log    xlog.Logger

	count  atomic.Int64
	closed atomic.Bool
	done   chan struct{}
}

// shard 的 mu 只保护 map 的查找、插入、删除与 lockState.refs
type shard struct {
	mu     sync.Mutex
	states map[string]*lockState
}

// New 创建锁表，配置无效时返回错误
func New(opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	shards := make([]shard, o.shardCount)
	for i := range shards {
		shards[i].states = make(map[string]*lockState)
	}
	return &Table{
		shards: shards,
		mask:   uint64(o.shardCount - 1),
		opts:   o,
		log:    o.logger.With(xlog.Component(component)),
		done:   make(chan struct{}),
	}, nil
}

func (t *Table) shardFor(resource string) *shard {
	return &t.shards[xxhash.Sum64String(resource)&t.mask]
}

// ref 获取或创建资源状态并增加引用
func (t *Table) ref(resource string) (*lockState, error) {
	s := t.shardFor(resource)
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.closed.Load() {
		return nil, ErrClosed
	}
	st, ok := s.states[resource]
	if !ok {
		if err := t.reserve(); err != nil {
			return nil, err
		}
		st = &lockState{}
		s.states[resource] = st
	}
	st.refs++
	return st, nil
}

// reserve 为新资源占用一个名额，CAS 保证跨分片并发时不突破上限
func (t *Table) reserve() error {
	limit := int64(t.opts.maxResources)
	if limit <= 0 {
		t.count.Add(1)
		return nil
	}
	for {
		cur := t.count.Load()
		if cur >= limit {
			return ErrMaxResourcesExceeded
		}
		if t.count.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// unref 减少引用，归零时删除资源状态
func (t *Table) unref(resource string, st *lockState) {
	s := t.shardFor(resource)
	s.mu.Lock()
	defer s.mu.Unlock()

	st.refs--
	if st.refs == 0 {
		delete(s.states, resource)
		t.count.Add(-1)
	}
}

func (t *Table) lookup(resource string) *lockState {
	s := t.shardFor(resource)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[resource]
}

// Acquire 获取 resource 的独占锁，最多排队等待 timeout。
//
// 参数错误（nil ctx、空资源名、负超时）在排队前同步返回。
// 超时返回 (nil, nil)；ctx 取消返回 (nil, ctx.Err())；锁表关闭返回 (nil, ErrClosed)。
// 取消或关闭与授予同时发生且授予胜出时，锁会立即释放并交给下一个等待者。
//
// 锁不可重入，同一调用方对同一资源重复 Acquire 会等待自己。
func (t *Table) Acquire(ctx context.Context, resource string, timeout time.Duration) (*Handle, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if resource == "" {
		return nil, ErrInvalidResource
	}
	if timeout < 0 {
		return nil, ErrInvalidTimeout
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := xmetrics.Start(ctx, t.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "acquire",
		Attrs: []xmetrics.Attr{
			xmetrics.String("resource", resource),
			xmetrics.Duration("timeout_ns", timeout),
		},
	})
	res := t.acquire(ctx, resource, timeout)
	span.End(xmetrics.Result{Err: res.err, Outcome: res.outcome})
	if res.outcome != "" {
		xmetrics.RecordWait(ctx, t.opts.observer, res.outcome, res.wait)
	}
	return res.handle, res.err
}

// TryAcquire 只尝试一次，资源被占用时返回 (nil, nil)
func (t *Table) TryAcquire(resource string) (*Handle, error) {
	return t.Acquire(context.Background(), resource, 0)
}

type acquireResult struct {
	handle  *Handle
	outcome string
	wait    time.Duration
	err     error
}

func (t *Table) acquire(ctx context.Context, resource string, timeout time.Duration) acquireResult {
	if t.closed.Load() {
		return acquireResult{outcome: xmetrics.OutcomeClosed, err: ErrClosed}
	}
	st, err := t.ref(resource)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return acquireResult{outcome: xmetrics.OutcomeClosed, err: err}
		}
		t.log.Warn(ctx, "acquire rejected", xlog.Resource(resource), xlog.Err(err))
		return acquireResult{err: err}
	}

	token := NewToken()
	now := time.Now()

	st.mu.Lock()
	if st.tryClaim(token, now) {
		st.mu.Unlock()
		return acquireResult{
			handle:  NewHandle(t, resource, token, now),
			outcome: xmetrics.OutcomeAcquired,
		}
	}
	if timeout == 0 {
		st.mu.Unlock()
		t.unref(resource, st)
		return acquireResult{outcome: xmetrics.OutcomeTimeout}
	}
	w := st.enqueue(token)
	st.mu.Unlock()

	return t.wait(ctx, resource, st, w, timeout)
}

// wait 慢路径：等待授予、超时、取消或关闭中最先发生者。计时从入队后开始。
func (t *Table) wait(ctx context.Context, resource string, st *lockState, w *waiter, timeout time.Duration) acquireResult {
	enqueued := time.Now()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	log := t.log.With(xlog.Resource(resource), xlog.Ticket(w.ticket))
	log.Debug(ctx, "waiting for resource", xlog.Timeout(timeout))

	select {
	case <-w.ready:
		return t.granted(ctx, log, resource, w, enqueued)

	case <-timer.C:
		if !st.abandon(w) {
			// 授予先认领，尊重授予
			<-w.ready
			return t.granted(ctx, log, resource, w, enqueued)
		}
		t.unref(resource, st)
		wait := time.Since(enqueued)
		log.Debug(ctx, "acquire timed out", xlog.Wait(wait))
		return acquireResult{outcome: xmetrics.OutcomeTimeout, wait: wait}

	case <-ctx.Done():
		return t.giveUp(ctx, log, resource, st, w, enqueued, xmetrics.OutcomeCanceled, ctx.Err())

	case <-t.done:
		return t.giveUp(ctx, log, resource, st, w, enqueued, xmetrics.OutcomeClosed, ErrClosed)
	}
}

func (t *Table) granted(ctx context.Context, log xlog.Logger, resource string, w *waiter, enqueued time.Time) acquireResult {
	wait := w.grantedAt.Sub(enqueued)
	log.Debug(ctx, "resource granted", xlog.Wait(wait))
	return acquireResult{
		handle:  NewHandle(t, resource, w.token, w.grantedAt),
		outcome: xmetrics.OutcomeAcquired,
		wait:    wait,
	}
}

// giveUp 处理取消与关闭。授予先认领时，立即释放刚得到的锁，调用方仍收到 cause。
func (t *Table) giveUp(ctx context.Context, log xlog.Logger, resource string, st *lockState, w *waiter,
	enqueued time.Time, outcome string, cause error) acquireResult {
	if st.abandon(w) {
		t.unref(resource, st)
	} else {
		<-w.ready
		t.release(resource, w.token)
		log.Debug(ctx, "grant discarded after abandon", xlog.Outcome(outcome))
	}
	wait := time.Since(enqueued)
	log.Debug(ctx, "acquire abandoned", xlog.Outcome(outcome), xlog.Wait(wait))
	return acquireResult{outcome: outcome, wait: wait, err: cause}
}

// Release 由持有者 token 释放 resource 并交给下一个等待者。
//
// token 过期、不匹配、为零值或资源未被跟踪时不做任何修改，返回 nil。
// 锁表关闭后仍可释放已持有的锁。
func (t *Table) Release(ctx context.Context, resource string, token Token) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := xmetrics.Start(ctx, t.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "release",
		Attrs:     []xmetrics.Attr{xmetrics.String("resource", resource)},
	})
	defer span.End(xmetrics.Result{})

	next, ok := t.release(resource, token)
	if !ok {
		t.log.Warn(ctx, "release ignored: token does not own resource",
			xlog.Resource(resource), xlog.Owner(token.String()))
		return nil
	}
	if next != nil {
		t.log.Debug(ctx, "resource handed off", xlog.Resource(resource), xlog.Ticket(next.ticket))
	}
	return nil
}

func (t *Table) release(resource string, token Token) (*waiter, bool) {
	if resource == "" || token.IsZero() {
		return nil, false
	}
	st := t.lookup(resource)
	if st == nil {
		return nil, false
	}

	st.mu.Lock()
	next, ok := st.handoff(token, time.Now())
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	// 持有者的引用随所有权结束；被授予者沿用自己排队时的引用
	t.unref(resource, st)
	return next, true
}

// Close 拒绝新的获取并唤醒所有等待者（返回 ErrClosed）。
// 已持有的锁不受影响，仍可释放。重复调用返回 ErrClosed。
func (t *Table) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(t.done)
	t.log.Info(context.Background(), "lock table closed", slog.Int("resources", t.Len()))
	return nil
}

// Len 当前跟踪的资源数（持有或等待中），单次原子读取
func (t *Table) Len() int {
	return int(max(t.count.Load(), 0))
}

// Resources 当前跟踪的资源名快照，不保证跨分片原子性，仅用于调试
func (t *Table) Resources() []string {
	out := make([]string, 0, t.Len())
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for r := range s.states {
			out = append(out, r)
		}
		s.mu.Unlock()
	}
	return out
}

// Stat 返回资源的状态快照，资源未被跟踪时 ok 为 false
func (t *Table) Stat(resource string) (Stat, bool) {
	st := t.lookup(resource)
	if st == nil {
		return Stat{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshot(), true
}
