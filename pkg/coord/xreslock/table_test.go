package xreslock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newForTest(tb testing.TB, opts ...Option) *Table {
	tb.Helper()
	tbl, err := New(opts...)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

// waitForWaiters 等待 resource 的有效等待者数量达到 n
func waitForWaiters(t *testing.T, tbl *Table, resource string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, ok := tbl.Stat(resource)
		return ok && st.Waiters == n
	}, 2*time.Second, time.Millisecond, "waiting for %d waiters on %s", n, resource)
}

type acquired struct {
	h   *Handle
	err error
}

func acquireAsync(ctx context.Context, tbl *Table, resource string, timeout time.Duration) <-chan acquired {
	ch := make(chan acquired, 1)
	go func() {
		h, err := tbl.Acquire(ctx, resource, timeout)
		ch <- acquired{h: h, err: err}
	}()
	return ch
}

func receive(t *testing.T, ch <-chan acquired) acquired {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("acquire did not return")
		return acquired{}
	}
}

func TestNewInvalidShardCount(t *testing.T) {
	for _, n := range []int{0, -1, 3, 48, maxShardCount * 2} {
		_, err := New(WithShardCount(n))
		assert.ErrorIs(t, err, ErrInvalidShardCount, "shard count %d", n)
	}

	tbl, err := New(nil, WithShardCount(1), WithLogger(nil), WithObserver(nil))
	require.NoError(t, err)
	require.NoError(t, tbl.Close())
}

func TestAcquireInvalidInputs(t *testing.T) {
	tbl := newForTest(t)

	_, err := tbl.Acquire(nil, "r", time.Second) //nolint:staticcheck // 测试 nil ctx
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = tbl.Acquire(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrInvalidResource)

	_, err = tbl.Acquire(context.Background(), "r", -time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tbl.Acquire(ctx, "r", time.Second)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, tbl.Len(), "misuse must not create state")
}

func TestAcquireAndRelease(t *testing.T) {
	tbl := newForTest(t)
	before := time.Now()

	h, err := tbl.Acquire(context.Background(), "deploy/t1/nginx", time.Second)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "deploy/t1/nginx", h.Resource())
	assert.True(t, h.IsHeld())
	assert.False(t, h.AcquiredAt().Before(before))

	st, ok := tbl.Stat("deploy/t1/nginx")
	require.True(t, ok)
	assert.True(t, st.Held)
	assert.Equal(t, h.AcquiredAt(), st.Since)
	assert.Zero(t, st.Waiters)
	assert.Equal(t, []string{"deploy/t1/nginx"}, tbl.Resources())

	require.NoError(t, h.Release())
	assert.False(t, h.IsHeld())
	assert.Equal(t, "deploy/t1/nginx", h.Resource())

	_, ok = tbl.Stat("deploy/t1/nginx")
	assert.False(t, ok, "idle state should be reclaimed")
	assert.Zero(t, tbl.Len())
}

func TestReleaseIdempotent(t *testing.T) {
	tbl := newForTest(t)

	h, err := tbl.TryAcquire("r")
	require.NoError(t, err)
	require.NotNil(t, h)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Release())
		}()
	}
	wg.Wait()

	assert.NoError(t, h.Release())
	assert.False(t, h.IsHeld())
	assert.Zero(t, tbl.Len())

	// 再次获取不受重复释放影响
	h2, err := tbl.TryAcquire("r")
	require.NoError(t, err)
	require.NotNil(t, h2)
	assert.NoError(t, h.Release())
	assert.True(t, h2.IsHeld())
	st, _ := tbl.Stat("r")
	assert.True(t, st.Held)
	require.NoError(t, h2.Release())
}

func TestTryAcquire(t *testing.T) {
	tbl := newForTest(t)

	h1, err := tbl.TryAcquire("r")
	require.NoError(t, err)
	require.NotNil(t, h1)

	h2, err := tbl.TryAcquire("r")
	assert.NoError(t, err)
	assert.Nil(t, h2, "occupied resource yields nil handle and nil error")

	other, err := tbl.TryAcquire("other")
	require.NoError(t, err)
	require.NotNil(t, other)

	require.NoError(t, h1.Release())
	require.NoError(t, other.Release())
	assert.Zero(t, tbl.Len())
}

func TestMutualExclusion(t *testing.T) {
	tbl := newForTest(t)
	const workers = 200

	var (
		counter  int
		inside   atomic.Int32
		violated atomic.Bool
		wg       sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := tbl.Acquire(context.Background(), "counter", 10*time.Second)
			if !assert.NoError(t, err) || !assert.NotNil(t, h) {
				return
			}
			if inside.Add(1) > 1 {
				violated.Store(true)
			}
			counter++
			inside.Add(-1)
			assert.NoError(t, h.Release())
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
	assert.False(t, violated.Load(), "two holders observed at once")
	assert.Zero(t, tbl.Len())
}

func TestFastPathLatency(t *testing.T) {
	tbl := newForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hot, err := tbl.TryAcquire("hot")
	require.NoError(t, err)
	var waiters []<-chan acquired
	for range 50 {
		waiters = append(waiters, acquireAsync(ctx, tbl, "hot", 10*time.Second))
	}
	waitForWaiters(t, tbl, "hot", 50)

	start := time.Now()
	h, err := tbl.Acquire(context.Background(), "cold", time.Second)
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Less(t, elapsed, 10*time.Millisecond)
	require.NoError(t, h.Release())

	cancel()
	for _, ch := range waiters {
		r := receive(t, ch)
		assert.ErrorIs(t, r.err, context.Canceled)
		assert.Nil(t, r.h)
	}
	require.NoError(t, hot.Release())
}

func TestTimeoutBound(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	start := time.Now()
	h, err := tbl.Acquire(context.Background(), "r", 50*time.Millisecond)
	elapsed := time.Since(start)

	assert.NoError(t, err, "timeout is an outcome, not an error")
	assert.Nil(t, h)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)

	st, ok := tbl.Stat("r")
	require.True(t, ok)
	assert.Zero(t, st.Waiters, "timed out waiter must leave the queue")
	assert.True(t, holder.IsHeld())
	require.NoError(t, holder.Release())
	assert.Zero(t, tbl.Len())
}

func TestHandOffAfterRelease(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	ch := acquireAsync(context.Background(), tbl, "r", 30*time.Second)
	waitForWaiters(t, tbl, "r", 1)

	released := time.Now()
	require.NoError(t, holder.Release())

	r := receive(t, ch)
	require.NoError(t, r.err)
	require.NotNil(t, r.h)
	assert.Less(t, time.Since(released), time.Second, "hand-off must not wait out the timeout")
	assert.True(t, r.h.IsHeld())
	assert.False(t, r.h.AcquiredAt().Before(released))
	require.NoError(t, r.h.Release())
}

func TestFIFOFairness(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	order := make(chan int, 3)
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := tbl.Acquire(context.Background(), "r", 10*time.Second)
			if !assert.NoError(t, err) || !assert.NotNil(t, h) {
				return
			}
			order <- i
			assert.NoError(t, h.Release())
		}()
		// 等待前一个入队后再启动下一个，保证入队顺序 W1, W2, W3
		waitForWaiters(t, tbl, "r", i)
	}

	st, _ := tbl.Stat("r")
	assert.Equal(t, []uint64{1, 2, 3}, st.Tickets)

	require.NoError(t, holder.Release())
	wg.Wait()
	close(order)

	var got []int
	for i := range order {
		got = append(got, i)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCancelWhileWaiting(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	canceled := acquireAsync(ctx, tbl, "r", 10*time.Second)
	waitForWaiters(t, tbl, "r", 1)
	next := acquireAsync(context.Background(), tbl, "r", 10*time.Second)
	waitForWaiters(t, tbl, "r", 2)

	cancel()
	r := receive(t, canceled)
	assert.ErrorIs(t, r.err, context.Canceled)
	assert.Nil(t, r.h)
	waitForWaiters(t, tbl, "r", 1)

	require.NoError(t, holder.Release())
	r = receive(t, next)
	require.NoError(t, r.err)
	require.NotNil(t, r.h, "canceled waiter must not block the next one")
	require.NoError(t, r.h.Release())
	assert.Zero(t, tbl.Len())
}

func TestDeadlineIsCancellation(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)
	defer func() { require.NoError(t, holder.Release()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	h, err := tbl.Acquire(ctx, "r", 10*time.Second)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// 授予先于取消认领等待者：锁被立即释放，调用方仍得到取消错误，下一个等待者拿到锁。
func TestCancelLosesRaceToGrant(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	st, err := tbl.ref("r")
	require.NoError(t, err)
	st.mu.Lock()
	w := st.enqueue(NewToken())
	st.mu.Unlock()

	next := acquireAsync(context.Background(), tbl, "r", 10*time.Second)
	waitForWaiters(t, tbl, "r", 2)

	require.NoError(t, holder.Release())
	select {
	case <-w.ready:
	default:
		t.Fatal("head waiter should have been granted")
	}
	assert.False(t, st.abandon(w), "grant already claimed the waiter")

	res := tbl.giveUp(context.Background(), tbl.log, "r", st, w, time.Now(), xmetrics.OutcomeCanceled, context.Canceled)
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.Nil(t, res.handle)

	r := receive(t, next)
	require.NoError(t, r.err)
	require.NotNil(t, r.h)
	require.NoError(t, r.h.Release())
	assert.Zero(t, tbl.Len())
}

// 授予先于超时认领等待者时尊重授予。
func TestTimeoutLosesRaceToGrant(t *testing.T) {
	st := &lockState{}
	owner := NewToken()
	require.True(t, st.tryClaim(owner, time.Now()))

	w := st.enqueue(NewToken())
	next, ok := st.handoff(owner, time.Now())
	require.True(t, ok)
	require.Same(t, w, next)

	assert.False(t, st.abandon(w))
	assert.Equal(t, w.token, st.owner)
	assert.False(t, w.grantedAt.IsZero())
}

func TestGhostWaiterSkipped(t *testing.T) {
	st := &lockState{}
	owner := NewToken()
	require.True(t, st.tryClaim(owner, time.Now()))

	ghost := st.enqueue(NewToken())
	live := st.enqueue(NewToken())
	// 模拟超时已认领但尚未出队
	ghost.claimed.Store(true)
	assert.Equal(t, []uint64{live.ticket}, st.snapshot().Tickets)

	next, ok := st.handoff(owner, time.Now())
	require.True(t, ok)
	assert.Same(t, live, next)
	assert.Equal(t, live.token, st.owner)
	assert.Zero(t, st.queue.Len())

	select {
	case <-ghost.ready:
		t.Fatal("ghost waiter must not be granted")
	default:
	}

	// 队列耗尽后资源空闲
	_, ok = st.handoff(live.token, time.Now())
	require.True(t, ok)
	assert.True(t, st.owner.IsZero())
	assert.True(t, st.since.IsZero())
}

func TestStaleTokenRelease(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).SetFormat("json").Build()
	require.NoError(t, err)
	tbl := newForTest(t, WithLogger(logger))
	ctx := context.Background()

	h1, err := tbl.TryAcquire("r")
	require.NoError(t, err)
	stale := h1.token
	require.NoError(t, h1.Release())

	h2, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	assert.NoError(t, tbl.Release(ctx, "r", stale))
	assert.NoError(t, tbl.Release(ctx, "r", NewToken()))
	assert.NoError(t, tbl.Release(ctx, "r", Token{}))
	assert.NoError(t, tbl.Release(ctx, "unknown", h2.token))
	assert.NoError(t, tbl.Release(nil, "", h2.token)) //nolint:staticcheck // nil ctx 兜底

	st, ok := tbl.Stat("r")
	require.True(t, ok)
	assert.True(t, st.Held, "stale release must not free the resource")
	assert.True(t, h2.IsHeld())
	assert.Contains(t, buf.String(), "release ignored")
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	require.NoError(t, h2.Release())
	assert.Zero(t, tbl.Len())
}

func TestCloseWakesWaiters(t *testing.T) {
	tbl, err := New()
	require.NoError(t, err)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	var chans []<-chan acquired
	for range 5 {
		chans = append(chans, acquireAsync(context.Background(), tbl, "r", time.Minute))
	}
	waitForWaiters(t, tbl, "r", 5)

	require.NoError(t, tbl.Close())
	for _, ch := range chans {
		r := receive(t, ch)
		assert.ErrorIs(t, r.err, ErrClosed)
		assert.Nil(t, r.h)
	}

	assert.ErrorIs(t, tbl.Close(), ErrClosed)
	_, err = tbl.TryAcquire("other")
	assert.ErrorIs(t, err, ErrClosed)

	assert.True(t, holder.IsHeld(), "held locks survive Close")
	require.NoError(t, holder.Release())
	assert.Zero(t, tbl.Len())
}

func TestMaxResources(t *testing.T) {
	tbl := newForTest(t, WithMaxResources(2))

	a, err := tbl.TryAcquire("a")
	require.NoError(t, err)
	b, err := tbl.TryAcquire("b")
	require.NoError(t, err)

	_, err = tbl.TryAcquire("c")
	assert.ErrorIs(t, err, ErrMaxResourcesExceeded)

	// 已跟踪的资源不占新名额
	again, err := tbl.TryAcquire("a")
	assert.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, a.Release())
	c, err := tbl.TryAcquire("c")
	require.NoError(t, err)
	require.NotNil(t, c)

	require.NoError(t, b.Release())
	require.NoError(t, c.Release())
	assert.Zero(t, tbl.Len())
}

func TestMaxResourcesConcurrent(t *testing.T) {
	const limit = 10
	tbl := newForTest(t, WithMaxResources(limit), WithMaxResources(-1), WithMaxResources(limit))

	var (
		mu      sync.Mutex
		handles []*Handle
		wg      sync.WaitGroup
	)
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := tbl.TryAcquire(fmt.Sprintf("r-%d", i))
			if err != nil {
				assert.ErrorIs(t, err, ErrMaxResourcesExceeded)
				return
			}
			mu.Lock()
			handles = append(handles, h)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, handles, limit)
	assert.Equal(t, limit, tbl.Len())
	for _, h := range handles {
		require.NoError(t, h.Release())
	}
	assert.Zero(t, tbl.Len())
}

func TestCrossResourceIndependence(t *testing.T) {
	tbl := newForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 一个资源处于重度争用
	hot, err := tbl.TryAcquire("hot")
	require.NoError(t, err)
	var hotWaiters []<-chan acquired
	for range 20 {
		hotWaiters = append(hotWaiters, acquireAsync(ctx, tbl, "hot", time.Minute))
	}
	waitForWaiters(t, tbl, "hot", 20)

	const m = 100
	start := time.Now()
	var wg sync.WaitGroup
	for i := range m {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := tbl.Acquire(context.Background(), fmt.Sprintf("module-%d", i), 50*time.Millisecond)
			if assert.NoError(t, err) && assert.NotNil(t, h) {
				assert.NoError(t, h.Release())
			}
		}()
	}
	wg.Wait()
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	cancel()
	for _, ch := range hotWaiters {
		assert.ErrorIs(t, receive(t, ch).err, context.Canceled)
	}
	require.NoError(t, hot.Release())
	assert.Zero(t, tbl.Len())
}

func TestIdleStateReclaimedAfterOutcomes(t *testing.T) {
	tbl := newForTest(t)

	holder, err := tbl.TryAcquire("r")
	require.NoError(t, err)

	h, err := tbl.Acquire(context.Background(), "r", time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, h)

	h, err = tbl.TryAcquire("r")
	require.NoError(t, err)
	require.Nil(t, h)

	require.NoError(t, holder.Release())
	assert.Zero(t, tbl.Len())
	assert.Empty(t, tbl.Resources())
}

func TestHandleNilReleaser(t *testing.T) {
	h := NewHandle(nil, "r", NewToken(), time.Now())
	assert.True(t, h.IsHeld())
	assert.NoError(t, h.Release())
	assert.False(t, h.IsHeld())

	var nilHandle *Handle
	assert.NoError(t, nilHandle.Release())
}

type failingReleaser struct{ calls atomic.Int32 }

func (f *failingReleaser) Release(context.Context, string, Token) error {
	f.calls.Add(1)
	return errors.New("backend unavailable")
}

func TestHandleForwardsReleaseOnce(t *testing.T) {
	r := &failingReleaser{}
	h := NewHandle(r, "r", NewToken(), time.Now())

	assert.Error(t, h.Release())
	assert.NoError(t, h.Release())
	assert.Equal(t, int32(1), r.calls.Load())
}
