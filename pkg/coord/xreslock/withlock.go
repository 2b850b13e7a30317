package xreslock

import (
	"context"
	"fmt"
	"time"
)

// WithLock 获取 resource 后执行 fn，并保证在 fn 返回、出错或 panic 时释放。
//
// 未能在 timeout 内获取返回 [ErrTimeout]；ctx 取消返回 ctx.Err()。
// fn 成功但释放失败时返回释放错误。
func WithLock(ctx context.Context, l Locker, resource string, timeout time.Duration,
	fn func(ctx context.Context) error) (err error) {
	if l == nil {
		return ErrNilLocker
	}
	if fn == nil {
		return ErrNilFunc
	}

	h, err := l.Acquire(ctx, resource, timeout)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("%w: %q within %s", ErrTimeout, resource, timeout)
	}
	defer func() {
		if rerr := h.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("xreslock: release %q: %w", resource, rerr)
		}
	}()
	return fn(ctx)
}
