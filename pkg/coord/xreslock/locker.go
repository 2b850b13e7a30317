package xreslock

import (
	"context"
	"time"
)

// Releaser 按 token 释放资源。token 与当前持有者不匹配时必须是无副作用的空操作。
type Releaser interface {
	Release(ctx context.Context, resource string, token Token) error
}

// Locker 资源锁后端。
//
// Acquire 的返回约定：
//   - (h, nil)：获取成功
//   - (nil, nil)：timeout 内未获取到（包括 timeout 为 0 时资源被占用）
//   - (nil, err)：ctx 取消返回 ctx.Err()，其余为参数错误或后端状态错误
type Locker interface {
	Releaser
	Acquire(ctx context.Context, resource string, timeout time.Duration) (*Handle, error)
}

var (
	_ Locker   = (*Table)(nil)
	_ Releaser = (*Table)(nil)
)
