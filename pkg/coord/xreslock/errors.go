package xreslock

import "errors"

var (
	// ErrNilContext Acquire 的 ctx 为 nil
	ErrNilContext = errors.New("xreslock: nil context")

	// ErrInvalidResource 资源名为空
	ErrInvalidResource = errors.New("xreslock: empty resource")

	// ErrInvalidTimeout 超时为负数
	ErrInvalidTimeout = errors.New("xreslock: negative timeout")

	// ErrClosed 锁表已关闭。Close 后的 Acquire 以及 Close 时仍在等待的 Acquire 返回此错误。
	ErrClosed = errors.New("xreslock: closed")

	// ErrMaxResourcesExceeded 跟踪的资源数达到上限
	ErrMaxResourcesExceeded = errors.New("xreslock: max resources exceeded")

	// ErrInvalidShardCount 分片数不是 2 的幂或超出范围
	ErrInvalidShardCount = errors.New("xreslock: invalid shard count")

	// ErrTimeout WithLock 未能在超时内获取锁。Acquire 本身以 (nil, nil) 表示超时。
	ErrTimeout = errors.New("xreslock: acquire timed out")

	// ErrNilLocker WithLock 的 Locker 为 nil
	ErrNilLocker = errors.New("xreslock: nil locker")

	// ErrNilFunc WithLock 的函数为 nil
	ErrNilFunc = errors.New("xreslock: nil func")
)
