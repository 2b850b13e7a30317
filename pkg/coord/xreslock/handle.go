package xreslock

import (
	"context"
	"sync/atomic"
	"time"
)

// Handle 一次成功获取的凭证，由获取方独占持有。
//
// 锁表只保存 token 用于校验，不持有 Handle 本身。
type Handle struct {
	releaser   Releaser
	resource   string
	token      Token
	acquiredAt time.Time
	held       atomic.Bool
}

// NewHandle 构造处于持有状态的 Handle，供 Locker 实现在授予时调用
func NewHandle(releaser Releaser, resource string, token Token, acquiredAt time.Time) *Handle {
	h := &Handle{
		releaser:   releaser,
		resource:   resource,
		token:      token,
		acquiredAt: acquiredAt,
	}
	h.held.Store(true)
	return h
}

// Resource 返回资源名，释放后仍可调用
func (h *Handle) Resource() string {
	return h.resource
}

// AcquiredAt 返回授予时刻
func (h *Handle) AcquiredAt() time.Time {
	return h.acquiredAt
}

// IsHeld 是否仍持有
func (h *Handle) IsHeld() bool {
	return h.held.Load()
}

// Release 释放锁。幂等且可并发调用：只有首次调用转发给 Releaser，之后返回 nil。
func (h *Handle) Release() error {
	if h == nil || !h.held.CompareAndSwap(true, false) {
		return nil
	}
	if h.releaser == nil {
		return nil
	}
	return h.releaser.Release(context.Background(), h.resource, h.token)
}
