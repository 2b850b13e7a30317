package xlog

import (
	"log/slog"
	"time"
)

// 锁协调场景的标准字段名
const (
	KeyError     = "error"
	KeyComponent = "component"
	KeyResource  = "resource"
	KeyOwner     = "owner"
	KeyOutcome   = "outcome"
	KeyWait      = "wait"
	KeyHeld      = "held"
	KeyTimeout   = "timeout"
	KeyWaiters   = "waiters"
	KeyAttempt   = "attempt"
	KeyModule    = "module"
	KeyTicket    = "ticket"
)

// Err 错误属性，err 为 nil 时返回空属性（被 slog 忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Resource 资源名属性
func Resource(name string) slog.Attr {
	return slog.String(KeyResource, name)
}

// Owner 持有者令牌属性
func Owner(token string) slog.Attr {
	return slog.String(KeyOwner, token)
}

// Outcome 获取结果属性（acquired/timeout/canceled/closed）
func Outcome(outcome string) slog.Attr {
	return slog.String(KeyOutcome, outcome)
}

// Wait 排队等待耗时
func Wait(d time.Duration) slog.Attr {
	return slog.Duration(KeyWait, d)
}

// Held 持有时长
func Held(d time.Duration) slog.Attr {
	return slog.Duration(KeyHeld, d)
}

// Timeout 获取超时设置
func Timeout(d time.Duration) slog.Attr {
	return slog.Duration(KeyTimeout, d)
}

// Waiters 当前排队人数
func Waiters(n int) slog.Attr {
	return slog.Int(KeyWaiters, n)
}

// Attempt 重试轮次（从 1 开始）
func Attempt(n uint) slog.Attr {
	return slog.Uint64(KeyAttempt, uint64(n))
}

// Module 部署模块名
func Module(name string) slog.Attr {
	return slog.String(KeyModule, name)
}

// Component 组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Ticket 排队号
func Ticket(n uint64) slog.Attr {
	return slog.Uint64(KeyTicket, n)
}
