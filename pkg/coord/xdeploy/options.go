package xdeploy

import (
	"time"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
)

const (
	defaultLockTimeout = 5 * time.Second
	defaultAttempts    = 3
	defaultBackoff     = 200 * time.Millisecond
	maxBackoff         = 10 * time.Second
)

// Option Coordinator 配置选项
type Option func(*options)

type options struct {
	lockTimeout time.Duration
	attempts    uint
	backoff     time.Duration
	logger      xlog.Logger
}

func defaultOptions() options {
	return options{
		lockTimeout: defaultLockTimeout,
		attempts:    defaultAttempts,
		backoff:     defaultBackoff,
		logger:      xlog.Discard(),
	}
}

// WithLockTimeout 单次获取的等待上限，默认 5s。
// 0 表示只尝试一次不等待，负数忽略。
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.lockTimeout = d
		}
	}
}

// WithAttempts 获取超时时的总尝试次数（含首次），默认 3，0 忽略
func WithAttempts(n uint) Option {
	return func(o *options) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// WithBackoff 重试的初始退避，之后按指数增长，上限 10s。默认 200ms，负数忽略。
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.backoff = d
		}
	}
}

// WithLogger 设置日志，nil 忽略
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
