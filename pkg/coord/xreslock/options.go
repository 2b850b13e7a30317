package xreslock

import (
	"fmt"

	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

const (
	defaultShardCount = 32
	maxShardCount     = 1 << 16
)

// Option Table 配置选项
type Option func(*options)

type options struct {
	shardCount   int
	maxResources int
	logger       xlog.Logger
	observer     xmetrics.Observer
}

func defaultOptions() options {
	return options{
		shardCount: defaultShardCount,
		logger:     xlog.Discard(),
		observer:   xmetrics.NoopObserver{},
	}
}

// WithShardCount 设置分片数，必须是 2 的幂且不超过 65536，默认 32
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithMaxResources 限制同时跟踪的资源数（持有或等待中），n <= 0 表示不限制
func WithMaxResources(n int) Option {
	n = max(n, 0)
	return func(o *options) {
		o.maxResources = n
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

// WithObserver 设置观测器，nil 忽略
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

func (o *options) validate() error {
	sc := o.shardCount
	if sc <= 0 || sc > maxShardCount || sc&(sc-1) != 0 {
		return fmt.Errorf("%w: must be a power of 2 in [1, %d], got %d",
			ErrInvalidShardCount, maxShardCount, sc)
	}
	return nil
}
