package xmetrics

import (
	"context"
	"time"
)

// Status 操作结果状态
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// 锁获取的结果取值，作为 outcome 属性
const (
	OutcomeAcquired = "acquired"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomeClosed   = "closed"
)

// Attr 观测属性
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 观测跨度的创建参数
type SpanOptions struct {
	Component string
	Operation string
	Attrs     []Attr
}

// Result 观测跨度结束时的结果
type Result struct {
	// Status 为空时根据 Err 推导
	Status Status
	Err    error
	// Outcome 非空时作为指标属性记录
	Outcome string
	Attrs   []Attr
}

// Span 一次观测跨度
type Span interface {
	// End 结束观测，多次调用只记录一次
	End(result Result)
}

// Observer 统一观测接口
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// WaitRecorder 可选接口：记录锁排队等待时长。
// 通过类型断言检测，未实现时忽略等待指标。
type WaitRecorder interface {
	RecordWait(ctx context.Context, outcome string, wait time.Duration)
}

// NoopObserver 空实现
type NoopObserver struct{}

// Start 返回 ctx 和空跨度，nil ctx 替换为 context.Background()
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空跨度
type NoopSpan struct{}

func (NoopSpan) End(Result) {}

// Start 使用 observer 开始观测，保证返回非 nil 的 ctx 和 Span。
// nil observer 返回 [NoopSpan]。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}

// RecordWait 在 observer 实现了 [WaitRecorder] 时记录等待时长
func RecordWait(ctx context.Context, observer Observer, outcome string, wait time.Duration) {
	wr, ok := observer.(WaitRecorder)
	if !ok {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	wr.RecordWait(ctx, outcome, wait)
}
