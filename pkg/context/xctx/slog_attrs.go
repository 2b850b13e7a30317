package xctx

import (
	"context"
	"log/slog"
)

// AppendIdentityAttrs 将 context 中的身份信息追加到 attrs，只追加非空字段。
// 传入预分配切片可避免热路径分配。
func AppendIdentityAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := TenantID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTenantID, v))
	}
	if v := WebsiteID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyWebsiteID, v))
	}
	return attrs
}

// AppendTraceAttrs 将 context 中的追踪信息追加到 attrs，只追加非空字段。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRequestID, v))
	}
	return attrs
}

// MaxAttrs 是 Attrs 可能返回的最大属性数量，供调用方预分配栈数组。
const MaxAttrs = identityFieldCount + traceFieldCount

// Attrs 返回 context 中全部非空的追踪与身份属性，都为空时返回 nil。
// 注意：每次调用会分配新切片，热路径建议使用 Append 系列函数。
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]slog.Attr, 0, MaxAttrs)
	attrs = AppendTraceAttrs(attrs, ctx)
	attrs = AppendIdentityAttrs(attrs, ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
