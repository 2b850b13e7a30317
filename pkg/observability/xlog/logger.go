package xlog

import (
	"context"
	"io"
	"log/slog"
	"time"
)

var _ LoggerWithLevel = (*xlogger)(nil)

type xlogger struct {
	handler  slog.Handler
	levelVar *slog.LevelVar
}

// FromHandler 用已有 slog.Handler 构建 Logger，级别由 handler 自行控制
func FromHandler(h slog.Handler) LoggerWithLevel {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	return &xlogger{handler: h, levelVar: levelVar}
}

// Discard 返回丢弃全部输出的 Logger，作为库代码的默认值
func Discard() Logger {
	return discardLogger
}

var discardLogger = &xlogger{
	handler:  slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}),
	levelVar: new(slog.LevelVar),
}

func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if slog.Level(l.GetLevel()) > level || !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(attrs...)
	// 日志写失败不向业务扩散
	_ = l.handler.Handle(ctx, r) //nolint:errcheck // best-effort
}

func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{handler: l.handler.WithAttrs(attrs), levelVar: l.levelVar}
}

func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return slog.Level(level) >= l.levelVar.Level() && l.handler.Enabled(ctx, slog.Level(level))
}
