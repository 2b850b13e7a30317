// Package xlog 基于 log/slog 的结构化日志。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString(cfg.Level).
//		SetFormat(cfg.Format).
//		SetRotation(cfg.Rotate).
//		Build()
//	defer cleanup()
//
// 默认启用 [EnrichHandler]，自动从 context 注入 xctx 中的 trace_id、tenant_id 等字段。
//
// # 锁协调字段
//
// attrs.go 定义锁协调场景的标准字段（resource、outcome、wait 等），
// 锁表与部署协调器统一使用这些构造函数，保证日志可按字段检索。
//
// # 全局 Logger
//
// [Default] 和 [SetDefault] 适用于命令行工具，库代码应通过选项注入 Logger。
// 未注入时使用 [Discard]。
package xlog
