// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 协调操作的指标与追踪接口，默认实现基于 OpenTelemetry
//   - xrotate: 日志文件轮转
//
// 日志自动从 context 中提取租户与追踪信息；锁表不依赖具体实现，
// 未配置时使用 Discard 日志与 Noop Observer。
package observability
