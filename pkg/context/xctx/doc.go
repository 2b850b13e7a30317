// Package xctx 提供轻量级的请求上下文存取。
//
// 多租户内容管理后端中，一次操作通常归属于某个租户（tenant）及其站点（website），
// 并携带追踪标识。xctx 负责把这些值写入/读出 context，并为日志系统提供属性提取。
//
// # 字段
//
// 身份信息（Identity）：
//   - tenant_id  : 租户标识
//   - website_id : 站点标识
//
// 追踪信息（Trace）：
//   - trace_id   : 追踪标识（W3C 规范，128-bit）
//   - span_id    : 跨度标识（W3C 规范，64-bit）
//   - request_id : 请求标识
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：缺失时返回零值
//	RequireXxx(ctx)        - 强制读取：缺失时返回错误
//	EnsureXxx(ctx)         - 确保存在：已存在则原样返回，否则自动生成
//
// # 校验策略
//
// xctx 是纯存取层，不对值做格式校验。资源锁的 key 由调用方显式拼接，
// xctx 也不做任何归一化。
package xctx
