// Package context 提供请求上下文相关的子包。
//
// 子包列表：
//   - xctx: 在 context 中注入/提取租户与追踪标识，并转换为 slog 属性
//
// 所有上下文信息通过 context.Context 传递，不使用全局变量。
package context
