// Package xmetrics 提供统一的可观测性接口（metrics + tracing）。
//
// 业务代码只依赖 [Observer]/[Span]，默认实现基于 OpenTelemetry。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xreslock",
//		Operation: "acquire",
//	})
//	defer span.End(xmetrics.Result{Outcome: xmetrics.OutcomeAcquired})
//
// # 指标命名
//
//   - xcoord.operation.total：操作次数
//   - xcoord.operation.duration：操作耗时（秒）
//   - xcoord.lock.wait：锁排队等待时长（秒），仅由实现了 [WaitRecorder] 的 Observer 记录
//
// 统一属性：component / operation / status，获取类操作额外带 outcome。
// 资源名不作为指标属性，避免基数膨胀，只记录在 span 上。
package xmetrics
