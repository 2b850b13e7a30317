// Package xrun 基于 errgroup + context 的进程生命周期管理。
//
// 任一任务返回错误或收到终止信号时，共享的 context 被取消，
// 所有任务应监听 ctx.Done() 并退出。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{
//		xrun.WithName("xlockctl"),
//		xrun.WithLogger(logger),
//	}, simulate, xrun.Ticker(time.Second, false, report))
//	if errors.Is(err, xrun.ErrSignal) {
//		// 信号退出
//	}
//
// [Group.Wait] 会保留 [Group.Cancel] 设置的退出原因，信号退出返回 *[SignalError]。
package xrun
