// Package xdeploy 在资源锁之上串行化同一租户同一模块的部署步骤。
//
// 资源名由 [ResourceKey] 生成，形如 "deploy/<tenant>/<module>"，租户取自
// xctx.TenantID。不同模块或不同租户的步骤互不阻塞，同一模块的步骤按锁表的
// FIFO 顺序依次执行。
//
// 重试由调用方负责：锁表只做一次有界等待，[Coordinator] 在等待超时
// (xreslock.ErrTimeout) 时按指数退避重试，步骤自身的错误和 ctx 取消从不重试。
// 重试用尽返回 [ErrBusy]，并保留最后一次超时错误：
//
//	err := c.Run(ctx, "billing", step)
//	if errors.Is(err, xdeploy.ErrBusy) {
//	    // 模块正被其他部署占用
//	}
package xdeploy
