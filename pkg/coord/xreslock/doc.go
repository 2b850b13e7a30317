// Package xreslock 提供按资源名互斥的进程内锁表，用于串行化针对同一资源的协调操作
// （例如同一时刻只允许一个部署操作某个模块）。
//
// # 语义
//
//   - 互斥：任一时刻每个资源至多一个持有者（owner token）
//   - 快路径：资源空闲时直接授予，不排队
//   - FIFO：资源被占用时调用方进入该资源的等待队列，按入队顺序授予
//   - 定向唤醒：释放时只唤醒队首的一个等待者（关闭其 ready channel），不广播
//   - 超时从入队时刻开始计时；timeout 为 0 表示只尝试一次
//   - 超时返回 (nil, nil)，取消返回 ctx.Err()，两者不会混淆
//   - 资源之间完全独立：分片 map 只保护查找，每个资源有自己的互斥量
//
// # 结果竞争
//
// 每个等待者的 claimed 标志只能被授予、超时、取消（或 Close）之一置位：
//
//	竞争                 胜者          结果
//	──────────────────────────────────────────────────────
//	授予 vs 超时         超时          (nil, nil)
//	                     授予          返回 Handle（尊重授予）
//	授予 vs 取消         取消          (nil, ctx.Err())
//	                     授予          立即释放并交给下一个等待者，返回 (nil, ctx.Err())
//	授予 vs Close        同取消，错误为 ErrClosed
//
// 已自行结束但尚未出队的等待者（ghost）在释放路径上被跳过。
//
// # 释放
//
// [Handle.Release] 幂等：首次调用释放锁，后续调用返回 nil 且无副作用。
// [Table.Release] 对不匹配的 token（过期或伪造）静默忽略，只记录 Warn 日志。
// [WithLock] 提供作用域获取，函数返回、出错或 panic 时都会释放。
//
// # 后端抽象
//
// 调用方依赖 [Locker] 接口，[Table] 是其内存实现。其他后端（如网络协调存储）
// 只需实现 Acquire/Release 并通过 [NewHandle] 构造 Handle。
package xreslock
