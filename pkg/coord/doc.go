// Package coord 提供进程内的协调原语。
//
// 子包列表：
//   - xreslock: 按资源名互斥的 FIFO 锁表，带持有者 token 与有界等待
//   - xdeploy: 在 xreslock 之上按 (租户, 模块) 串行化部署步骤
package coord
