// Package xrotate 提供日志文件轮转，作为 xlog 的文件输出目标。
//
// [Rotator] 隐式实现 io.WriteCloser，额外提供 Rotate 手动触发轮转。
// 当前实现 [NewLumberjack] 基于 lumberjack v2，按文件大小轮转，
// 可通过 [Config] 从配置文件直接构建（见 [FromConfig]）。
package xrotate
