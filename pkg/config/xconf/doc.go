// Package xconf 基于 koanf 的配置加载，支持默认值分层与文件热重载。
//
// # 加载顺序
//
// [WithDefaults] 提供的内置默认配置先加载，配置文件随后合并覆盖，
// 文件中缺省的键保留默认值。支持 YAML（.yaml/.yml）与 JSON（.json）。
//
// # 并发安全
//
// Reload 通过互斥锁串行执行，解析成功后原子替换 koanf 实例；
// 解析失败时保留旧配置。Client 返回的指针是快照，Reload 后指向旧数据。
//
// # 配置监视
//
// [Watch] 基于 fsnotify 监视配置文件所在目录（兼容 vim 等编辑器的 rename 写入），
// 内置防抖。ctx 取消或调用 Close 后停止，Close 返回后不再有回调执行。
// 回调内需要停止监视时应取消 ctx 而非调用 Close。
package xconf
