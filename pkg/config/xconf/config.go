package xconf

import "github.com/knadh/koanf/v2"

// Format 配置文件格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 配置接口。基础读取直接使用 Client 返回的 koanf 实例。
type Config interface {
	// Client 返回当前 koanf 实例快照
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化整个配置
	Unmarshal(path string, target any) error

	// Reload 重新读取配置文件，仅对 New 创建的 Config 有效
	Reload() error

	// Path 返回配置文件路径，NewFromBytes 创建时为空
	Path() string

	Format() Format
}
