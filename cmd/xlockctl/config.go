package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"

	"github.com/omeyang/xcoord/pkg/config/xconf"
	"github.com/omeyang/xcoord/pkg/observability/xrotate"
)

// defaultConfigYAML 内置默认配置，配置文件中的同名键覆盖这里的值
var defaultConfigYAML = []byte(`
lock:
  shard_count: 32
  max_resources: 0
  default_timeout: 2s
deploy:
  attempts: 3
  backoff: 200ms
log:
  level: info
  format: text
  file: ""
  max_size_mb: 100
  max_backups: 5
  max_age_days: 7
  compress: false
  local_time: true
telemetry:
  stdout_traces: false
`)

type lockConfig struct {
	ShardCount     int           `koanf:"shard_count"`
	MaxResources   int           `koanf:"max_resources"`
	DefaultTimeout time.Duration `koanf:"default_timeout"`
}

type deployConfig struct {
	Attempts uint          `koanf:"attempts"`
	Backoff  time.Duration `koanf:"backoff"`
}

type logConfig struct {
	Level    string         `koanf:"level"`
	Format   string         `koanf:"format"`
	Rotation xrotate.Config `koanf:",squash"`
}

type telemetryConfig struct {
	StdoutTraces bool `koanf:"stdout_traces"`
}

// appConfig xlockctl 的完整配置
type appConfig struct {
	Lock      lockConfig      `koanf:"lock"`
	Deploy    deployConfig    `koanf:"deploy"`
	Log       logConfig       `koanf:"log"`
	Telemetry telemetryConfig `koanf:"telemetry"`
}

var errInvalidConfig = errors.New("xlockctl: invalid config")

func (c *appConfig) validate() error {
	switch {
	case c.Lock.DefaultTimeout < 0:
		return fmt.Errorf("%w: lock.default_timeout must not be negative", errInvalidConfig)
	case c.Deploy.Attempts == 0:
		return fmt.Errorf("%w: deploy.attempts must be positive", errInvalidConfig)
	case c.Deploy.Backoff < 0:
		return fmt.Errorf("%w: deploy.backoff must not be negative", errInvalidConfig)
	case c.Log.Format != "text" && c.Log.Format != "json":
		return fmt.Errorf("%w: log.format %q", errInvalidConfig, c.Log.Format)
	}
	return nil
}

// loadConfig 加载配置，path 为空时只使用内置默认值
func loadConfig(path string) (xconf.Config, appConfig, error) {
	var (
		cfg xconf.Config
		err error
	)
	defaults := xconf.WithDefaults(defaultConfigYAML, xconf.FormatYAML)
	if path == "" {
		cfg, err = xconf.NewFromBytes(nil, xconf.FormatYAML, defaults)
	} else {
		cfg, err = xconf.New(path, defaults)
	}
	if err != nil {
		return nil, appConfig{}, err
	}

	conf, err := decodeConfig(cfg)
	if err != nil {
		return nil, appConfig{}, err
	}
	return cfg, conf, nil
}

func decodeConfig(cfg xconf.Config) (appConfig, error) {
	var conf appConfig
	if err := cfg.Unmarshal("", &conf); err != nil {
		return appConfig{}, err
	}
	if err := conf.validate(); err != nil {
		return appConfig{}, err
	}
	return conf, nil
}

// marshalConfig 按 format 输出生效配置
func marshalConfig(cfg xconf.Config, format string) ([]byte, error) {
	switch format {
	case "", "yaml":
		return cfg.Client().Marshal(yaml.Parser())
	case "json":
		return cfg.Client().Marshal(json.Parser())
	default:
		return nil, &usageError{msg: fmt.Sprintf("unknown output format %q", format)}
	}
}
