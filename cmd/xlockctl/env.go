package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcoord/pkg/config/xconf"
	"github.com/omeyang/xcoord/pkg/coord/xreslock"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
)

// env 一次命令执行所需的运行时依赖
type env struct {
	cfg    xconf.Config
	conf   appConfig
	logger xlog.LoggerWithLevel
	tel    *telemetry
	out    io.Writer

	closeLog func() error
}

func outputOf(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func errOutputOf(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

// newEnv 加载配置并构建日志与遥测，调用方负责 close
func newEnv(cmd *cli.Command) (*env, error) {
	cfg, conf, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		if _, err := xlog.ParseLevel(lvl); err != nil {
			return nil, &usageError{msg: err.Error()}
		}
		conf.Log.Level = lvl
	}
	if cmd.Bool("stdout-traces") {
		conf.Telemetry.StdoutTraces = true
	}

	out := outputOf(cmd)
	logger, closeLog, err := xlog.New().
		SetOutput(errOutputOf(cmd)).
		SetLevelString(conf.Log.Level).
		SetFormat(conf.Log.Format).
		SetEnrich(true).
		SetRotation(conf.Log.Rotation).
		Build()
	if err != nil {
		return nil, err
	}

	tel, err := newTelemetry(conf.Telemetry.StdoutTraces, out)
	if err != nil {
		return nil, errors.Join(err, closeLog())
	}
	return &env{cfg: cfg, conf: conf, logger: logger, tel: tel, out: out, closeLog: closeLog}, nil
}

// newTable 按配置创建锁表
func (e *env) newTable() (*xreslock.Table, error) {
	return xreslock.New(
		xreslock.WithShardCount(e.conf.Lock.ShardCount),
		xreslock.WithMaxResources(e.conf.Lock.MaxResources),
		xreslock.WithLogger(e.logger),
		xreslock.WithObserver(e.tel.observer),
	)
}

// watchLogLevel 配置文件变更时更新日志级别，无配置文件时不监视
func (e *env) watchLogLevel(ctx context.Context) (*xconf.Watcher, error) {
	if e.cfg.Path() == "" {
		return nil, nil
	}
	return xconf.Watch(ctx, e.cfg, func(cfg xconf.Config, err error) {
		if err != nil {
			e.logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		level, err := xlog.ParseLevel(cfg.Client().String("log.level"))
		if err != nil {
			e.logger.Warn(ctx, "config reload: bad log level", xlog.Err(err))
			return
		}
		if level != e.logger.GetLevel() {
			e.logger.SetLevel(level)
			e.logger.Info(ctx, "log level changed", slog.String("level", level.String()))
		}
	})
}

func (e *env) close(ctx context.Context) error {
	return errors.Join(e.tel.shutdown(ctx), e.closeLog())
}
