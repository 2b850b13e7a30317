package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

func createCommands() []*cli.Command {
	return []*cli.Command{
		createSimulateCommand(),
		createDeployCommand(),
		createConfigCommand(),
	}
}

func createSimulateCommand() *cli.Command {
	return &cli.Command{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Usage:   "多个 worker 竞争资源锁",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "并发 worker 数", Value: 16},
			&cli.IntFlag{Name: "resources", Aliases: []string{"r"}, Usage: "资源数", Value: 4},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "运行时长", Value: 5 * time.Second},
			&cli.DurationFlag{Name: "hold", Usage: "每次持有时长", Value: 5 * time.Millisecond},
			&cli.DurationFlag{Name: "timeout", Usage: "获取等待上限，默认取 lock.default_timeout"},
			&cli.DurationFlag{Name: "report", Usage: "队列状态打印间隔", Value: time.Second},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p := simulateParams{
				workers:   cmd.Int("workers"),
				resources: cmd.Int("resources"),
				duration:  cmd.Duration("duration"),
				hold:      cmd.Duration("hold"),
				report:    cmd.Duration("report"),
			}
			if err := p.validate(); err != nil {
				return err
			}
			return withEnv(ctx, cmd, func(ctx context.Context, e *env) error {
				p.timeout = e.conf.Lock.DefaultTimeout
				if cmd.IsSet("timeout") {
					p.timeout = cmd.Duration("timeout")
				}
				rep, err := runSimulate(ctx, e, p)
				if err != nil {
					return err
				}
				rep.print(e.out)
				return nil
			})
		},
	}
}

func createDeployCommand() *cli.Command {
	return &cli.Command{
		Name:      "deploy",
		Usage:     "按租户模块串行化部署步骤",
		ArgsUsage: "<module> [module...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tenant", Aliases: []string{"t"}, Usage: "租户 ID"},
			&cli.IntFlag{Name: "rounds", Usage: "并发提交的部署轮数", Value: 2},
			&cli.DurationFlag{Name: "step", Usage: "每个部署步骤耗时", Value: 50 * time.Millisecond},
			&cli.StringFlag{Name: "fail", Usage: "让该模块的部署步骤失败"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p := deployParams{
				tenant:  cmd.String("tenant"),
				modules: cmd.Args().Slice(),
				rounds:  cmd.Int("rounds"),
				step:    cmd.Duration("step"),
				fail:    cmd.String("fail"),
			}
			if err := p.validate(); err != nil {
				return err
			}
			return withEnv(ctx, cmd, func(ctx context.Context, e *env) error {
				return runDeploy(ctx, e, p)
			})
		},
	}
}

func createConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "打印生效配置",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "输出格式 (yaml/json)", Value: "yaml"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			data, err := marshalConfig(cfg, cmd.String("format"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(outputOf(cmd), string(data))
			return err
		},
	}
}

// withEnv 构建 env 执行 fn，结束后刷出遥测并关闭日志
func withEnv(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, e *env) error) (err error) {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if cerr := e.close(shutdownCtx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, e)
}
