// xlockctl 是资源锁表的命令行演示与压测工具。
//
// 用法:
//
//	xlockctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config         配置文件路径（yaml/json），为空时使用内置默认值
//	-l, --log-level      覆盖 log.level
//	    --stdout-traces  把 trace 输出到 stdout，覆盖 telemetry.stdout_traces
//
// 命令:
//
//	simulate     多个 worker 竞争少量资源，周期性打印队列状态，结束时汇总结果
//	deploy       按租户模块串行化部署步骤（xdeploy）
//	config       打印生效配置
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误
//	130: 收到中断信号
//
// 示例:
//
//	xlockctl simulate --workers 32 --resources 4 --duration 10s
//	xlockctl -c xlockctl.yaml deploy --tenant t1 --rounds 3 billing search
//	xlockctl config --format json
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcoord/pkg/lifecycle/xrun"
)

// 版本信息（可通过 -ldflags 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// usageError 参数错误，对应退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func main() {
	os.Exit(run(context.Background(), os.Args))
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xlockctl",
		Usage:   "资源锁表演示与压测工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（yaml/json）",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "日志级别 (debug/info/warn/error)，覆盖配置文件",
			},
			&cli.BoolFlag{
				Name:  "stdout-traces",
				Usage: "把 trace 输出到 stdout，覆盖配置文件",
			},
		},
		Commands: createCommands(),
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，退出码统一由 run 映射。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string) int {
	return exitCode(createApp().Run(ctx, args))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if errors.Is(err, xrun.ErrSignal) {
		return 130
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}
