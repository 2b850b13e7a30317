package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/omeyang/xcoord/pkg/context/xctx"
	"github.com/omeyang/xcoord/pkg/coord/xdeploy"
	"github.com/omeyang/xcoord/pkg/lifecycle/xrun"
)

var errStepFailed = errors.New("xlockctl: deploy step failed")

type deployParams struct {
	tenant  string
	modules []string
	rounds  int
	step    time.Duration
	fail    string
}

func (p deployParams) validate() error {
	switch {
	case p.tenant == "":
		return &usageError{msg: "--tenant is required"}
	case len(p.modules) == 0:
		return &usageError{msg: "at least one module is required"}
	case p.rounds <= 0:
		return &usageError{msg: "--rounds must be positive"}
	case p.step < 0:
		return &usageError{msg: "--step must not be negative"}
	}
	return nil
}

// runDeploy 并发提交 rounds 轮部署，同一模块的步骤由锁表串行化，
// 不同模块之间并行。
func runDeploy(ctx context.Context, e *env, p deployParams) error {
	tbl, err := e.newTable()
	if err != nil {
		return err
	}
	defer func() { _ = tbl.Close() }() //nolint:errcheck // 退出路径

	coord, err := xdeploy.New(tbl,
		xdeploy.WithLockTimeout(e.conf.Lock.DefaultTimeout),
		xdeploy.WithAttempts(e.conf.Deploy.Attempts),
		xdeploy.WithBackoff(e.conf.Deploy.Backoff),
		xdeploy.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}

	ctx, err = xctx.WithTenantID(ctx, p.tenant)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	if ctx, err = xctx.EnsureTraceID(ctx); err != nil {
		return err
	}

	var outMu sync.Mutex
	printf := func(format string, args ...any) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(e.out, format, args...)
	}

	tasks := make([]func(context.Context) error, 0, p.rounds)
	for round := 1; round <= p.rounds; round++ {
		tasks = append(tasks, func(ctx context.Context) error {
			return coord.RunAll(ctx, p.modules, func(ctx context.Context, module string) error {
				if module == p.fail {
					return fmt.Errorf("%w: round %d module %s", errStepFailed, round, module)
				}
				select {
				case <-time.After(p.step):
				case <-ctx.Done():
					return ctx.Err()
				}
				printf("round %d: %s/%s deployed\n", round, p.tenant, module)
				return nil
			})
		})
	}
	return xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(e.logger), xrun.WithName("deploy")}, tasks...)
}
