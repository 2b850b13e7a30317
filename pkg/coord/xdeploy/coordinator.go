package xdeploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v5"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xcoord/pkg/context/xctx"
	"github.com/omeyang/xcoord/pkg/coord/xreslock"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
)

//go:generate mockgen -destination=mock_locker_test.go -package=xdeploy github.com/omeyang/xcoord/pkg/coord/xreslock Locker

// Step 持有模块锁期间执行的部署步骤
type Step func(ctx context.Context) error

// ResourceKey 返回租户模块对应的资源名，不做任何规范化
func ResourceKey(tenantID, module string) string {
	return "deploy/" + tenantID + "/" + module
}

// Coordinator 按 (租户, 模块) 串行化部署步骤。可并发使用。
type Coordinator struct {
	locker      xreslock.Locker
	lockTimeout time.Duration
	attempts    uint
	backoff     time.Duration
	log         xlog.Logger
}

// New 创建 Coordinator
func New(locker xreslock.Locker, opts ...Option) (*Coordinator, error) {
	if locker == nil {
		return nil, xreslock.ErrNilLocker
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Coordinator{
		locker:      locker,
		lockTimeout: o.lockTimeout,
		attempts:    o.attempts,
		backoff:     o.backoff,
		log:         o.logger.With(xlog.Component("xdeploy")),
	}, nil
}

// Run 持有 ctx 租户下 module 的锁执行 step。
//
// 只有获取超时会重试；step 一旦执行，无论成败都不再重试。
// 重试用尽返回包装了最后一次 [xreslock.ErrTimeout] 的 [ErrBusy]。
func (c *Coordinator) Run(ctx context.Context, module string, step Step) error {
	if ctx == nil {
		return xreslock.ErrNilContext
	}
	if step == nil {
		return xreslock.ErrNilFunc
	}
	if module == "" {
		return ErrEmptyModule
	}
	tenant := xctx.TenantID(ctx)
	if tenant == "" {
		return ErrMissingTenant
	}

	key := ResourceKey(tenant, module)
	log := c.log.With(xlog.Resource(key), xlog.Module(module))

	// 单次 Do 内各次尝试顺序执行，stepRan 无需同步
	var stepRan bool
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.backoff),
		retry.MaxDelay(maxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !stepRan && errors.Is(err, xreslock.ErrTimeout)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug(ctx, "module busy, retrying", xlog.Attempt(n+1), xlog.Err(err))
		}),
	).Do(func() error {
		return xreslock.WithLock(ctx, c.locker, key, c.lockTimeout, func(ctx context.Context) error {
			stepRan = true
			return step(ctx)
		})
	})

	switch {
	case err == nil:
		return nil
	case !stepRan && errors.Is(err, xreslock.ErrTimeout):
		log.Warn(ctx, "module busy, giving up", xlog.Attempt(c.attempts), xlog.Timeout(c.lockTimeout))
		return fmt.Errorf("%w: %s after %d attempts: %w", ErrBusy, key, c.attempts, err)
	default:
		return err
	}
}

// RunAll 并发地对每个模块执行 step，任一失败会取消其余仍在等待的模块。
// modules 不能重复：同一模块的步骤本就会被串行化，并发提交没有意义。
func (c *Coordinator) RunAll(ctx context.Context, modules []string,
	step func(ctx context.Context, module string) error) error {
	if ctx == nil {
		return xreslock.ErrNilContext
	}
	if step == nil {
		return xreslock.ErrNilFunc
	}
	seen := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if _, ok := seen[m]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateModule, m)
		}
		seen[m] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range modules {
		g.Go(func() error {
			return c.Run(gctx, m, func(ctx context.Context) error {
				return step(ctx, m)
			})
		})
	}
	return g.Wait()
}
