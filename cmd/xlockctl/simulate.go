package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/omeyang/xcoord/pkg/coord/xreslock"
	"github.com/omeyang/xcoord/pkg/lifecycle/xrun"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
)

var (
	errSimulationDone = errors.New("xlockctl: simulation finished")

	// errExclusion 同一资源出现了两个同时持有者
	errExclusion = errors.New("xlockctl: mutual exclusion violated")
)

type simulateParams struct {
	workers   int
	resources int
	duration  time.Duration
	hold      time.Duration
	timeout   time.Duration
	report    time.Duration
}

func (p simulateParams) validate() error {
	switch {
	case p.workers <= 0:
		return &usageError{msg: "--workers must be positive"}
	case p.resources <= 0:
		return &usageError{msg: "--resources must be positive"}
	case p.duration <= 0:
		return &usageError{msg: "--duration must be positive"}
	case p.hold < 0:
		return &usageError{msg: "--hold must not be negative"}
	case p.report <= 0:
		return &usageError{msg: "--report must be positive"}
	}
	return nil
}

type simulateReport struct {
	outcomes map[string]int64
	held     int64
	leftover int
	elapsed  time.Duration
}

func (r simulateReport) print(w io.Writer) {
	fmt.Fprintf(w, "elapsed:   %s\n", r.elapsed.Round(time.Millisecond))
	for _, outcome := range []string{
		xmetrics.OutcomeAcquired, xmetrics.OutcomeTimeout,
		xmetrics.OutcomeCanceled, xmetrics.OutcomeClosed,
	} {
		fmt.Fprintf(w, "%-10s %d\n", outcome+":", r.outcomes[outcome])
	}
	fmt.Fprintf(w, "released:  %d\n", r.held)
	fmt.Fprintf(w, "leftover:  %d\n", r.leftover)
}

func resourceName(i int) string {
	return "res-" + strconv.Itoa(i)
}

// runSimulate 让 workers 个 worker 在 resources 个资源上反复获取、持有、释放，
// 同时校验任一时刻每个资源至多一个持有者。
func runSimulate(ctx context.Context, e *env, p simulateParams) (simulateReport, error) {
	tbl, err := e.newTable()
	if err != nil {
		return simulateReport{}, err
	}

	watcher, err := e.watchLogLevel(ctx)
	if err != nil {
		return simulateReport{}, errors.Join(err, tbl.Close())
	}
	if watcher != nil {
		defer func() { _ = watcher.Close() }() //nolint:errcheck // 退出路径
	}

	holders := make([]atomic.Int32, p.resources)
	var released atomic.Int64

	worker := func(ctx context.Context) error {
		for ctx.Err() == nil {
			i := rand.IntN(p.resources)
			h, err := tbl.Acquire(ctx, resourceName(i), p.timeout)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if h == nil {
				continue
			}

			if holders[i].Add(1) != 1 {
				return fmt.Errorf("%w: %s", errExclusion, h.Resource())
			}
			if p.hold > 0 {
				time.Sleep(p.hold)
			}
			holders[i].Add(-1)
			if err := h.Release(); err != nil {
				return err
			}
			released.Add(1)
		}
		return nil
	}

	report := xrun.Ticker(p.report, false, func(ctx context.Context) error {
		for _, r := range tbl.Resources() {
			st, ok := tbl.Stat(r)
			if !ok {
				continue
			}
			attrs := []slog.Attr{xlog.Resource(r), xlog.Waiters(st.Waiters)}
			if st.Held {
				attrs = append(attrs, xlog.Held(time.Since(st.Since)))
			}
			e.logger.Info(ctx, "queue", attrs...)
		}
		return nil
	})

	stop := func(ctx context.Context) error {
		timer := time.NewTimer(p.duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			return errSimulationDone
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	tasks := make([]func(context.Context) error, 0, p.workers+2)
	tasks = append(tasks, stop, report)
	for range p.workers {
		tasks = append(tasks, worker)
	}

	start := time.Now()
	err = xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(e.logger), xrun.WithName("simulate")}, tasks...)
	elapsed := time.Since(start)
	leftover := tbl.Len()
	if cerr := tbl.Close(); cerr != nil && !errors.Is(cerr, xreslock.ErrClosed) {
		err = errors.Join(err, cerr)
	}
	if err != nil && !errors.Is(err, errSimulationDone) {
		return simulateReport{}, err
	}

	outcomes, err := e.tel.outcomeCounts(context.WithoutCancel(ctx))
	if err != nil {
		return simulateReport{}, err
	}
	e.logger.Info(ctx, "simulation finished",
		slog.Int64("acquired", outcomes[xmetrics.OutcomeAcquired]),
		slog.Int64("timeout", outcomes[xmetrics.OutcomeTimeout]),
	)
	return simulateReport{
		outcomes: outcomes,
		held:     released.Load(),
		leftover: leftover,
		elapsed:  elapsed,
	}, nil
}
