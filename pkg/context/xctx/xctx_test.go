package xctx_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xcoord/pkg/context/xctx"
)

func TestIdentityRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.WithTenantID(context.Background(), "acme")
	require.NoError(t, err)
	ctx, err = xctx.WithWebsiteID(ctx, "site-42")
	require.NoError(t, err)

	assert.Equal(t, "acme", xctx.TenantID(ctx))
	assert.Equal(t, "site-42", xctx.WebsiteID(ctx))

	v, err := xctx.RequireTenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", v)
}

func TestRequireMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := xctx.RequireTenantID(ctx)
	assert.ErrorIs(t, err, xctx.ErrMissingTenantID)
	_, err = xctx.RequireWebsiteID(ctx)
	assert.ErrorIs(t, err, xctx.ErrMissingWebsiteID)
	_, err = xctx.RequireTraceID(ctx)
	assert.ErrorIs(t, err, xctx.ErrMissingTraceID)
	_, err = xctx.RequireRequestID(ctx)
	assert.ErrorIs(t, err, xctx.ErrMissingRequestID)
}

func TestNilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // 测试 nil ctx 行为
	_, err := xctx.WithTenantID(nil, "acme")
	assert.ErrorIs(t, err, xctx.ErrNilContext)
	//nolint:staticcheck // 测试 nil ctx 行为
	assert.Empty(t, xctx.TenantID(nil))
	//nolint:staticcheck // 测试 nil ctx 行为
	assert.Nil(t, xctx.Attrs(nil))
}

func TestContextIsolation(t *testing.T) {
	t.Parallel()

	parent, err := xctx.WithTenantID(context.Background(), "parent")
	require.NoError(t, err)
	child, err := xctx.WithTenantID(parent, "child")
	require.NoError(t, err)

	assert.Equal(t, "parent", xctx.TenantID(parent))
	assert.Equal(t, "child", xctx.TenantID(child))
}

func TestEnsureIDs(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.EnsureTraceID(context.Background())
	require.NoError(t, err)
	traceID := xctx.TraceID(ctx)
	assert.Len(t, traceID, 2*xctx.TraceIDSize)

	// 已存在时不覆盖
	ctx, err = xctx.EnsureTraceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, traceID, xctx.TraceID(ctx))

	ctx, err = xctx.EnsureRequestID(ctx)
	require.NoError(t, err)
	assert.Len(t, xctx.RequestID(ctx), 2*xctx.SpanIDSize)
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Nil(t, xctx.Attrs(context.Background()))

	ctx, _ := xctx.WithTraceID(context.Background(), "trace")
	ctx, _ = xctx.WithTenantID(ctx, "acme")

	attrs := xctx.Attrs(ctx)
	require.Len(t, attrs, 2)
	assert.Equal(t, xctx.KeyTraceID, attrs[0].Key)
	assert.Equal(t, "trace", attrs[0].Value.String())
	assert.Equal(t, xctx.KeyTenantID, attrs[1].Key)
	assert.Equal(t, slog.KindString, attrs[1].Value.Kind())
	assert.Equal(t, "acme", attrs[1].Value.String())
}

func TestGeneratedIDsDiffer(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for range 100 {
		id := xctx.GenerateSpanID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate span id %s", id)
		seen[id] = struct{}{}
	}
}
