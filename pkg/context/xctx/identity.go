package xctx

import "context"

// Identity 日志属性 Key
const (
	KeyTenantID  = "tenant_id"
	KeyWebsiteID = "website_id"

	identityFieldCount = 2
)

const (
	keyTenantID  = contextKey("xctx:tenant_id")
	keyWebsiteID = contextKey("xctx:website_id")
)

// WithTenantID 将 tenant ID 注入 context
//
// 设计决策: 返回 error 而非 panic，唯一错误条件是 nil ctx，
// 保持所有 WithXxx 签名一致，便于中间件链统一处理。
func WithTenantID(ctx context.Context, tenantID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyTenantID, tenantID), nil
}

// TenantID 从 context 提取 tenant ID，不存在返回空字符串
func TenantID(ctx context.Context) string {
	return stringValue(ctx, keyTenantID)
}

// RequireTenantID 从 context 获取 tenant ID，缺失时返回 ErrMissingTenantID。
func RequireTenantID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := TenantID(ctx)
	if v == "" {
		return "", ErrMissingTenantID
	}
	return v, nil
}

// WithWebsiteID 将 website ID 注入 context
func WithWebsiteID(ctx context.Context, websiteID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyWebsiteID, websiteID), nil
}

// WebsiteID 从 context 提取 website ID，不存在返回空字符串
func WebsiteID(ctx context.Context) string {
	return stringValue(ctx, keyWebsiteID)
}

// RequireWebsiteID 从 context 获取 website ID，缺失时返回 ErrMissingWebsiteID。
func RequireWebsiteID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := WebsiteID(ctx)
	if v == "" {
		return "", ErrMissingWebsiteID
	}
	return v, nil
}
