package organization

import "context"

type contextKey string

const tenantKey contextKey = "tenant_context"

// WithTenant stores the resolved tenant context on the request context.
func WithTenant(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantKey, tc)
}

// TenantFromContext returns the resolved tenant context, nil when the
// request has no organization scope.
func TenantFromContext(ctx context.Context) *TenantContext {
	if tc, ok := ctx.Value(tenantKey).(*TenantContext); ok {
		return tc
	}
	return nil
}
