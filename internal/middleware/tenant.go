package middleware

import (
	"context"
	"net/http"

	"schoolhub-backend/internal/repository"
)

type contextKey string

const (
	tenantContextKey contextKey = "tenantID"
	actorContextKey  contextKey = "actorID"

	// HeaderTenantID carries the caller's tenant, set by the edge gateway.
	HeaderTenantID = "X-Tenant-ID"
	// HeaderActorID carries the authenticated principal performing the call.
	HeaderActorID = "X-Actor-ID"
)

// TenantContext extracts the tenant and actor headers and stashes them on
// the request context. Requests without a tenant are rejected before they
// reach a handler; every store key is tenant-scoped so there is nothing a
// tenantless request could do.
func TenantContext() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(HeaderTenantID)
			if tenantID == "" {
				http.Error(w, `{"code":"VALIDATION_FAILED","message":"missing `+HeaderTenantID+` header"}`, http.StatusBadRequest)
				return
			}
			tenant, err := repository.NewTenantID(tenantID)
			if err != nil {
				http.Error(w, `{"code":"VALIDATION_FAILED","message":"invalid tenant id"}`, http.StatusBadRequest)
				return
			}

			actor := r.Header.Get(HeaderActorID)
			if actor == "" {
				actor = "anonymous"
			}

			ctx := context.WithValue(r.Context(), tenantContextKey, tenant)
			ctx = context.WithValue(ctx, actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantFromContext returns the tenant placed on the context by TenantContext.
func TenantFromContext(ctx context.Context) (repository.TenantID, bool) {
	tenant, ok := ctx.Value(tenantContextKey).(repository.TenantID)
	return tenant, ok
}

// ActorFromContext returns the acting principal, defaulting to "anonymous".
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey).(string); ok && actor != "" {
		return actor
	}
	return "anonymous"
}
