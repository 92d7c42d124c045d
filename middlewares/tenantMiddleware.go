package middlewares

import (
	"net/http"

	"github.com/app-roznamcha/roznamcha/appctx"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantMiddleware resolves the caller's company from the X-Tenant-Id
// and X-Role headers into an explicit tenant.Context and stashes it on
// the gin context. Handlers read it back with TenantFromGin; nothing
// below the HTTP boundary touches ambient tenant state.
//
// The deployment fronts this service with a gateway that already
// authenticated the caller, so the headers are trusted here.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := c.Request.Header.Get("X-Tenant-Id")
		role := c.Request.Header.Get("X-Role")

		var tc tenant.Context
		switch role {
		case "superadmin":
			tc = tenant.SuperAdmin()
			if tenantId != "" {
				tc = tc.ActingFor(tenantId)
			}
		case "staff":
			tc = tenant.Staff(tenantId)
		default:
			tc = tenant.Owner(tenantId)
		}

		if _, err := tc.TenantId(); err != nil && role != "superadmin" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tenant not resolved"})
			c.Abort()
			return
		}

		c.Set(string(appctx.ContextKeyTenantId), tenantId)
		c.Set(string(appctx.ContextKeyRole), role)
		c.Set(tenantContextKey, tc)

		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyTenantId, tenantId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

const tenantContextKey = "TenantContext"

// TenantFromGin returns the tenant.Context resolved by TenantMiddleware.
func TenantFromGin(c *gin.Context) tenant.Context {
	if v, ok := c.Get(tenantContextKey); ok {
		if tc, ok := v.(tenant.Context); ok {
			return tc
		}
	}
	return tenant.SuperAdmin()
}

// CorrelationMiddleware assigns every request a correlation id unless
// the caller supplied one, for log stitching.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyCorrelationId, correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", correlationId)
		c.Next()
	}
}
