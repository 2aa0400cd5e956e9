package server

import (
	"strings"

	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const actingCompanyHeader = "X-Acting-Company"

// AuthRequired resolves the bearer token into an actor and stores it on
// the request context. Superusers may additionally name an acting
// company via header; it is never inferred.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor, err := s.authSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := tenantctx.WithActor(c.Request.Context(), actor)

		if actor.Superuser {
			if header := strings.TrimSpace(c.GetHeader(actingCompanyHeader)); header != "" {
				companyID, err := snowflake.ParseString(header)
				if err != nil || companyID == 0 {
					AbortWithError(c, newValidationError("acting_company", "invalid_acting_company", "invalid acting company"))
					return
				}
				ctx = tenantctx.WithActingCompany(ctx, companyID)
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSuperuser gates superuser-only routes.
func (s *Server) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := tenantctx.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !actor.Superuser {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireRole admits superusers and actors holding any of the given
// roles.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := tenantctx.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if actor.Superuser {
			c.Next()
			return
		}
		for _, role := range roles {
			if actor.HasRole(role) {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
