// Package tenantctx carries the authenticated actor and tenant scope through
// request contexts.
package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Actor is the authenticated caller identity.
type Actor struct {
	UserID    snowflake.ID
	CompanyID snowflake.ID // zero for superusers
	Superuser bool
	Roles     []string
}

func (a Actor) HasRole(name string) bool {
	for _, role := range a.Roles {
		if role == name {
			return true
		}
	}
	return false
}

type actorKey struct{}
type actingCompanyKey struct{}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// WithActingCompany records the tenant a superuser is explicitly acting on.
// Regular users never carry an acting company; their own tenant always wins.
func WithActingCompany(ctx context.Context, companyID snowflake.ID) context.Context {
	return context.WithValue(ctx, actingCompanyKey{}, companyID)
}

func ActingCompanyFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(actingCompanyKey{}).(snowflake.ID)
	return id, ok && id != 0
}

// CompanyScope resolves the tenant all data access must be scoped to. For
// superusers this is the explicit acting company; omitting it leaves the
// superuser unscoped (ok=false) and each operation decides whether that is
// acceptable.
func CompanyScope(ctx context.Context) (snowflake.ID, bool) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return 0, false
	}
	if actor.Superuser {
		return ActingCompanyFromContext(ctx)
	}
	if actor.CompanyID == 0 {
		return 0, false
	}
	return actor.CompanyID, true
}

// IsSuperuser reports whether the context carries a superuser actor.
func IsSuperuser(ctx context.Context) bool {
	actor, ok := ActorFromContext(ctx)
	return ok && actor.Superuser
}
