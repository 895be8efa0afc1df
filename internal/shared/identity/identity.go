// Package identity carries the authenticated caller and party references
// across bounded contexts.
package identity

import (
	"context"
	"strings"
)

// Role is the supply-chain function a user acts in.
type Role string

const (
	RoleManufacturer     Role = "manufacturer"
	RoleSupplier         Role = "supplier"
	RoleQualityInspector Role = "quality-inspector"
	RoleDistributor      Role = "distributor"
	RoleAdmin            Role = "admin"
	RoleCustomer         Role = "customer"
)

// Roles lists every known role in display order.
var Roles = []Role{
	RoleManufacturer,
	RoleSupplier,
	RoleQualityInspector,
	RoleDistributor,
	RoleAdmin,
	RoleCustomer,
}

// ParseRole normalizes raw and reports whether it names a known role.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, r := range Roles {
		if r == candidate {
			return r, true
		}
	}
	return "", false
}

// Reference is the resolved, consistently shaped pointer to a party.
type Reference struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// IsZero reports whether the reference points nowhere.
func (r Reference) IsZero() bool {
	return r.ID == ""
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID          string
	Role        Role
	DisplayName string
}

// Reference returns the actor as a party reference.
func (a Actor) Reference() Reference {
	name := a.DisplayName
	if name == "" {
		name = a.ID
	}
	return Reference{ID: a.ID, DisplayName: name}
}

// Is reports whether the actor holds any of the given roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

type actorKey struct{}

// WithActor stores the caller on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// Directory resolves ids of another bounded context to party references.
type Directory interface {
	Lookup(ctx context.Context, id string) (Reference, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, id string) (Reference, error)

// Lookup calls f.
func (f DirectoryFunc) Lookup(ctx context.Context, id string) (Reference, error) {
	return f(ctx, id)
}
