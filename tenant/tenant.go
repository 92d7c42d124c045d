package tenant

import "errors"

// ErrOwnerNotResolved is returned when an engine call is made without a
// usable company context. This is fatal: posting must never silently
// default to some tenant.
var ErrOwnerNotResolved = errors.New("owner (company) not resolved")

type Role int

const (
	// RoleOwner is the company owner; the tenant id is their own company.
	RoleOwner Role = iota
	// RoleStaff acts on behalf of an owner's company.
	RoleStaff
	// RoleSuperAdmin has no company context of its own.
	RoleSuperAdmin
)

// Context is the resolved tenant identity threaded explicitly into every
// engine call. It is built once at the request boundary (middleware); the
// engine itself never reads tenant identity from ambient state.
type Context struct {
	role     Role
	tenantId string
}

func Owner(tenantId string) Context {
	return Context{role: RoleOwner, tenantId: tenantId}
}

// Staff resolves to the owning company the staff member belongs to.
func Staff(ownerTenantId string) Context {
	return Context{role: RoleStaff, tenantId: ownerTenantId}
}

// SuperAdmin carries no tenant; engine calls with it fail with
// ErrOwnerNotResolved unless a tenant is picked explicitly via ActingFor.
func SuperAdmin() Context {
	return Context{role: RoleSuperAdmin}
}

// ActingFor returns a copy of a super-admin context pinned to one company,
// used by maintenance tooling (seeding, purge, rebuild).
func (c Context) ActingFor(tenantId string) Context {
	return Context{role: c.role, tenantId: tenantId}
}

func (c Context) Role() Role { return c.role }

// TenantId returns the company id every owned entity must be scoped to.
func (c Context) TenantId() (string, error) {
	if c.tenantId == "" {
		return "", ErrOwnerNotResolved
	}
	return c.tenantId, nil
}
