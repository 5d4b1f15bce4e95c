// Package access implements the tenant-scoping guard. Every route resolves a
// Principal once, then asks this package two questions: may the caller touch
// this resource (Authorize), and what filter applies to list queries
// (ScopeFor). The guard is a pure decision function over already-fetched
// identifiers; it performs no I/O.
//
// Callers must populate Resource.OwnerTenantID and Resource.SharedWith from
// the stored ClientProfile, never from request input. A record whose tenant id
// superficially matches the caller is still denied when the client profile
// belongs to another tenant.
package access

import (
	"slices"

	"vowline/pkg/domain"
)

// Role is the coarse permission level carried by every user account.
type Role string

const (
	RoleSuperadmin Role = "SUPERADMIN"
	RoleTenant     Role = "TENANT"
	RoleClient     Role = "CLIENT"
)

// IsValid reports whether the role is one of the three known levels.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleTenant, RoleClient:
		return true
	}
	return false
}

// Action distinguishes read access (extended to shared tenants via
// TenantAccess) from write access (owning tenant and client only).
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Principal is the resolved identity of the caller.
//
// Invariants (mirroring the user model):
//   - Role CLIENT implies non-nil ClientProfileID and TenantID
//   - Role TENANT implies non-nil TenantID
//   - Grants is only populated for CLIENT principals and lists the tenants
//     their profile has shared data with
type Principal struct {
	UserID          domain.UserID
	Email           string
	Role            Role
	TenantID        domain.TenantID
	ClientProfileID domain.ClientProfileID
	Active          bool
	TenantSuspended bool
	Grants          []domain.TenantID
}

// Resource describes the record under evaluation. For tenant-level resources
// (branding, roster) ClientProfileID is nil and OwnerTenantID equals TenantID.
type Resource struct {
	// TenantID is the tenant the record is filed under.
	TenantID domain.TenantID
	// ClientProfileID is the couple the record belongs to, if any.
	ClientProfileID domain.ClientProfileID
	// OwnerTenantID is the tenant owning the client profile, re-derived from
	// storage by the caller.
	OwnerTenantID domain.TenantID
	// SharedWith lists tenants granted visibility via TenantAccess.
	SharedWith []domain.TenantID
}

// DenyReason explains a negative decision.
type DenyReason string

const (
	DenyNone            DenyReason = ""
	DenyWrongTenant     DenyReason = "wrong_tenant"
	DenyWrongClient     DenyReason = "wrong_client"
	DenyInactiveAccount DenyReason = "inactive_account"
	DenySuspendedTenant DenyReason = "suspended_tenant"
	DenyReadOnlyGrant   DenyReason = "read_only_grant"
	DenyRole            DenyReason = "role_not_permitted"
)

// Decision is the guard's verdict.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether the principal may perform action on the resource.
// Pure function; all identifiers must already be re-derived server-side.
func Authorize(p Principal, res Resource, action Action) Decision {
	if !p.Active {
		return deny(DenyInactiveAccount)
	}
	if p.TenantSuspended {
		return deny(DenySuspendedTenant)
	}

	switch p.Role {
	case RoleSuperadmin:
		return allow()

	case RoleTenant:
		if p.TenantID.IsNil() {
			return deny(DenyWrongTenant)
		}
		if res.ClientProfileID.IsNil() {
			// Tenant-level resource: own tenant only.
			if res.TenantID != p.TenantID {
				return deny(DenyWrongTenant)
			}
			return allow()
		}
		// Client-scoped resource: ownership decides, not the record's own
		// tenant column. A forged tenant id on the record cannot widen access.
		if p.TenantID == res.OwnerTenantID {
			return allow()
		}
		if slices.Contains(res.SharedWith, p.TenantID) {
			if action == ActionWrite {
				return deny(DenyReadOnlyGrant)
			}
			return allow()
		}
		return deny(DenyWrongTenant)

	case RoleClient:
		if p.ClientProfileID.IsNil() {
			return deny(DenyWrongClient)
		}
		if res.ClientProfileID.IsNil() || res.ClientProfileID != p.ClientProfileID {
			return deny(DenyWrongClient)
		}
		if res.TenantID != p.TenantID && !slices.Contains(p.Grants, res.TenantID) {
			return deny(DenyWrongTenant)
		}
		return allow()
	}

	return deny(DenyRole)
}

// Scope is the list-query filter derived from a principal. Stores apply it
// verbatim; there is no per-route role branching downstream of this type.
type Scope struct {
	// All grants unrestricted visibility (SUPERADMIN only).
	All bool
	// TenantIDs restricts records to these tenants.
	TenantIDs []domain.TenantID
	// ClientProfileID, when non-nil, additionally restricts records to one
	// couple.
	ClientProfileID domain.ClientProfileID
}

// ScopeFor derives the query filter for the principal. Callers should deny
// before querying when the scope is empty.
func ScopeFor(p Principal) Scope {
	switch p.Role {
	case RoleSuperadmin:
		return Scope{All: true}
	case RoleTenant:
		if p.TenantID.IsNil() {
			return Scope{}
		}
		return Scope{TenantIDs: []domain.TenantID{p.TenantID}}
	case RoleClient:
		if p.ClientProfileID.IsNil() {
			return Scope{}
		}
		tenants := make([]domain.TenantID, 0, len(p.Grants)+1)
		tenants = append(tenants, p.TenantID)
		tenants = append(tenants, p.Grants...)
		return Scope{TenantIDs: tenants, ClientProfileID: p.ClientProfileID}
	}
	return Scope{}
}

// IsEmpty reports whether the scope matches nothing.
func (s Scope) IsEmpty() bool {
	return !s.All && len(s.TenantIDs) == 0
}

// PermitsTenant reports whether records of the given tenant fall inside the
// scope. Memory stores use this; the postgres stores translate the scope to
// WHERE clauses instead.
func (s Scope) PermitsTenant(id domain.TenantID) bool {
	if s.All {
		return true
	}
	return slices.Contains(s.TenantIDs, id)
}

// PermitsClient reports whether records of the given couple fall inside the
// scope.
func (s Scope) PermitsClient(id domain.ClientProfileID) bool {
	if s.All || s.ClientProfileID.IsNil() {
		return true
	}
	return s.ClientProfileID == id
}
