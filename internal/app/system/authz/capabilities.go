package authz

import "strings"

// Roles known to the report.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleViewer     = "viewer"
)

// Capability names a permission checked by the report.
type Capability string

const (
	// CapView grants read access to the usage report.
	CapView Capability = "ltiusage:view"
	// CapDelete grants the site-admin delete control on report rows.
	CapDelete Capability = "ltiusage:delete"
)

var capabilities = map[Capability][]string{
	CapView:   {RoleSuperAdmin, RoleAdmin, RoleManager},
	CapDelete: {RoleSuperAdmin, RoleAdmin},
}

// Can reports whether role holds capability c. Unknown roles and
// capabilities hold nothing.
func Can(role string, c Capability) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, allowed := range capabilities[c] {
		if role == allowed {
			return true
		}
	}
	return false
}

// RolesWith lists the roles holding c, for use with RequireRole.
func RolesWith(c Capability) []string {
	roles := capabilities[c]
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}
