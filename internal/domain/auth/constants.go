package auth

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

const UserStatusActive = "active"

// Roles lists every membership role, most privileged first.
var Roles = []string{RoleAdmin, RoleViewer}

// CanWrite reports whether role may create or delete company records.
func CanWrite(role string) bool {
	return role == RoleAdmin
}

// CanRead reports whether role may read company records.
func CanRead(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}
