package auth

// Role grants a rung on the ledger permission ladder. Viewers read
// documents and movement history, operators create and cancel execution
// documents, admins additionally manage fiscal years.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// NormalizeRole maps a token claim to a known role.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleOperator, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast reports whether role sits at or above required on the
// ladder. Unknown roles rank below viewer and satisfy nothing.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleOperator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
