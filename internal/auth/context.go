package auth

import "context"

type contextKey string

const (
	contextKeyOrgUnit contextKey = "auth.org_unit_id"
	contextKeyRole    contextKey = "auth.role"
	contextKeySubject contextKey = "auth.subject"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, orgUnitID string, role Role, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyOrgUnit, orgUnitID)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

// OrgUnitIDFromContext extracts the org unit id from context.
func OrgUnitIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyOrgUnit)
	if orgUnitID, ok := value.(string); ok {
		return orgUnitID
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// ActorIDFromContext extracts the acting user id from context.
func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeySubject)
	if subject, ok := value.(string); ok {
		return subject
	}
	return ""
}
