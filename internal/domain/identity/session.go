package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Predefined role codes
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

// Session is the authenticated caller's identity, passed explicitly into
// every service call. It deliberately carries no token material: how the
// session was established is the transport layer's concern.
type Session struct {
	ID       uuid.UUID // session/run correlation id
	UserID   uuid.UUID
	Username string
	Role     string // one of the predefined role codes, normalized
}

// NewSession creates a session for the given user with a normalized role.
// The role is accepted in whatever shape the identity payload carried it;
// see NormalizeRoleValue.
func NewSession(userID uuid.UUID, username string, role any) *Session {
	return &Session{
		ID:       uuid.New(),
		UserID:   userID,
		Username: username,
		Role:     NormalizeRoleValue(role),
	}
}

// NormalizeRole canonicalizes the many role spellings upstream identity
// providers emit: "ROLE_ADMIN", "role-manager", lowercase variants and
// surrounding whitespace all collapse to the bare upper-case code.
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	r = strings.TrimPrefix(r, "ROLE_")
	r = strings.TrimPrefix(r, "ROLE-")
	return r
}

// NormalizeRoleValue canonicalizes a role in whatever shape the identity
// payload ships it: a plain string, an authorities array (first usable
// entry wins), or an object keyed by name, role or authority. Anything
// unrecognized normalizes to the empty role, which holds no capabilities.
func NormalizeRoleValue(v any) string {
	switch r := v.(type) {
	case string:
		return NormalizeRole(r)
	case []string:
		for _, el := range r {
			if code := NormalizeRole(el); code != "" {
				return code
			}
		}
	case []any:
		for _, el := range r {
			if code := NormalizeRoleValue(el); code != "" {
				return code
			}
		}
	case map[string]any:
		for _, key := range []string{"name", "role", "authority"} {
			if inner, ok := r[key]; ok {
				if code := NormalizeRoleValue(inner); code != "" {
					return code
				}
			}
		}
	}
	return ""
}

// HasRole reports whether the session's role matches any of the given codes.
func (s *Session) HasRole(roles ...string) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == NormalizeRole(r) {
			return true
		}
	}
	return false
}

// CanViewInventory reports whether the session may read stock views.
func (s *Session) CanViewInventory() bool {
	return s.HasRole(RoleAdmin, RoleManager)
}

// CanManageProducts reports whether the session may mutate the catalog.
func (s *Session) CanManageProducts() bool {
	return s.HasRole(RoleAdmin, RoleManager)
}

// CanSell reports whether the session may operate the point of sale.
func (s *Session) CanSell() bool {
	return s.HasRole(RoleAdmin, RoleCashier)
}
