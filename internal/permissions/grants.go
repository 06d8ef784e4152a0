package permissions

import (
	"sort"
	"strings"

	"github.com/pharmagdd/catalog/internal/models"
)

// Grants is the guard-facing view of a role's permissions: either
// unrestricted, or restricted to an explicit code set. The two variants make
// the all_permissions short-circuit part of the type instead of a boolean the
// caller has to remember to consult.
type Grants struct {
	unrestricted bool
	codes        map[string]struct{}
}

// Unrestricted grants every permission unconditionally.
func Unrestricted() Grants {
	return Grants{unrestricted: true}
}

// Restricted grants exactly the supplied codes.
func Restricted(codes ...string) Grants {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return Grants{codes: set}
}

// ForRole builds the grant set for a role. A nil role grants nothing.
func ForRole(role *models.Role) Grants {
	if role == nil {
		return Restricted()
	}
	if role.AllPermissions {
		return Unrestricted()
	}

	codes := make([]string, 0, len(role.Permissions))
	for _, perm := range role.Permissions {
		codes = append(codes, perm.Code)
	}
	return Restricted(codes...)
}

// Allows reports whether the grant set covers the permission code.
func (g Grants) Allows(code string) bool {
	if g.unrestricted {
		return true
	}
	_, ok := g.codes[strings.TrimSpace(code)]
	return ok
}

// IsUnrestricted reports whether every check short-circuits to allowed.
func (g Grants) IsUnrestricted() bool {
	return g.unrestricted
}

// Codes lists the explicit grant set in sorted order. For an unrestricted
// grant it returns every registered code.
func (g Grants) Codes() []string {
	if g.unrestricted {
		return Codes()
	}

	codes := make([]string, 0, len(g.codes))
	for code := range g.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
