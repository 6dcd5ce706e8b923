package policy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// AccessPolicy is the static caller-role to content-role mapping. It is
// read-only after construction and safe for concurrent lookups. Unknown
// caller roles resolve to the empty set: downstream code must treat that as
// deny, never as unrestricted access.
type AccessPolicy struct {
	grants map[string][]string
}

// Default mirrors the company role matrix: each department reads its own
// bucket plus the shared one, c_level reads everything, plain employees read
// shared content only.
func Default() *AccessPolicy {
	return New(map[string][]string{
		"c_level":     {"c_level", "engineering", "marketing", "finance", "hr", domain.RoleGeneral},
		"engineering": {"engineering", domain.RoleGeneral},
		"marketing":   {"marketing", domain.RoleGeneral},
		"finance":     {"finance", domain.RoleGeneral},
		"hr":          {"hr", domain.RoleGeneral},
		"employee":    {domain.RoleGeneral},
	})
}

// New normalizes a grant map: duplicates collapse, the shared role is always
// present for every configured caller, and each accessible set is sorted so
// lookups are deterministic.
func New(grants map[string][]string) *AccessPolicy {
	normalized := make(map[string][]string, len(grants))
	for caller, roles := range grants {
		if caller == "" {
			continue
		}
		seen := map[string]struct{}{domain.RoleGeneral: {}}
		for _, role := range roles {
			if role == "" {
				continue
			}
			seen[role] = struct{}{}
		}
		set := make([]string, 0, len(seen))
		for role := range seen {
			set = append(set, role)
		}
		sort.Strings(set)
		normalized[caller] = set
	}
	return &AccessPolicy{grants: normalized}
}

// LoadFile reads a YAML grant map (caller role -> list of content roles) and
// replaces the built-in default entirely.
func LoadFile(path string) (*AccessPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var grants map[string][]string
	if err := yaml.Unmarshal(raw, &grants); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if len(grants) == 0 {
		return nil, fmt.Errorf("policy file %s defines no caller roles", path)
	}
	return New(grants), nil
}

// AccessibleRoles returns the content roles the caller may read. The result
// is a copy; callers may not mutate policy state through it. An unknown
// caller role yields an empty set.
func (p *AccessPolicy) AccessibleRoles(callerRole string) []string {
	roles, ok := p.grants[callerRole]
	if !ok {
		return nil
	}
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}

// CallerRoles lists the configured caller roles, sorted.
func (p *AccessPolicy) CallerRoles() []string {
	out := make([]string, 0, len(p.grants))
	for caller := range p.grants {
		out = append(out, caller)
	}
	sort.Strings(out)
	return out
}
