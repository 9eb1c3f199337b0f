package authz

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer builds an in-memory RBAC enforcer.
//
// Policies use "role|obj|act"; groupings use "subject|role".
func NewEnforcer(policies, groupings []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	for _, raw := range policies {
		parts, err := split(raw, 3)
		if err != nil {
			return nil, err
		}
		if _, err := e.AddPolicy(parts[0], parts[1], parts[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy %q: %w", raw, err)
		}
	}

	for _, raw := range groupings {
		parts, err := split(raw, 2)
		if err != nil {
			return nil, err
		}
		if _, err := e.AddGroupingPolicy(parts[0], parts[1]); err != nil {
			return nil, fmt.Errorf("failed to add grouping %q: %w", raw, err)
		}
	}

	return e, nil
}

func split(raw string, n int) ([]string, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != n {
		return nil, fmt.Errorf("authz: malformed rule %q, want %d fields", raw, n)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, fmt.Errorf("authz: empty field in rule %q", raw)
		}
	}
	return parts, nil
}
