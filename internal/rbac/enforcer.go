package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// NewEnforcer builds an in-memory casbin enforcer with the static
// role -> resource:action policy set. Roles come from verified token
// claims, so no grouping policies are loaded here.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{"HR_ADMIN", "request", "approve"},
		{"HR_ADMIN", "request", "review-queue"},
		{"HR_ADMIN", "request", "read-any"},
		{"HR_ADMIN", "leave-balance", "accrue"},
		{"HR_ADMIN", "leave-balance", "initialize"},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
