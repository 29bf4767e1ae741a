package access

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

//go:embed model.conf
var embeddedModel string

// Evaluator applies the ordered access rules.
type Evaluator struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEvaluator builds the role policy from actions. When policyFile is set and
// exists, grants are loaded from that CSV instead ("p, <role>, <action>" rows).
func NewEvaluator(policyFile string, actions ...Action) (*Evaluator, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("parse access model: %w", err)
	}

	var e *casbin.SyncedEnforcer
	if policyFile != "" {
		if _, statErr := os.Stat(policyFile); statErr != nil {
			return nil, fmt.Errorf("access policy file: %w", statErr)
		}
		e, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyFile))
		if err != nil {
			return nil, fmt.Errorf("create access enforcer: %w", err)
		}
		return &Evaluator{enforcer: e}, nil
	}

	e, err = casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create access enforcer: %w", err)
	}
	for _, a := range actions {
		for _, r := range a.RequiredRoles {
			if _, err := e.AddPolicy(string(r), a.Name); err != nil {
				return nil, fmt.Errorf("add grant %s/%s: %w", r, a.Name, err)
			}
		}
	}
	return &Evaluator{enforcer: e}, nil
}

// Evaluate returns the decision for profile performing action. A nil profile is "not found".
func (ev *Evaluator) Evaluate(p *models.Profile, a Action) Decision {
	if p == nil || !p.IsActive {
		return deny(ReasonUnauthenticated)
	}
	granted, err := ev.enforcer.Enforce(string(p.Role), a.Name)
	if err != nil {
		logger.L().Error().Err(err).Str("role", string(p.Role)).Str("action", a.Name).Msg("access policy evaluation failed")
		return deny(ReasonForbiddenRole)
	}
	if !granted {
		return deny(ReasonForbiddenRole)
	}
	if dept, ok := a.SubRoles[p.Role]; ok && p.SRCDepartment != dept {
		return deny(ReasonForbiddenSubrole)
	}
	return allow()
}

// Grants lists the roles allowed to perform the named action.
func (ev *Evaluator) Grants(action string) []string {
	rows, _ := ev.enforcer.GetFilteredPolicy(1, action)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[0])
	}
	return out
}
