package access

type Reason string

const (
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonForbiddenRole    Reason = "forbidden_role"
	ReasonForbiddenSubrole Reason = "forbidden_subrole"
	ReasonOK               Reason = "ok"
)

// Decision is the per-request verdict. It is never persisted.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

func allow() Decision        { return Decision{Allowed: true, Reason: ReasonOK} }
func deny(r Reason) Decision { return Decision{Allowed: false, Reason: r} }
