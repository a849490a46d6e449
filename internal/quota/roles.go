package quota

import "errors"

// ErrUnknownRole means a role row exists but its value is outside the
// recognized set. This is an operator-side data fault and is deliberately
// NOT the same as "caller has no role row", which defaults to DefaultRole.
var ErrUnknownRole = errors.New("unknown user role")

// ErrExceeded means admission was denied because the caller's total
// generation count reached the limit for their role.
var ErrExceeded = errors.New("generation limit reached")

const DefaultRole = "user"

// Limit is a per-role generation cap. Unlimited limits never deny.
type Limit struct {
	Max       int
	Unlimited bool
}

// Closed role policy. Compiled in on purpose: an unrecognized value in the
// role table must surface as a configuration fault, not gain a default cap.
var roleLimits = map[string]Limit{
	"user":      {Max: 10},
	"user_plus": {Max: 100},
	"forbidden": {Max: 0},
	"admin":     {Unlimited: true},
	"dev":       {Unlimited: true},
}

// LimitFor maps a role to its generation limit. The second return is false
// for roles outside the recognized set.
func LimitFor(role string) (Limit, bool) {
	l, ok := roleLimits[role]
	return l, ok
}
