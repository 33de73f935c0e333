package entity

// Plan is the user's derived tier snapshot. It is computed from the
// subscription row plus the current loan count on every fetch and is
// never persisted or cached across requests.
type Plan struct {
	IsPremium bool
	LoanCount int
	MaxLoans  int // ignored when Unlimited
	Unlimited bool
}

// CanCreate is the pure quota predicate: premium users are uncapped,
// free users must be under the loan limit. The advisory UI check and
// the authoritative pre-insert re-check both call this with their own
// counts.
func (p Plan) CanCreate() bool {
	if p.IsPremium || p.Unlimited {
		return true
	}
	return p.LoanCount < p.MaxLoans
}

// Remaining reports how many loans the user can still create, or -1
// when unbounded.
func (p Plan) Remaining() int {
	if p.IsPremium || p.Unlimited {
		return -1
	}
	if r := p.MaxLoans - p.LoanCount; r > 0 {
		return r
	}
	return 0
}
