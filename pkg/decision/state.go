package decision

// State is the closed decision vocabulary attached to every analyzed
// request. Upstream components never get to assert one of these values
// directly; the normalizer derives it from the verdict signals.
type State string

const (
	// StateAllow means the request passed through unmodified.
	StateAllow State = "ALLOW"

	// StateGuide means the request was served with guidance or a repair.
	StateGuide State = "GUIDE"

	// StateBlock means the request was refused or routed out of scope.
	StateBlock State = "BLOCK"
)

// Valid reports whether s is one of the three known states.
func (s State) Valid() bool {
	switch s {
	case StateAllow, StateGuide, StateBlock:
		return true
	}
	return false
}
