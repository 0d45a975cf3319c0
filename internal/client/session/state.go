package session

// State is the client's belief about the current user.
type State int

const (
	// Checking lasts from load until the first session check resolves.
	Checking State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Checking:
		return "CHECKING"
	case Authenticated:
		return "AUTHENTICATED"
	case Unauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}
