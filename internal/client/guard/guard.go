// Package guard decides whether a navigation may proceed. It is the single
// place where route gating lives; the REPL consults it both on entry and
// whenever the session changes under the current view.
package guard

import (
	"github.com/dmitrijs2005/neuralart/internal/client/routes"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
)

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "REDIRECT"
	}
	return "ALLOW"
}

// Decision is the outcome of Decide. To is set only for Redirect.
type Decision struct {
	Action Action
	To     string
}

func (d Decision) Allowed() bool { return d.Action == Allow }

func (d Decision) String() string {
	if d.Action == Redirect {
		return "REDIRECT(" + d.To + ")"
	}
	return "ALLOW"
}

// Decide maps (path, session state) to a decision. It is total and pure.
// While the session is being checked every path is allowed so the view can
// render a neutral loading state.
func Decide(path string, state session.State) Decision {
	if state != session.Authenticated && state != session.Unauthenticated {
		return Decision{Action: Allow}
	}

	switch routes.Classify(path) {
	case routes.PublicOnly:
		if state == session.Authenticated {
			return Decision{Action: Redirect, To: routes.AuthenticatedLanding}
		}
	case routes.Protected:
		if state == session.Unauthenticated {
			return Decision{Action: Redirect, To: routes.PublicLanding}
		}
	}
	return Decision{Action: Allow}
}
