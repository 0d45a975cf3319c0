// Package routes is the client's route table. It knows which paths are
// reserved for anonymous users, which need a session and where each kind of
// user lands.
package routes

import "strings"

const (
	Home     = "/"
	Login    = "/login"
	Signup   = "/signup"
	Generate = "/generate"
	Library  = "/library"
	Privacy  = "/privacy"
)

const (
	// PublicLanding is where anonymous users are sent from protected paths.
	PublicLanding = Home
	// AuthenticatedLanding is where a signed-in user is sent after login and
	// from public-only paths.
	AuthenticatedLanding = Library
)

// Kind classifies a path for the navigation guard.
type Kind int

const (
	Neutral Kind = iota
	PublicOnly
	Protected
)

func (k Kind) String() string {
	switch k {
	case PublicOnly:
		return "public-only"
	case Protected:
		return "protected"
	default:
		return "neutral"
	}
}

var publicOnly = map[string]struct{}{
	Home:   {},
	Login:  {},
	Signup: {},
}

var protectedPrefixes = []string{Generate, Library}

// Clean drops the query, fragment and trailing slashes. An empty path is "/".
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return Home
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Classify returns the kind of path. Sub-paths of protected sections
// (e.g. /library/42) are protected as well.
func Classify(path string) Kind {
	p := Clean(path)
	if _, ok := publicOnly[p]; ok {
		return PublicOnly
	}
	for _, prefix := range protectedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return Protected
		}
	}
	return Neutral
}
