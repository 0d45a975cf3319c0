// Package credentials abstracts how the session credential is kept between
// calls. The rest of the client depends only on Store and Applier; the two
// implementations are
//
//   - CookieStore: the server sets an access_token cookie and a cookie jar
//     attaches it to every request (server-trusted cookie model);
//   - TokenStore: the client holds the access token in its local database
//     and sends it as a bearer token (client-held token model).
//
// A deployment picks one of them; they are never combined.
package credentials

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mode names a persistence strategy in configuration.
type Mode string

const (
	ModeCookie Mode = "cookie"
	ModeToken  Mode = "token"
)

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCookie, ModeToken:
		return m, nil
	default:
		return "", fmt.Errorf("unknown credential mode %q", s)
	}
}

// AccessTokenName is the cookie name and login response field carrying the credential.
const AccessTokenName = "access_token"

// Credential is opaque to the client: only its presence and, when the
// server tells us, its expiry are looked at.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

func (c Credential) Empty() bool { return c.Value == "" }

// Expired reports whether a known expiry has passed. A credential without
// an expiry never expires on the client side.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// FromToken wraps a raw token. If it is a JWT carrying "exp", the expiry is
// copied; the signature is not verified since only the server can do that.
func FromToken(raw string) Credential {
	c := Credential{Value: raw}

	token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil && claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}
	return c
}

// Store is the persistence capability: persist, read and clear.
// Read returns an empty Credential when nothing is stored.
type Store interface {
	Persist(ctx context.Context, c Credential) error
	Read(ctx context.Context) (Credential, error)
	Clear(ctx context.Context) error
}

// Applier attaches a credential to an outgoing request.
type Applier interface {
	Apply(req *http.Request, c Credential)
}

// Manager is what the HTTP client needs from a strategy.
type Manager interface {
	Store
	Applier
}
