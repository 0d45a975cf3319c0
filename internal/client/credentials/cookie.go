package credentials

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// CookieStore keeps the credential as the access_token cookie of the server
// origin. The jar must be installed on the http.Client (see Jar) so the
// cookie travels with every request and Set-Cookie responses update it.
type CookieStore struct {
	jar    http.CookieJar
	origin *url.URL
}

func NewCookieStore(serverURL string) (*CookieStore, error) {
	origin, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &CookieStore{jar: jar, origin: origin}, nil
}

// Jar returns the jar to install on the http.Client.
func (s *CookieStore) Jar() http.CookieJar { return s.jar }

func (s *CookieStore) Persist(_ context.Context, c Credential) error {
	if c.Empty() {
		return nil
	}
	s.jar.SetCookies(s.origin, []*http.Cookie{{
		Name:    AccessTokenName,
		Value:   c.Value,
		Path:    "/",
		Expires: c.ExpiresAt,
	}})
	return nil
}

func (s *CookieStore) Read(_ context.Context) (Credential, error) {
	for _, ck := range s.jar.Cookies(s.origin) {
		if ck.Name == AccessTokenName && ck.Value != "" {
			return FromToken(ck.Value), nil
		}
	}
	return Credential{}, nil
}

func (s *CookieStore) Clear(_ context.Context) error {
	s.jar.SetCookies(s.origin, []*http.Cookie{{
		Name:   AccessTokenName,
		Path:   "/",
		MaxAge: -1,
	}})
	return nil
}

// Apply is a no-op: the jar attaches the cookie.
func (s *CookieStore) Apply(*http.Request, Credential) {}
