package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/credentials"
	"github.com/dmitrijs2005/neuralart/internal/client/db"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, route func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	route(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTokenClient(t *testing.T, srv *httptest.Server) (*HTTPClient, *credentials.TokenStore) {
	t.Helper()
	conn, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := credentials.NewTokenStore(conn)
	c, err := NewHTTPClient(srv.URL, WithCredentials(store), WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c, store
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("localhost")
	require.Error(t, err)
}

func TestLogin_TokenBody(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
			assert.Equal(t, "pw", r.PostForm.Get("password"))
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok", "token_type": "bearer", "expires_in": 60})
		})
	})
	c, _ := newTokenClient(t, srv)

	cred, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.Value)
	assert.WithinDuration(t, time.Now().Add(time.Minute), cred.ExpiresAt, 5*time.Second)
}

func TestLogin_CookieFallback(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "cookie-tok", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		})
	})
	c, _ := newTokenClient(t, srv)

	cred, err := c.Login(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "cookie-tok", cred.Value)
}

func TestLogin_Rejected(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		})
	})
	c, _ := newTokenClient(t, srv)

	_, err := c.Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "Incorrect email or password", se.Detail)
}

func TestLogin_NoCredential(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	c, _ := newTokenClient(t, srv)

	_, err := c.Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSignup(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["email"] == "taken@example.com" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
				return
			}
			assert.Equal(t, "secret", body["password"])
			writeJSON(w, http.StatusCreated, map[string]any{"id": 1, "email": body["email"]})
		})
	})
	c, _ := newTokenClient(t, srv)

	require.NoError(t, c.Signup(context.Background(), "new@example.com", "secret"))

	err := c.Signup(context.Background(), "taken@example.com", "secret")
	require.ErrorIs(t, err, ErrAccountConflict)
}

func TestMe_AttachesBearerAndRequestID(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
				return
			}
			writeJSON(w, http.StatusOK, User{ID: 7, Email: "alice@example.com"})
		})
	})
	c, store := newTokenClient(t, srv)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsAuthFailure(err))

	require.NoError(t, store.Persist(ctx, credentials.Credential{Value: "tok"}))
	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Identity())
}

func TestMe_CookieMode(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "jar-tok", Path: "/", HttpOnly: true})
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		})
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie("access_token")
			if err != nil || ck.Value != "jar-tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, User{ID: 1, Username: "bob"})
		})
	})
	store, err := credentials.NewCookieStore(srv.URL)
	require.NoError(t, err)
	c, err := NewHTTPClient(srv.URL, WithCredentials(store))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Login(ctx, "bob", "pw")
	require.NoError(t, err)

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Identity())

	require.NoError(t, store.Clear(ctx))
	_, err = c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmit_Multipart(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))

			f, h, err := r.FormFile("content_file")
			require.NoError(t, err)
			data, _ := io.ReadAll(f)
			assert.Equal(t, "content-bytes", string(data))
			assert.Equal(t, "cat.png", h.Filename)
			assert.Equal(t, "image/png", h.Header.Get("Content-Type"))

			_, h, err = r.FormFile("style_file")
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", h.Header.Get("Content-Type"))

			writeJSON(w, http.StatusOK, map[string]any{"database_id": 42, "status": "submitted"})
		})
	})
	c, _ := newTokenClient(t, srv)

	id, err := c.Submit(context.Background(),
		Upload{Name: "cat.png", MediaType: "image/png", Data: []byte("content-bytes")},
		Upload{Name: "wave.jpg", MediaType: "image/jpeg", Data: []byte("style-bytes")},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestSubmit_MissingID(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "submitted"})
		})
	})
	c, _ := newTokenClient(t, srv)

	_, err := c.Submit(context.Background(), Upload{Name: "a"}, Upload{Name: "b"})
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStatusAndLibrary(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/status/{id}", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != "42" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Image job not found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": 42, "status": "COMPLETED", "result": "/files/42.jpg"})
		})
		r.Get("/library", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "status": "COMPLETED", "result": "/files/1.jpg"},
				{"id": 2, "status": "PENDING", "result": nil},
			})
		})
	})
	c, _ := newTokenClient(t, srv)
	ctx := context.Background()

	s, err := c.Status(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", s.Status)
	require.NotNil(t, s.Result)
	assert.Equal(t, "/files/42.jpg", *s.Result)

	_, err = c.Status(ctx, 7)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "Image job not found")

	items, err := c.Library(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[1].Result)
}

func TestDelete(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Delete("/library/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch chi.URLParam(r, "id") {
			case "1":
				w.WriteHeader(http.StatusNoContent)
			case "2":
				writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Image not found"})
			default:
				writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not your image"})
			}
		})
	})
	c, _ := newTokenClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, 1))
	require.ErrorIs(t, c.Delete(ctx, 2), ErrNotFound)
	require.ErrorIs(t, c.Delete(ctx, 3), ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	calls := 0
	srv := newServer(t, func(r chi.Router) {
		r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		})
	})
	c, _ := newTokenClient(t, srv)

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Status(context.Background(), 1)
	require.ErrorIs(t, err, ErrTransport)
}

func TestCancelledContextIsNotTransport(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(r chi.Router) {
		r.Get("/status/{id}", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
	})
	t.Cleanup(func() { close(release) })
	c, _ := newTokenClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Status(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestMalformedBody(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/library", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
	})
	c, _ := newTokenClient(t, srv)

	_, err := c.Library(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "x", detail([]byte(`{"detail":"x"}`)))
	assert.Equal(t, `[{"loc":["body"]}]`, detail([]byte(`{"detail":[{"loc":["body"]}]}`)))
	assert.Equal(t, "plain", detail([]byte(" plain ")))
}
