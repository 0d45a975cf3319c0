package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/credentials"
	"github.com/dmitrijs2005/neuralart/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader correlates a call in client and server logs.
const RequestIDHeader = "X-Request-ID"

const maxErrorBody = 64 << 10

type HTTPClient struct {
	base   *url.URL
	hc     *http.Client
	creds  credentials.Manager
	logger logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

// WithTimeout bounds every request; a request hitting it fails with ErrTransport.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.hc.Timeout = d }
}

func WithCredentials(m credentials.Manager) Option {
	return func(c *HTTPClient) { c.creds = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

type jarProvider interface {
	Jar() http.CookieJar
}

func NewHTTPClient(serverURL string, opts ...Option) (*HTTPClient, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", serverURL)
	}

	c := &HTTPClient{
		base:   base,
		hc:     &http.Client{},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if jp, ok := c.creds.(jarProvider); ok && c.hc.Jar == nil {
		c.hc.Jar = jp.Jar()
	}
	return c, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	req.Header.Set(RequestIDHeader, requestID)

	if c.creds != nil {
		cred, err := c.creds.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credential: %w", err)
		}
		if !cred.Empty() {
			c.creds.Apply(req, cred)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	c.logger.Debug(ctx, "request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return resp, nil
}

func success(code int) bool { return code >= 200 && code < 300 }

// statusError builds the error for a non-2xx response. kind overrides the
// default mapping when not nil.
func statusError(resp *http.Response, kind error) error {
	defer drain(resp)

	if kind == nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = ErrUnauthorized
		case http.StatusNotFound:
			kind = ErrNotFound
		default:
			kind = ErrUnexpectedStatus
		}
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Detail: detail(raw), kind: kind}
}

// detail extracts FastAPI's {"detail": ...}; a validation error list is kept as raw JSON.
func detail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func decode(resp *http.Response, v any) error {
	defer drain(resp)
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil, "")
	if err != nil {
		return User{}, err
	}
	if !success(resp.StatusCode) {
		return User{}, statusError(resp, nil)
	}

	var u User
	if err := decode(resp, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login posts form-encoded credentials. The credential is taken from the
// JSON body when present, otherwise from the access_token cookie.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (credentials.Credential, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return credentials.Credential{}, err
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return credentials.Credential{}, statusError(resp, ErrInvalidCredentials)
	case !success(resp.StatusCode):
		return credentials.Credential{}, statusError(resp, nil)
	}
	defer drain(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return credentials.Credential{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var tr tokenResponse
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &tr) == nil && tr.AccessToken != "" {
		cred := credentials.FromToken(tr.AccessToken)
		if cred.ExpiresAt.IsZero() && tr.ExpiresIn > 0 {
			cred.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
		}
		return cred, nil
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == credentials.AccessTokenName && ck.Value != "" {
			cred := credentials.FromToken(ck.Value)
			if cred.ExpiresAt.IsZero() && !ck.Expires.IsZero() {
				cred.ExpiresAt = ck.Expires
			}
			return cred, nil
		}
	}
	return credentials.Credential{}, fmt.Errorf("%w: login response carries no credential", ErrMalformedResponse)
}

func (c *HTTPClient) Signup(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/signup", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusConflict:
		return statusError(resp, ErrAccountConflict)
	case !success(resp.StatusCode):
		return statusError(resp, nil)
	}
	drain(resp)
	return nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, "")
	if err != nil {
		return err
	}
	if !success(resp.StatusCode) {
		return statusError(resp, nil)
	}
	drain(resp)
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writePart(w *multipart.Writer, field string, u Upload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, quoteEscaper.Replace(u.Name)))
	if u.MediaType != "" {
		h.Set("Content-Type", u.MediaType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(u.Data)
	return err
}

// Submit sends both images as one multipart request and returns the job id.
func (c *HTTPClient) Submit(ctx context.Context, content, style Upload) (int64, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writePart(mw, "content_file", content); err != nil {
		return 0, fmt.Errorf("write content part: %w", err)
	}
	if err := writePart(mw, "style_file", style); err != nil {
		return 0, fmt.Errorf("write style part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("close multipart: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/generate", &buf, mw.FormDataContentType())
	if err != nil {
		return 0, err
	}
	if !success(resp.StatusCode) {
		return 0, statusError(resp, nil)
	}

	var body struct {
		DatabaseID *int64 `json:"database_id"`
	}
	if err := decode(resp, &body); err != nil {
		return 0, err
	}
	if body.DatabaseID == nil {
		return 0, fmt.Errorf("%w: missing database_id", ErrMalformedResponse)
	}
	return *body.DatabaseID, nil
}

func (c *HTTPClient) Status(ctx context.Context, id int64) (StatusResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/status/"+strconv.FormatInt(id, 10), nil, "")
	if err != nil {
		return StatusResponse{}, err
	}
	if !success(resp.StatusCode) {
		return StatusResponse{}, statusError(resp, nil)
	}

	var s StatusResponse
	if err := decode(resp, &s); err != nil {
		return StatusResponse{}, err
	}
	return s, nil
}

func (c *HTTPClient) Library(ctx context.Context) ([]LibraryItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/library", nil, "")
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, statusError(resp, nil)
	}

	var items []LibraryItem
	if err := decode(resp, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []LibraryItem{}
	}
	return items, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, "/library/"+strconv.FormatInt(id, 10), nil, "")
	if err != nil {
		return err
	}
	if !success(resp.StatusCode) {
		return statusError(resp, nil)
	}
	drain(resp)
	return nil
}

// IsAuthFailure reports whether err should end the session.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
