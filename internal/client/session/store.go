// Package session holds the authentication state shared by every protected
// component of the client.
//
// A Store is created once per application load, initialised with Init and
// passed by reference to the components that need it; they see it through
// the narrow Gate interface.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/dmitrijs2005/neuralart/internal/client/credentials"
	"github.com/dmitrijs2005/neuralart/internal/client/routes"
	"github.com/dmitrijs2005/neuralart/internal/logging"
)

var (
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrOperationInProgress = errors.New("another session operation is in progress")
	ErrNotAuthenticated    = errors.New("not authenticated")
)

// AuthAPI is the part of the remote service the store talks to.
type AuthAPI interface {
	Me(ctx context.Context) (client.User, error)
	Login(ctx context.Context, username, password string) (credentials.Credential, error)
	Signup(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Gate is what protected components need: a synchronous check before each
// protected action and a way to report an authorization failure.
type Gate interface {
	IsAuthenticated() bool
	HandleAuthFailure(ctx context.Context)
}

// Listener is called after every state change, outside the store's lock.
type Listener func(State)

type Store struct {
	api    AuthAPI
	creds  credentials.Store
	nav    Navigator
	logger logging.Logger
	now    func() time.Time

	// opMu serialises login, signup and logout.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	user      client.User
	listeners map[int]Listener
	nextID    int
	disposed  bool

	checkOnce sync.Once
}

func NewStore(api AuthAPI, creds credentials.Store, nav Navigator, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		api:       api,
		creds:     creds,
		nav:       nav,
		logger:    logger.With("component", "session"),
		now:       time.Now,
		state:     Checking,
		listeners: make(map[int]Listener),
	}
}

// Init starts the store's lifecycle by resolving the session.
func (s *Store) Init(ctx context.Context) {
	s.CheckSession(ctx)
}

// CheckSession asks the remote identity endpoint who we are. It runs once
// per Store; later calls return immediately. Any failure, network errors
// included, resolves to Unauthenticated.
func (s *Store) CheckSession(ctx context.Context) {
	s.checkOnce.Do(func() { s.check(ctx) })
}

func (s *Store) check(ctx context.Context) {
	cred, err := s.creds.Read(ctx)
	if err != nil {
		s.logger.Warn(ctx, "read stored credential", "error", err)
	}
	if !cred.Empty() && cred.Expired(s.now()) {
		s.logger.Info(ctx, "stored credential expired")
		if err := s.creds.Clear(ctx); err != nil {
			s.logger.Warn(ctx, "clear expired credential", "error", err)
		}
		s.resolve(ctx, Unauthenticated, client.User{})
		return
	}

	u, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Debug(ctx, "session check failed", "error", err)
		s.resolve(ctx, Unauthenticated, client.User{})
		return
	}
	s.resolve(ctx, Authenticated, u)
}

// resolve ends the Checking phase unless a login or logout already did.
func (s *Store) resolve(ctx context.Context, to State, u client.User) {
	s.mu.Lock()
	if s.state != Checking {
		s.mu.Unlock()
		return
	}
	s.state, s.user = to, u
	ls := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info(ctx, "session resolved", "state", to)
	notify(ls, to)
}

func (s *Store) set(ctx context.Context, to State, u client.User) {
	s.mu.Lock()
	from := s.state
	s.state, s.user = to, u
	ls := s.snapshotListeners()
	s.mu.Unlock()

	if from != to {
		s.logger.Info(ctx, "session changed", "from", from, "to", to)
	}
	notify(ls, to)
}

func (s *Store) snapshotListeners() []Listener {
	if s.disposed {
		return nil
	}
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	return ls
}

func notify(ls []Listener, st State) {
	for _, l := range ls {
		l(st)
	}
}

func (s *Store) navigate(path string) {
	s.mu.RLock()
	disposed := s.disposed
	s.mu.RUnlock()
	if s.nav != nil && !disposed {
		s.nav.Navigate(path)
	}
}

// Login submits the credentials, persists the returned credential and moves
// to the authenticated landing view. On failure the state is unchanged.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	if !s.opMu.TryLock() {
		return ErrOperationInProgress
	}
	defer s.opMu.Unlock()

	return s.login(ctx, identifier, secret)
}

func (s *Store) login(ctx context.Context, identifier, secret string) error {
	cred, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		return err
	}
	if err := s.creds.Persist(ctx, cred); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	u := client.User{Username: identifier}
	if strings.Contains(identifier, "@") {
		u = client.User{Email: identifier}
	}
	s.set(ctx, Authenticated, u)
	s.navigate(routes.AuthenticatedLanding)
	return nil
}

// Signup creates the account and then logs in with the same credentials.
func (s *Store) Signup(ctx context.Context, email, secret string) error {
	if !s.opMu.TryLock() {
		return ErrOperationInProgress
	}
	defer s.opMu.Unlock()

	if err := s.api.Signup(ctx, email, secret); err != nil {
		return err
	}
	return s.login(ctx, email, secret)
}

// Logout ends the session. The server call is best-effort; the local
// credential is always cleared and the user sent to the public landing.
func (s *Store) Logout(ctx context.Context) error {
	if !s.opMu.TryLock() {
		return ErrOperationInProgress
	}
	defer s.opMu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn(ctx, "server logout failed", "error", err)
	}

	clearErr := s.creds.Clear(ctx)
	if clearErr != nil {
		s.logger.Error(ctx, "clear credential", "error", clearErr)
		clearErr = fmt.Errorf("clear credential: %w", clearErr)
	}

	s.set(ctx, Unauthenticated, client.User{})
	s.navigate(routes.PublicLanding)
	return clearErr
}

// HandleAuthFailure is called by protected components when the server
// rejected the credential. Only an authenticated session is affected.
func (s *Store) HandleAuthFailure(ctx context.Context) {
	s.mu.Lock()
	if s.state != Authenticated {
		s.mu.Unlock()
		return
	}
	s.state, s.user = Unauthenticated, client.User{}
	ls := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info(ctx, "session rejected by server")
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.Warn(ctx, "clear credential", "error", err)
	}
	notify(ls, Unauthenticated)
	s.navigate(routes.PublicLanding)
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) User() client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// OnChange registers fn and returns a function removing it.
func (s *Store) OnChange(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Dispose drops all listeners and stops navigation. The state stays
// readable.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.listeners = make(map[int]Listener)
}

// CheckPasswords is the local signup check; it never touches the network.
func CheckPasswords(secret, confirm string) error {
	if secret != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
