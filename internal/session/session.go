// Package session tracks the authenticated identity and bearer credential
// for one client instance, and owns the login/register/logout mutations
// against the remote user endpoints.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"finsight/internal/api"
	"finsight/internal/store"
)

// ErrLoginInProgress is returned when an auth call is issued while another
// one is still in flight. The second call fails fast instead of racing.
var ErrLoginInProgress = errors.New("an authentication request is already in progress")

var errNoClient = errors.New("no API client attached")

// Identity is who the user is, as far as the client knows.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
}

// Session pairs an identity with the bearer credential. The UI treats the
// user as authenticated iff Identity is set.
type Session struct {
	Identity *Identity
	Token    string
}

// AuthError reports a rejected or failed authentication attempt.
type AuthError struct {
	Op  string // "login" or "register"
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Store holds at most one live Session per client instance.
type Store struct {
	state *store.StateStore
	log   *slog.Logger

	mu       sync.Mutex
	client   *api.Client
	current  *Session
	inFlight bool
}

// NewStore creates a session store backed by the given durable state. The
// API client is attached separately via SetClient since the client itself
// reads tokens from this store.
func NewStore(state *store.StateStore, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{state: state, log: log}
}

// SetClient attaches the API gateway client used for the remote auth calls.
func (s *Store) SetClient(c *api.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
}

// Token implements api.TokenSource: it yields the live session's credential,
// or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Current returns a copy of the live session, or nil when there is none.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	if s.current.Identity != nil {
		id := *s.current.Identity
		cp.Identity = &id
	}
	return &cp
}

// Authenticated reports whether an identity is attached to the live session.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Identity != nil
}

// Rehydrate restores a token-only session from durable storage, so a
// restarted client keeps attaching its stored credential. Called once at
// startup before the store is otherwise queried.
func (s *Store) Rehydrate(ctx context.Context) error {
	tok, err := s.state.LoadToken(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.current = &Session{Token: tok}
	}
	return nil
}

// authResponse is the success shape of the login/signup endpoints. The token
// is optional: cookie-based deployments rely on the cookie jar instead.
type authResponse struct {
	Token string `json:"token"`
}

// Login authenticates against POST /user/login and installs the resulting
// session. A concurrent call fails fast with ErrLoginInProgress.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &api.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &api.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	return s.authenticate(ctx, "login", "/user/login",
		map[string]string{"email": email, "password": password},
		&Identity{Email: email})
}

// Register creates an account via POST /user/signup and installs the
// resulting session.
func (s *Store) Register(ctx context.Context, firstName, lastName, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &api.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &api.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	return s.authenticate(ctx, "register", "/user/signup",
		map[string]string{
			"firstName": firstName,
			"lastName":  lastName,
			"email":     email,
			"password":  password,
		},
		&Identity{Email: email, FirstName: firstName, LastName: lastName})
}

func (s *Store) authenticate(ctx context.Context, op, path string, body any, id *Identity) (*Session, error) {
	s.mu.Lock()
	if s.client == nil {
		s.mu.Unlock()
		return nil, &AuthError{Op: op, Err: errNoClient}
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	s.inFlight = true
	client := s.client
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	raw, err := client.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, &AuthError{Op: op, Err: err}
	}

	var resp authResponse
	if raw != nil {
		if err := api.Decode(raw, &resp); err != nil {
			return nil, &AuthError{Op: op, Err: err}
		}
	}

	sess := &Session{Identity: id, Token: resp.Token}

	if resp.Token != "" {
		if err := s.state.SaveToken(ctx, resp.Token); err != nil {
			// The session is still live for this process; only the reload
			// path loses out.
			s.log.Warn("persisting credential", "error", err)
		}
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.log.Info("authenticated", "op", op, "email", id.Email)
	return sess, nil
}

// Logout destroys the local session and clears the stored credential. The
// remote invalidation call is best-effort: a stuck authenticated UI is worse
// than a stale remote session, so its failure is logged and swallowed.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client != nil {
		if _, err := client.Request(ctx, http.MethodPost, "/user/logout", nil); err != nil {
			s.log.Warn("remote logout failed", "error", err)
		}
	}

	if err := s.state.ClearToken(ctx); err != nil {
		s.log.Warn("clearing stored credential", "error", err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.log.Info("logged out")
}
