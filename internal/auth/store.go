package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/amaracare/careops-backend/internal/users"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
)

// SessionProvider is the backend surface the session store drives. The
// Service implementation satisfies it; tests substitute stubs.
type SessionProvider interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Resume(ctx context.Context, accessToken string) (*SessionInfo, error)
	SignOut(ctx context.Context, accessToken string) error
	UpdateIdentity(ctx context.Context, actor Actor, targetID uuid.UUID, req UpdateIdentityRequest) (*users.UserDTO, error)
}

// TokenKeeper persists the access token between process restarts so a
// session can be restored. The default keeper holds it in memory.
type TokenKeeper interface {
	Token() (string, bool)
	Store(token string)
	Clear()
}

type memoryKeeper struct {
	mu    sync.Mutex
	token string
}

func (m *memoryKeeper) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *memoryKeeper) Store(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *memoryKeeper) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

// ClientSession is the store's snapshot of the signed-in user.
type ClientSession struct {
	Token        string
	User         *users.UserDTO
	Role         enums.Role
	DefaultRoute string
}

// Listener observes session transitions. A nil session means signed out.
type Listener func(*ClientSession)

// Store holds the single authoritative client session. All transitions go
// through it: concurrent logins are rejected, and a logout issued while a
// login is in flight wins over the login's late result.
type Store struct {
	mu          sync.Mutex
	provider    SessionProvider
	keeper      TokenKeeper
	current     *ClientSession
	loginActive bool
	logoutEpoch uint64
	listeners   []Listener
}

// NewStore builds a session store over the provider. A nil keeper gets an
// in-memory one.
func NewStore(provider SessionProvider, keeper TokenKeeper) (*Store, error) {
	if provider == nil {
		return nil, fmt.Errorf("session provider is required")
	}
	if keeper == nil {
		keeper = &memoryKeeper{}
	}
	return &Store{provider: provider, keeper: keeper}, nil
}

// Subscribe registers a listener for session transitions.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Current returns a snapshot of the session, or nil when signed out.
func (s *Store) Current() *ClientSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.current)
}

// Login authenticates and installs the resulting session. Only one login
// may be in flight at a time; a second attempt is rejected outright rather
// than queued.
func (s *Store) Login(ctx context.Context, req LoginRequest) (*ClientSession, error) {
	s.mu.Lock()
	if s.loginActive {
		s.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a login attempt is already in progress")
	}
	s.loginActive = true
	epoch := s.logoutEpoch
	s.mu.Unlock()

	resp, err := s.provider.Login(ctx, req)

	s.mu.Lock()
	s.loginActive = false
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.logoutEpoch != epoch {
		// The user signed out while this login was in flight. Their intent
		// wins: discard the result and release the orphaned session.
		s.mu.Unlock()
		_ = s.provider.SignOut(ctx, resp.AccessToken)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "login superseded by sign-out")
	}

	sess := &ClientSession{
		Token:        resp.AccessToken,
		User:         resp.User,
		Role:         resp.User.Role,
		DefaultRoute: resp.DefaultRoute,
	}
	s.current = sess
	s.keeper.Store(resp.AccessToken)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, cloneSession(sess))
	return cloneSession(sess), nil
}

// Logout clears the local session unconditionally and revokes the remote
// one best effort. It never returns an error: a failed remote call must not
// leave the user stuck signed in.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.logoutEpoch++
	prev := s.current
	s.current = nil
	s.keeper.Clear()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, nil)

	if prev != nil {
		_ = s.provider.SignOut(ctx, prev.Token)
	}
}

// Restore rebuilds the session from a persisted token on startup. It never
// returns an error: any failure leaves the store signed out. The persisted
// token is only discarded when the backend positively rejects it, so a
// transient outage does not log the user out for good.
func (s *Store) Restore(ctx context.Context) *ClientSession {
	token, ok := s.keeper.Token()
	if !ok {
		return nil
	}

	s.mu.Lock()
	epoch := s.logoutEpoch
	s.mu.Unlock()

	info, err := s.provider.Resume(ctx, token)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeUnauthorized, pkgerrors.CodeAccountInactive:
				s.keeper.Clear()
			}
		}
		return nil
	}

	s.mu.Lock()
	if s.logoutEpoch != epoch {
		s.mu.Unlock()
		return nil
	}
	sess := &ClientSession{
		Token:        token,
		User:         info.User,
		Role:         info.Role,
		DefaultRoute: info.DefaultRoute,
	}
	s.current = sess
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, cloneSession(sess))
	return cloneSession(sess)
}

// UpdateIdentity applies a profile update for the signed-in user and folds
// the fresh record back into the session snapshot.
func (s *Store) UpdateIdentity(ctx context.Context, req UpdateIdentityRequest) (*users.UserDTO, error) {
	s.mu.Lock()
	current := s.current
	epoch := s.logoutEpoch
	s.mu.Unlock()

	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
	}

	actor := Actor{ID: current.User.ID, Role: current.Role}
	updated, err := s.provider.UpdateIdentity(ctx, actor, current.User.ID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	var listeners []Listener
	var snapshot *ClientSession
	if s.logoutEpoch == epoch && s.current != nil {
		s.current.User = updated
		listeners = s.snapshotListeners()
		snapshot = cloneSession(s.current)
	}
	s.mu.Unlock()

	notify(listeners, snapshot)
	return updated, nil
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func notify(listeners []Listener, sess *ClientSession) {
	for _, fn := range listeners {
		fn(sess)
	}
}

func cloneSession(sess *ClientSession) *ClientSession {
	if sess == nil {
		return nil
	}
	clone := *sess
	return &clone
}
