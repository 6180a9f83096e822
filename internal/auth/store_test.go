package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amaracare/careops-backend/internal/users"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
)

type stubProvider struct {
	mu         sync.Mutex
	loginResp  *LoginResponse
	loginErr   error
	loginGate  chan struct{}
	resumeInfo *SessionInfo
	resumeErr  error
	signOutErr error
	signedOut  []string
	updated    *users.UserDTO
	updateErr  error
}

func (p *stubProvider) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if p.loginGate != nil {
		<-p.loginGate
	}
	if p.loginErr != nil {
		return nil, p.loginErr
	}
	return p.loginResp, nil
}

func (p *stubProvider) Resume(ctx context.Context, accessToken string) (*SessionInfo, error) {
	if p.resumeErr != nil {
		return nil, p.resumeErr
	}
	return p.resumeInfo, nil
}

func (p *stubProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	p.signedOut = append(p.signedOut, accessToken)
	p.mu.Unlock()
	return p.signOutErr
}

func (p *stubProvider) UpdateIdentity(ctx context.Context, actor Actor, targetID uuid.UUID, req UpdateIdentityRequest) (*users.UserDTO, error) {
	if p.updateErr != nil {
		return nil, p.updateErr
	}
	return p.updated, nil
}

func (p *stubProvider) signOutCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.signedOut)
}

func testLoginResponse() *LoginResponse {
	return &LoginResponse{
		AccessToken:  "token-1",
		RefreshToken: "refresh-1",
		User: &users.UserDTO{
			ID:       uuid.New(),
			Email:    "member@example.org",
			Role:     enums.RoleStaff,
			IsActive: true,
		},
		DefaultRoute: "/staff",
	}
}

func TestStoreLoginInstallsSessionAndNotifies(t *testing.T) {
	provider := &stubProvider{loginResp: testLoginResponse()}
	store, err := NewStore(provider, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var transitions []*ClientSession
	store.Subscribe(func(sess *ClientSession) {
		transitions = append(transitions, sess)
	})

	sess, err := store.Login(context.Background(), LoginRequest{Email: "member@example.org", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Role != enums.RoleStaff || sess.DefaultRoute != "/staff" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if got := store.Current(); got == nil || got.Token != "token-1" {
		t.Fatalf("expected current session, got %+v", got)
	}
	if len(transitions) != 1 || transitions[0] == nil {
		t.Fatalf("expected one signed-in transition, got %d", len(transitions))
	}
}

func TestStoreRejectsConcurrentLogin(t *testing.T) {
	gate := make(chan struct{})
	provider := &stubProvider{loginResp: testLoginResponse(), loginGate: gate}
	store, err := NewStore(provider, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := store.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "pw"})
		firstDone <- err
	}()

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.loginActive
	})

	_, err = store.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "pw"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for overlapping login, got %v", err)
	}

	close(gate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first login: %v", err)
	}
}

func TestStoreLogoutDuringLoginWins(t *testing.T) {
	gate := make(chan struct{})
	provider := &stubProvider{loginResp: testLoginResponse(), loginGate: gate}
	store, err := NewStore(provider, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	loginDone := make(chan error, 1)
	go func() {
		_, err := store.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "pw"})
		loginDone <- err
	}()

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.loginActive
	})

	store.Logout(context.Background())
	close(gate)

	err = <-loginDone
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected superseded login to fail, got %v", err)
	}
	if store.Current() != nil {
		t.Fatalf("late login result must not resurrect the session")
	}
	// The orphaned server session gets released.
	if provider.signOutCount() != 1 {
		t.Fatalf("expected orphaned session sign-out, got %d", provider.signOutCount())
	}
}

func TestStoreLogoutAlwaysClearsLocally(t *testing.T) {
	provider := &stubProvider{
		loginResp:  testLoginResponse(),
		signOutErr: errors.New("backend down"),
	}
	store, err := NewStore(provider, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	var last *ClientSession = &ClientSession{}
	store.Subscribe(func(sess *ClientSession) { last = sess })

	store.Logout(context.Background())
	if store.Current() != nil {
		t.Fatalf("expected cleared session despite provider failure")
	}
	if last != nil {
		t.Fatalf("expected signed-out notification")
	}

	// Logging out twice is harmless.
	store.Logout(context.Background())
	if store.Current() != nil {
		t.Fatalf("second logout must stay signed out")
	}
}

func TestStoreRestore(t *testing.T) {
	keeper := &memoryKeeper{}
	keeper.Store("persisted-token")
	provider := &stubProvider{
		resumeInfo: &SessionInfo{
			User:         &users.UserDTO{ID: uuid.New(), Role: enums.RoleAdmin, IsActive: true},
			Role:         enums.RoleAdmin,
			DefaultRoute: "/admin",
		},
	}
	store, err := NewStore(provider, keeper)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	sess := store.Restore(context.Background())
	if sess == nil || sess.Role != enums.RoleAdmin || sess.Token != "persisted-token" {
		t.Fatalf("unexpected restored session %+v", sess)
	}
}

func TestStoreRestoreNeverErrors(t *testing.T) {
	// No persisted token.
	provider := &stubProvider{}
	store, err := NewStore(provider, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if sess := store.Restore(context.Background()); sess != nil {
		t.Fatalf("expected nil session without token, got %+v", sess)
	}

	// Backend rejects the token outright: it gets discarded.
	keeper := &memoryKeeper{}
	keeper.Store("stale-token")
	provider = &stubProvider{resumeErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "session is no longer valid")}
	store, err = NewStore(provider, keeper)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if sess := store.Restore(context.Background()); sess != nil {
		t.Fatalf("expected nil session for rejected token, got %+v", sess)
	}
	if _, ok := keeper.Token(); ok {
		t.Fatalf("rejected token should be discarded")
	}

	// Transient outage: signed out for now, but the token survives.
	keeper = &memoryKeeper{}
	keeper.Store("good-token")
	provider = &stubProvider{resumeErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("redis down"), "check session")}
	store, err = NewStore(provider, keeper)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if sess := store.Restore(context.Background()); sess != nil {
		t.Fatalf("expected nil session during outage, got %+v", sess)
	}
	if _, ok := keeper.Token(); !ok {
		t.Fatalf("token must survive a transient outage")
	}
}

func TestStoreUpdateIdentity(t *testing.T) {
	resp := testLoginResponse()
	updated := *resp.User
	updated.FullName = "Renamed"
	provider := &stubProvider{loginResp: resp, updated: &updated}
	store, err := NewStore(provider, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.UpdateIdentity(context.Background(), UpdateIdentityRequest{}); err == nil {
		t.Fatalf("expected error without a session")
	}

	if _, err := store.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	name := "Renamed"
	got, err := store.UpdateIdentity(context.Background(), UpdateIdentityRequest{FullName: &name})
	if err != nil {
		t.Fatalf("update identity: %v", err)
	}
	if got.FullName != "Renamed" {
		t.Fatalf("expected renamed user, got %s", got.FullName)
	}
	if current := store.Current(); current.User.FullName != "Renamed" {
		t.Fatalf("session snapshot not refreshed: %s", current.User.FullName)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
