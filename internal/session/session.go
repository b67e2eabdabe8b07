// Package session tracks who is using Inkwell. A Manager moves between
// AnonymousLoading, Anonymous and Authenticated, and mirrors the signed-in
// user into a durable Slot so the state survives restarts.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"inkwell/internal/models"
)

// SlotKey is the single key the signed-in user is stored under.
const SlotKey = "current_user"

// ErrEmptySlot is returned by Slot.Load when nobody is signed in.
var ErrEmptySlot = errors.New("session slot is empty")

type State int

const (
	StateAnonymousLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "loading"
	}
}

// Session is the value handed to every write operation.
type Session struct {
	State State
	User  *models.User
}

// Anonymous is the session of a visitor who has not signed in.
func Anonymous() Session {
	return Session{State: StateAnonymous}
}

// Authenticated builds a signed-in session for u.
func Authenticated(u *models.User) Session {
	return Session{State: StateAuthenticated, User: u}
}

func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// UserID is empty for anonymous sessions.
func (s Session) UserID() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.User.ID
}

// Slot is durable storage for the signed-in user.
type Slot interface {
	Load(ctx context.Context) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	Clear(ctx context.Context) error
}

// Authenticator resolves credentials to users.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, displayName, username, email, password string) (*models.User, error)
}

// Manager owns the session state machine for one slot.
type Manager struct {
	mu    sync.RWMutex
	slot  Slot
	auth  Authenticator
	log   zerolog.Logger
	state State
	user  *models.User
}

func NewManager(slot Slot, auth Authenticator, log zerolog.Logger) *Manager {
	return &Manager{
		slot:  slot,
		auth:  auth,
		log:   log.With().Str("component", "session").Logger(),
		state: StateAnonymousLoading,
	}
}

// Restore reads the slot. An empty or unreadable slot leaves the session
// anonymous; a corrupt entry is cleared.
func (m *Manager) Restore(ctx context.Context) Session {
	u, err := m.slot.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err == nil:
		m.state, m.user = StateAuthenticated, u
	case errors.Is(err, ErrEmptySlot):
		m.state, m.user = StateAnonymous, nil
	default:
		m.log.Warn().Err(err).Msg("Failed to restore session, signing out")
		if cerr := m.slot.Clear(ctx); cerr != nil {
			m.log.Error().Err(cerr).Msg("Failed to clear session slot")
		}
		m.state, m.user = StateAnonymous, nil
	}
	return m.snapshot()
}

// Login signs in and persists the user. On failure the state is unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return m.Current(), err
	}
	return m.signIn(ctx, u)
}

// Signup creates an account and signs it in.
func (m *Manager) Signup(ctx context.Context, displayName, username, email, password string) (Session, error) {
	u, err := m.auth.Signup(ctx, displayName, username, email, password)
	if err != nil {
		return m.Current(), err
	}
	return m.signIn(ctx, u)
}

func (m *Manager) signIn(ctx context.Context, u *models.User) (Session, error) {
	snap := u.Snapshot()
	if err := m.slot.Save(ctx, &snap); err != nil {
		return m.Current(), err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.user = StateAuthenticated, &snap
	m.log.Info().Str("user_id", snap.ID).Msg("Signed in")
	return m.snapshot(), nil
}

// Logout clears the slot and returns to Anonymous.
func (m *Manager) Logout(ctx context.Context) (Session, error) {
	if err := m.slot.Clear(ctx); err != nil {
		return m.Current(), err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.user = StateAnonymous, nil
	return m.snapshot(), nil
}

// Current returns the session as of now.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// snapshot copies state out; caller holds m.mu.
func (m *Manager) snapshot() Session {
	if m.user == nil {
		return Session{State: m.state}
	}
	u := *m.user
	return Session{State: m.state, User: &u}
}
