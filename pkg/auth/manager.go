package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/esms-io/esms-go/pkg/model"
	"github.com/esms-io/esms-go/pkg/store"
	"github.com/esms-io/esms-go/pkg/transport"
)

const (
	loginPath   = "/api/v1/auth/login"
	logoutPath  = "/api/v1/auth/logout"
	refreshPath = "/api/v1/auth/refresh"
)

// DefaultRefreshLead is how close to expiry a token must be before
// ShouldRefresh reports true. Five minutes keeps one scheduled check
// (the binding polls every minute) comfortably inside the window.
const DefaultRefreshLead = 5 * time.Minute

// ManagerOptions configures a Manager. Client and Store are required.
type ManagerOptions struct {
	Client *transport.Client
	Store  store.Store
	// SessionKey overrides DefaultSessionKey.
	SessionKey string
	// RefreshLead overrides DefaultRefreshLead.
	RefreshLead time.Duration
	Logger      zerolog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager is the sole authority for session validity, persistence and
// renewal. It is the only writer to the Store; any number of bindings
// may read through it concurrently.
type Manager struct {
	client      *transport.Client
	store       store.Store
	sessionKey  string
	refreshLead time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewManager wires a Manager from opts.
func NewManager(opts ManagerOptions) *Manager {
	key := opts.SessionKey
	if key == "" {
		key = DefaultSessionKey
	}
	lead := opts.RefreshLead
	if lead <= 0 {
		lead = DefaultRefreshLead
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		client:      opts.Client,
		store:       opts.Store,
		sessionKey:  key,
		refreshLead: lead,
		log:         opts.Logger,
		now:         now,
	}
}

// SessionKey returns the store key the session record lives under.
func (m *Manager) SessionKey() string { return m.sessionKey }

// LoadSession reads the persisted session. A corrupt record is purged
// and reported as absent, so the store self-heals.
func (m *Manager) LoadSession() *Session {
	raw, ok := m.store.Get(m.sessionKey)
	if !ok {
		return nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		m.log.Warn().Err(err).Msg("purging corrupt session record")
		_ = m.store.Remove(m.sessionKey)
		return nil
	}
	return &s
}

// SaveSession persists s wholesale under the session key.
func (m *Manager) SaveSession(s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.store.Set(m.sessionKey, string(raw))
}

// ClearSession removes the persisted session.
func (m *Manager) ClearSession() error {
	return m.store.Remove(m.sessionKey)
}

// Login exchanges credentials for a session and persists it. A failed
// exchange propagates the transport error untouched and writes nothing.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	resp, err := transport.Post[Session](ctx, m.client, loginPath, creds)
	if err != nil {
		return nil, err
	}
	session := resp.Data
	if err := m.SaveSession(&session); err != nil {
		return nil, err
	}
	m.log.Info().Str("user", session.User.ID).Msg("login succeeded")
	return &session, nil
}

// Logout invalidates the remote session best-effort and unconditionally
// clears the local record. A failing remote call never blocks the local
// clear; logout is locally authoritative.
func (m *Manager) Logout(ctx context.Context) error {
	defer func() {
		if err := m.ClearSession(); err != nil {
			m.log.Warn().Err(err).Msg("clearing session after logout")
		}
	}()
	if _, err := transport.Post[any](ctx, m.client, logoutPath, nil); err != nil {
		m.log.Warn().Err(err).Msg("remote logout failed, clearing locally anyway")
	}
	return nil
}

// Refresh exchanges the stored refresh token for a new session, which
// replaces the old one wholesale. Without a session or refresh token it
// returns (nil, nil). On failure the stored session is left untouched;
// interpreting the failure is the caller's responsibility.
func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	current := m.LoadSession()
	if current == nil || current.RefreshToken == "" {
		return nil, nil
	}
	body := map[string]string{"refreshToken": current.RefreshToken}
	resp, err := transport.Post[Session](ctx, m.client, refreshPath, body)
	if err != nil {
		return nil, err
	}
	session := resp.Data
	if err := m.SaveSession(&session); err != nil {
		return nil, err
	}
	m.log.Debug().Str("user", session.User.ID).Msg("session refreshed")
	return &session, nil
}

// IsAuthenticated reports whether a valid session is stored. Reading an
// expired session purges it on the way out, then reports false.
func (m *Manager) IsAuthenticated() bool {
	s := m.LoadSession()
	if s == nil {
		return false
	}
	if exp := s.expiry(); !exp.IsZero() && m.now().After(exp) {
		_ = m.ClearSession()
		return false
	}
	return true
}

// CurrentUser projects the stored session's user, or nil when there is
// no valid session.
func (m *Manager) CurrentUser() *model.User {
	if !m.IsAuthenticated() {
		return nil
	}
	s := m.LoadSession()
	if s == nil {
		return nil
	}
	user := s.User
	return &user
}

// HasRole reports whether the current user's role matches one of the
// required roles exactly. Unauthenticated is always false.
func (m *Manager) HasRole(required ...model.Role) bool {
	user := m.CurrentUser()
	if user == nil {
		return false
	}
	for _, role := range required {
		if user.Role == role {
			return true
		}
	}
	return false
}

// ShouldRefresh reports whether the stored token is inside the refresh
// lead window of its expiry. Sessions without a refresh token or
// without a known expiry never ask to be refreshed.
func (m *Manager) ShouldRefresh() bool {
	s := m.LoadSession()
	if s == nil || s.RefreshToken == "" {
		return false
	}
	exp := s.expiry()
	if exp.IsZero() {
		return false
	}
	return m.now().After(exp.Add(-m.refreshLead))
}
