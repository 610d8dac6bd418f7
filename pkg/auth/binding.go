package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/esms-io/esms-go/pkg/model"
	"github.com/esms-io/esms-go/pkg/store"
)

// DefaultRefreshInterval is how often an active binding asks the
// Manager whether the token should be renewed.
const DefaultRefreshInterval = time.Minute

// State is the observed session surface the binding publishes.
// IsAuthenticated is re-derived through the Manager's expiry check, not
// merely "Session is non-nil".
type State struct {
	Session         *Session
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
	// Err carries the last failed operation's message, or empty.
	Err string
}

// BindingOptions configures a Binding.
type BindingOptions struct {
	// Watcher delivers store-change notifications from sibling
	// contexts. Nil disables cross-context sync.
	Watcher store.Watcher
	// Interval overrides DefaultRefreshInterval.
	Interval time.Duration
	// OnChange is invoked synchronously after every published state.
	OnChange func(State)
	Logger   zerolog.Logger
}

// Binding adapts the Manager's pull-based state to a continuously
// observed surface and drives the timed refresh loop. One binding per
// observing context; all bindings share the Manager's store.
type Binding struct {
	mgr      *Manager
	watcher  store.Watcher
	interval time.Duration
	onChange func(State)
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	stopped bool

	updates  chan State
	wake     chan struct{}
	stop     chan struct{}
	loopDone chan struct{}

	refreshing atomic.Bool
}

// NewBinding builds a Binding over mgr. Call Start to activate it.
func NewBinding(mgr *Manager, opts BindingOptions) *Binding {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Binding{
		mgr:      mgr,
		watcher:  opts.Watcher,
		interval: interval,
		onChange: opts.OnChange,
		log:      opts.Logger,
		state:    State{IsLoading: true},
		updates:  make(chan State, 16),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Start loads and publishes the current session, registers the
// store-change listener and starts the refresh loop. The returned stop
// function tears all of it down and is safe to call more than once.
func (b *Binding) Start() (func(), error) {
	var stopWatch func()
	if b.watcher != nil {
		var err error
		stopWatch, err = b.watcher.Watch(func(key string) {
			// An empty key means "everything changed".
			if key == "" || key == b.mgr.SessionKey() {
				b.Reload()
			}
		})
		if err != nil {
			return nil, err
		}
	}

	go b.refreshLoop()
	b.Reload()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.stopped = true
			b.mu.Unlock()
			if stopWatch != nil {
				stopWatch()
			}
			close(b.stop)
			<-b.loopDone
		})
	}, nil
}

// Snapshot returns the current published state.
func (b *Binding) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Updates exposes published states as a stream. Slow consumers miss
// intermediate states rather than blocking the binding.
func (b *Binding) Updates() <-chan State {
	return b.updates
}

// Reload re-reads the session from the store and republishes it. The
// store watcher funnels sibling-context changes through here.
func (b *Binding) Reload() {
	s := b.mgr.LoadSession()
	b.mu.Lock()
	errMsg := b.state.Err
	b.mu.Unlock()
	b.publish(s, false, errMsg)
}

// Login delegates to the Manager, publishes the outcome and re-raises
// the failure so callers can handle it locally as well.
func (b *Binding) Login(ctx context.Context, creds Credentials) error {
	b.setLoading()
	s, err := b.mgr.Login(ctx, creds)
	if err != nil {
		b.publish(b.Snapshot().Session, false, err.Error())
		return err
	}
	b.publish(s, false, "")
	return nil
}

// Logout clears the session locally regardless of the remote outcome
// and publishes the unauthenticated state.
func (b *Binding) Logout(ctx context.Context) error {
	b.setLoading()
	if err := b.mgr.Logout(ctx); err != nil {
		b.publish(nil, false, err.Error())
		return err
	}
	b.publish(nil, false, "")
	return nil
}

// RefreshToken forces a renewal attempt. A concurrent attempt (the
// timer or another caller) makes this a no-op. Failures are recorded in
// the published state and returned.
func (b *Binding) RefreshToken(ctx context.Context) error {
	if !b.refreshing.CompareAndSwap(false, true) {
		return nil
	}
	defer b.refreshing.Store(false)

	s, err := b.mgr.Refresh(ctx)
	if err != nil {
		b.publish(b.Snapshot().Session, false, err.Error())
		return err
	}
	if s != nil {
		b.publish(s, false, "")
	}
	return nil
}

// HasRole delegates to the Manager's role check.
func (b *Binding) HasRole(required ...model.Role) bool {
	return b.mgr.HasRole(required...)
}

func (b *Binding) setLoading() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.state.IsLoading = true
	b.state.Err = ""
	next := b.state
	b.mu.Unlock()
	b.emit(next)
}

func (b *Binding) publish(s *Session, loading bool, errMsg string) {
	next := State{
		Session:         s,
		IsAuthenticated: s != nil && b.mgr.IsAuthenticated(),
		IsLoading:       loading,
		Err:             errMsg,
	}
	if s != nil {
		user := s.User
		next.User = &user
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.state = next
	b.mu.Unlock()

	// Let the refresh loop re-evaluate session presence.
	select {
	case b.wake <- struct{}{}:
	default:
	}
	b.emit(next)
}

func (b *Binding) emit(s State) {
	if b.onChange != nil {
		b.onChange(s)
	}
	select {
	case b.updates <- s:
	default:
	}
}

// refreshLoop owns the periodic refresh check. The ticker only runs
// while a session is published and is stopped as soon as the session
// disappears or the binding is torn down, so no orphaned timer keeps
// polling after a logout.
func (b *Binding) refreshLoop() {
	defer close(b.loopDone)

	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-b.stop:
			return
		case <-b.wake:
			if b.Snapshot().Session == nil {
				stopTicker()
				continue
			}
			if ticker == nil {
				ticker = time.NewTicker(b.interval)
				tick = ticker.C
				// Check immediately when the session first appears.
				b.checkRefresh()
			}
		case <-tick:
			b.checkRefresh()
		}
	}
}

// checkRefresh performs at most one renewal attempt at a time. A
// renewal that fails or yields no session clears the published state:
// forcing a re-login beats holding a token that may be stale.
func (b *Binding) checkRefresh() {
	if !b.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer b.refreshing.Store(false)

	if !b.mgr.ShouldRefresh() {
		return
	}
	s, err := b.mgr.Refresh(context.Background())
	if err != nil {
		b.log.Warn().Err(err).Msg("scheduled token refresh failed")
		b.publish(nil, false, err.Error())
		return
	}
	if s == nil {
		b.publish(nil, false, "")
		return
	}
	b.publish(s, false, "")
}
