/*
Package session
File: store.go
Description:
    The Store owns the live session state for one player. Every transition
    goes through it: it reads the current state, applies a pure game
    function, schedules a debounced save and notifies subscribers.

    Lifecycle:
    - New:   "loading". Transitions are no-ops.
    - Open:  loads the persisted state (or the default) and becomes "ready".
    - Close: flushes the pending save and stops accepting transitions.

    Invalid transitions (unknown ids, redundant purchases, declined
    confirmations) are no-ops reported as applied=false, never errors.
*/

package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/save"
)

// DefaultAccrualInterval is how often passive earnings are applied.
const DefaultAccrualInterval = 500 * time.Millisecond

// ResetPrompt is shown before wiping progress.
const ResetPrompt = "Reset all progress? This cannot be undone."

// SwitchPrompt is shown before switching to the named character.
func SwitchPrompt(name string) string {
	return fmt.Sprintf("Switch to %s? This will reset your progress.", name)
}

// Confirm asks the player a yes/no question. Destructive transitions only
// commit when it returns true.
type Confirm func(prompt string) bool

// Confirmed is a Confirm that always agrees. Callers use it once the player
// has already said yes through another channel.
func Confirmed(string) bool { return true }

// Options configures a Store.
type Options struct {
	Catalog         *game.Catalog
	Adapter         *save.Adapter
	Debounce        time.Duration // Zero uses save.DefaultDebounce
	AccrualInterval time.Duration // Zero uses DefaultAccrualInterval
	Logger          *slog.Logger
}

// Store is the single writer of a session's state.
type Store struct {
	id       string
	adapter  *save.Adapter
	writer   *save.Debouncer[game.State]
	interval time.Duration
	log      *slog.Logger

	mu      sync.RWMutex
	catalog *game.Catalog
	state   game.State
	ready   bool
	closed  bool

	subMu     sync.Mutex
	subs      map[int]func(View)
	nextSubID int
}

// New builds a store in the loading phase.
func New(opts Options) *Store {
	if opts.Catalog == nil {
		panic("session: Options.Catalog is required")
	}
	if opts.Adapter == nil {
		opts.Adapter = save.NewAdapter(save.NewMemoryBackend(), opts.Logger)
	}
	if opts.AccrualInterval <= 0 {
		opts.AccrualInterval = DefaultAccrualInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.NewString()
	s := &Store{
		id:       id,
		adapter:  opts.Adapter,
		interval: opts.AccrualInterval,
		log:      opts.Logger.With("session", id),
		catalog:  opts.Catalog,
		state:    opts.Catalog.DefaultState(),
		subs:     make(map[int]func(View)),
	}
	s.writer = save.NewDebouncer(opts.Debounce, s.adapter.Save)
	return s
}

// ID identifies this store instance, e.g. as the sender of pushed updates.
func (s *Store) ID() string { return s.id }

// Open loads the persisted session and enables transitions. Calling it
// again is a no-op.
func (s *Store) Open() View {
	s.mu.Lock()
	if s.ready || s.closed {
		v := s.viewLocked()
		s.mu.Unlock()
		return v
	}

	loaded := s.adapter.Load(s.catalog.DefaultState())
	if _, ok := s.catalog.Character(loaded.SelectedCatID); !ok {
		s.log.Warn("saved character not in catalog, using default",
			"character", loaded.SelectedCatID, "default", s.catalog.DefaultID)
		loaded.SelectedCatID = s.catalog.DefaultID
	}
	s.state = loaded
	s.ready = true
	v := s.viewLocked()
	s.mu.Unlock()

	s.log.Info("session ready", "pets", game.WholePets(v.State.Pets), "character", v.State.SelectedCatID)
	s.notify(v)
	return v
}

// Close flushes any pending save and releases the storage backend.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.ready = false
	s.mu.Unlock()

	s.writer.Stop()
	return s.adapter.Close()
}

// Ready reports whether the store accepts transitions.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Catalog returns the content the store currently plays with.
func (s *Store) Catalog() *game.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() game.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// View returns the derived view of the current state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// AccrualInterval is the period the accrual driver should run at: the
// configured interval while passive income is positive, zero otherwise.
func (s *Store) AccrualInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready || game.PerSecondYield(s.catalog.Boosts, s.state.OwnedBoosts) <= 0 {
		return 0
	}
	return s.interval
}

// Tap earns one tap's worth of pets.
func (s *Store) Tap() (View, bool) {
	return s.apply(func(c *game.Catalog, st game.State) (game.State, bool) {
		return game.ApplyEarnings(st, game.PerClickYield(c.Boosts, st.OwnedBoosts)), true
	})
}

// Buy purchases the boost. Unknown, owned or unaffordable boosts are no-ops.
func (s *Store) Buy(boostID string) (View, bool) {
	return s.apply(func(c *game.Catalog, st game.State) (game.State, bool) {
		b, ok := c.Boost(boostID)
		if !ok || !game.CanPurchase(st, b) {
			return st, false
		}
		return game.Purchase(st, b), true
	})
}

// Tick applies elapsed time of passive accrual. It is a no-op while the
// per-second rate is zero.
func (s *Store) Tick(elapsed time.Duration) (View, bool) {
	return s.apply(func(c *game.Catalog, st game.State) (game.State, bool) {
		rate := game.PerSecondYield(c.Boosts, st.OwnedBoosts)
		if rate <= 0 || elapsed <= 0 {
			return st, false
		}
		return game.ApplyEarnings(st, rate*elapsed.Seconds()), true
	})
}

// DebugCredit adds amount pets unconditionally. Callers gate it behind a
// debug flag.
func (s *Store) DebugCredit(amount float64) (View, bool) {
	return s.apply(func(_ *game.Catalog, st game.State) (game.State, bool) {
		next := game.ApplyEarnings(st, amount)
		return next, next.TotalPets != st.TotalPets
	})
}

// SelectPrompt returns the confirmation prompt for switching to id, and
// false when the switch would be a no-op (unknown id, already active, or
// not ready).
func (s *Store) SelectPrompt(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.switchTargetLocked(id)
	if !ok {
		return "", false
	}
	return SwitchPrompt(ch.Name), true
}

// SelectCharacter switches to character id after confirm agrees. The switch
// resets all progress.
func (s *Store) SelectCharacter(id string, confirm Confirm) (View, bool) {
	prompt, ok := s.SelectPrompt(id)
	if !ok || confirm == nil || !confirm(prompt) {
		return s.View(), false
	}

	// Re-check: the state may have moved on while the player was deciding.
	return s.apply(func(c *game.Catalog, st game.State) (game.State, bool) {
		if _, ok := s.switchTargetLocked(id); !ok {
			return st, false
		}
		return game.SwitchCharacter(id), true
	})
}

// Reset wipes progress after confirm agrees. The session restarts from
// defaults under the lock; the durable record is removed after it is
// released, once any write already in flight has finished.
func (s *Store) Reset(confirm Confirm) (View, bool) {
	if !s.Ready() || confirm == nil || !confirm(ResetPrompt) {
		return s.View(), false
	}

	s.mu.Lock()
	if !s.ready {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, false
	}
	s.writer.Cancel()
	s.state = s.catalog.DefaultState()
	v := s.viewLocked()
	s.mu.Unlock()

	s.writer.Exclusive(s.adapter.Clear)
	s.log.Info("session reset")
	s.notify(v)
	return v, true
}

// ReplaceCatalog swaps in freshly loaded content. The selected character is
// kept when it still exists; otherwise views fall back to the default.
func (s *Store) ReplaceCatalog(c *game.Catalog) {
	s.mu.Lock()
	s.catalog = c
	v := s.viewLocked()
	s.mu.Unlock()

	s.log.Info("content replaced", "characters", len(c.Characters), "boosts", len(c.Boosts))
	s.notify(v)
}

// Subscribe registers fn to receive the view after every applied
// transition. fn runs outside the store lock and may call back into the
// store. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(View)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// apply runs one transition under the write lock. fn receives a private
// copy of the state and reports whether it changed anything.
func (s *Store) apply(fn func(*game.Catalog, game.State) (game.State, bool)) (View, bool) {
	s.mu.Lock()
	if !s.ready {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, false
	}

	next, changed := fn(s.catalog, s.state.Clone())
	if changed {
		s.state = next
		s.writer.Call(next.Clone())
	}
	v := s.viewLocked()
	s.mu.Unlock()

	if changed {
		s.notify(v)
	}
	return v, changed
}

// switchTargetLocked resolves id as a character different from the active
// one. s.mu must be held.
func (s *Store) switchTargetLocked(id string) (game.Character, bool) {
	if !s.ready {
		return game.Character{}, false
	}
	ch, ok := s.catalog.Character(id)
	if !ok || s.catalog.ActiveCharacter(s.state).ID == id {
		return game.Character{}, false
	}
	return ch, true
}

func (s *Store) notify(v View) {
	s.subMu.Lock()
	fns := make([]func(View), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
