package session

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/save"
)

func testCatalog() *game.Catalog {
	character := func(id, name string) game.Character {
		return game.Character{
			ID:   id,
			Name: name,
			Sprites: game.Sprites{
				Images: map[string]string{"idle": id + "/idle.png", "happy": id + "/happy.png"},
				Stages: []game.Stage{{MinPets: 0, Key: "idle"}, {MinPets: 10, Key: "happy"}},
			},
		}
	}
	return game.NewCatalog(
		[]game.Character{character("orange-tabby", "Orange Tabby"), character("tabby-cat", "Tabby Cat")},
		[]game.Boost{
			{ID: "double", Kind: game.KindClickMultiplier, Title: "Double", Price: 10, Value: 2},
			{ID: "auto", Kind: game.KindAutoClick, Title: "Auto", Price: 5, Value: 2, IntervalMs: 1000},
			{ID: "pricey", Kind: game.KindClickMultiplier, Title: "Pricey", Price: 1_000_000, Value: 3},
		},
		"",
	)
}

func newStore(t *testing.T, backend save.Backend) *Store {
	t.Helper()
	s := New(Options{
		Catalog:  testCatalog(),
		Adapter:  save.NewAdapter(backend, nil),
		Debounce: time.Hour,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func tapN(s *Store, n int) {
	for range n {
		s.Tap()
	}
}

func TestTransitionsBeforeOpenAreNoops(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())

	_, ok := s.Tap()
	assert.False(t, ok)
	_, ok = s.DebugCredit(100)
	assert.False(t, ok)
	_, ok = s.SelectCharacter("tabby-cat", Confirmed)
	assert.False(t, ok)
	_, ok = s.Reset(Confirmed)
	assert.False(t, ok)
	assert.Zero(t, s.AccrualInterval())

	s.Open()
	assert.True(t, s.Ready())
	_, ok = s.Tap()
	assert.True(t, ok)
}

func TestViewSaturatesHugeBalances(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())
	s.Open()

	v, ok := s.DebugCredit(1e19)
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), v.Pets)
	assert.Equal(t, int64(math.MaxInt64), v.TotalPets)
	for _, item := range v.Shop {
		assert.True(t, item.Affordable, item.Boost.ID)
	}
}

func TestTapAndBuy(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())
	s.Open()

	tapN(s, 9)
	v, ok := s.Buy("double")
	assert.False(t, ok, "9 pets cannot buy a 10 pet boost")
	assert.False(t, v.Shop[0].Affordable)

	v, _ = s.Tap()
	assert.True(t, v.Shop[0].Affordable)

	v, ok = s.Buy("double")
	require.True(t, ok)
	assert.Equal(t, int64(0), v.Pets)
	assert.Equal(t, int64(10), v.TotalPets, "spending never lowers the lifetime total")
	assert.Equal(t, 2.0, v.PerClick)
	assert.True(t, v.Shop[0].Owned)

	before := s.Snapshot()
	_, ok = s.Buy("double")
	assert.False(t, ok)
	assert.Equal(t, before, s.Snapshot(), "second purchase changes nothing")

	_, ok = s.Buy("no-such-boost")
	assert.False(t, ok)

	v, _ = s.Tap()
	assert.Equal(t, int64(2), v.Pets)
	assert.Equal(t, "happy", v.StageKey)
	assert.Equal(t, "orange-tabby/happy.png", v.Sprite)
	assert.True(t, v.AtMaxStage)
}

func TestTickAccruesOnlyWithPassiveIncome(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())
	s.Open()

	_, ok := s.Tick(500 * time.Millisecond)
	assert.False(t, ok, "no autoClick owned")
	assert.Zero(t, s.AccrualInterval())

	tapN(s, 5)
	_, ok = s.Buy("auto")
	require.True(t, ok)
	assert.Equal(t, DefaultAccrualInterval, s.AccrualInterval())

	v, ok := s.Tick(500 * time.Millisecond)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v.State.Pets, 1e-9)
	assert.Equal(t, "2.0", v.PerSecondLabel)

	v, _ = s.Tick(250 * time.Millisecond)
	assert.InDelta(t, 1.5, v.State.Pets, 1e-9, "fractional accrual is kept in memory")
	assert.Equal(t, int64(1), v.Pets)

	_, ok = s.Tick(0)
	assert.False(t, ok)
}

func TestSelectCharacterNeedsConfirmation(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())
	s.Open()
	tapN(s, 12)

	var asked string
	decline := func(prompt string) bool { asked = prompt; return false }

	_, ok := s.SelectCharacter("tabby-cat", decline)
	assert.False(t, ok)
	assert.Equal(t, "Switch to Tabby Cat? This will reset your progress.", asked)
	assert.Equal(t, 12.0, s.Snapshot().Pets, "declining leaves progress alone")

	_, ok = s.SelectCharacter("tabby-cat", nil)
	assert.False(t, ok)

	asked = ""
	_, ok = s.SelectCharacter("orange-tabby", decline)
	assert.False(t, ok)
	assert.Empty(t, asked, "already active: nothing to confirm")

	_, ok = s.SelectCharacter("ghost-cat", Confirmed)
	assert.False(t, ok)

	_, needed := s.SelectPrompt("tabby-cat")
	assert.True(t, needed)

	v, ok := s.SelectCharacter("tabby-cat", Confirmed)
	require.True(t, ok)
	assert.Equal(t, game.NewState("tabby-cat"), v.State)
	assert.Equal(t, "Tabby Cat", v.Character.Name)
}

// slowRemove holds Remove until release is closed.
type slowRemove struct {
	*save.MemoryBackend
	removing chan struct{}
	release  chan struct{}
}

func (b *slowRemove) Remove() error {
	close(b.removing)
	<-b.release
	return b.MemoryBackend.Remove()
}

func TestResetDoesNotBlockReadersOnSlowStorage(t *testing.T) {
	backend := &slowRemove{
		MemoryBackend: save.NewMemoryBackend(),
		removing:      make(chan struct{}),
		release:       make(chan struct{}),
	}
	s := newStore(t, backend)
	s.Open()
	tapN(s, 3)
	save.NewAdapter(backend, nil).Save(s.Snapshot())

	reset := make(chan View)
	go func() {
		v, _ := s.Reset(Confirmed)
		reset <- v
	}()
	<-backend.removing

	// The in-memory reset is visible while the record is still being removed.
	served := make(chan View)
	go func() {
		s.Tap()
		served <- s.View()
	}()
	select {
	case v := <-served:
		assert.Equal(t, int64(1), v.Pets)
	case <-time.After(time.Second):
		t.Fatal("store blocked behind save removal")
	}

	close(backend.release)
	v := <-reset
	assert.Equal(t, game.NewState("orange-tabby"), v.State)
	data, err := backend.Read()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestResetClearsSave(t *testing.T) {
	backend := save.NewMemoryBackend()
	s := newStore(t, backend)
	s.Open()
	tapN(s, 3)

	var asked string
	_, ok := s.Reset(func(prompt string) bool { asked = prompt; return false })
	assert.False(t, ok)
	assert.Equal(t, ResetPrompt, asked)
	assert.Equal(t, 3.0, s.Snapshot().Pets)

	// Put something durable on disk first.
	save.NewAdapter(backend, nil).Save(s.Snapshot())

	v, ok := s.Reset(Confirmed)
	require.True(t, ok)
	assert.Equal(t, game.NewState("orange-tabby"), v.State)

	data, err := backend.Read()
	require.NoError(t, err)
	assert.Nil(t, data, "durable record removed")

	require.NoError(t, s.Close())
	data, err = backend.Read()
	require.NoError(t, err)
	assert.Nil(t, data, "pending pre-reset write was dropped")
}

func TestSessionSurvivesRestart(t *testing.T) {
	backend := save.NewMemoryBackend()

	first := New(Options{Catalog: testCatalog(), Adapter: save.NewAdapter(backend, nil), Debounce: time.Hour})
	first.Open()
	tapN(first, 15)
	first.Buy("double")
	want := first.Snapshot()
	require.NoError(t, first.Close(), "close flushes the pending write")

	second := newStore(t, backend)
	got := second.Open()
	assert.Equal(t, want, got.State)
}

func TestOpenFallsBack(t *testing.T) {
	t.Run("unsupported version", func(t *testing.T) {
		backend := save.NewMemoryBackend()
		require.NoError(t, backend.Write([]byte(`{"version":2,"pets":50,"totalPets":50,"ownedBoosts":{},"selectedCatId":"tabby-cat"}`)))

		v := newStore(t, backend).Open()
		assert.Equal(t, game.NewState("orange-tabby"), v.State)
	})

	t.Run("unknown character", func(t *testing.T) {
		backend := save.NewMemoryBackend()
		require.NoError(t, backend.Write([]byte(`{"version":1,"pets":50,"totalPets":50,"ownedBoosts":{},"selectedCatId":"ghost-cat"}`)))

		v := newStore(t, backend).Open()
		assert.Equal(t, "orange-tabby", v.State.SelectedCatID)
		assert.Equal(t, 50.0, v.State.Pets)
	})
}

func TestWritesAreDebounced(t *testing.T) {
	backend := save.NewMemoryBackend()
	s := New(Options{Catalog: testCatalog(), Adapter: save.NewAdapter(backend, nil), Debounce: 20 * time.Millisecond})
	defer s.Close()
	s.Open()

	tapN(s, 25)
	require.Eventually(t, func() bool { return backend.Writes() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, backend.Writes())

	data, err := backend.Read()
	require.NoError(t, err)
	got, err := save.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Pets, "last state wins")
}

func TestConcurrentTransitionsAreSerialized(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())
	s.Open()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tapN(s, 100)
		}()
	}
	wg.Wait()

	st := s.Snapshot()
	assert.Equal(t, 800.0, st.Pets)
	assert.Equal(t, 800.0, st.TotalPets)
}

func TestSubscribe(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())

	var mu sync.Mutex
	var seen []int64
	unsubscribe := s.Subscribe(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, v.TotalPets)
	})

	s.Open()
	s.Tap()
	s.Buy("double") // not affordable, no notification
	s.Tap()
	unsubscribe()
	s.Tap()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{0, 1, 2}, seen)
}

func TestReplaceCatalog(t *testing.T) {
	s := newStore(t, save.NewMemoryBackend())
	s.Open()
	s.SelectCharacter("tabby-cat", Confirmed)

	only := testCatalog()
	only.Characters = only.Characters[:1]
	s.ReplaceCatalog(only)

	v := s.View()
	assert.Equal(t, "orange-tabby", v.Character.ID, "missing character falls back to the default")
	assert.Equal(t, "tabby-cat", v.State.SelectedCatID)
	assert.Same(t, only, s.Catalog())
}
