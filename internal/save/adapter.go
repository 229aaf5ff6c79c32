package save

import (
	"log/slog"

	"github.com/salvarecuero/tap-cat/internal/game"
)

// Adapter applies the persistence policy on top of a Backend: loading never
// fails outward, and write or clear failures are logged and swallowed so the
// session keeps running in memory.
type Adapter struct {
	backend Backend
	log     *slog.Logger
}

// NewAdapter wraps backend. A nil logger uses slog.Default().
func NewAdapter(backend Backend, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{backend: backend, log: log}
}

// Load returns the persisted state, or def when the record is absent,
// unreadable or fails validation.
func (a *Adapter) Load(def game.State) game.State {
	data, err := a.backend.Read()
	if err != nil {
		a.log.Warn("save unreadable, starting fresh", "error", err)
		return def
	}
	if data == nil {
		return def
	}

	s, err := Decode(data)
	if err != nil {
		a.log.Warn("save rejected, starting fresh", "error", err)
		return def
	}
	return s
}

// Save writes s. Failures are logged.
func (a *Adapter) Save(s game.State) {
	data, err := Encode(s)
	if err != nil {
		a.log.Error("failed to encode save", "error", err)
		return
	}
	if err := a.backend.Write(data); err != nil {
		a.log.Error("failed to write save", "error", err)
	}
}

// Clear removes the durable record. Failures are logged.
func (a *Adapter) Clear() {
	if err := a.backend.Remove(); err != nil {
		a.log.Error("failed to clear save", "error", err)
	}
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}
