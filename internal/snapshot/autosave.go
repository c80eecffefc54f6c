package snapshot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdembet/internal/engine"
)

// Autosaver writes the latest engine state to disk every time the engine
// publishes a state change. Subscribe it to the engine's event bus.
type Autosaver struct {
	path   string
	logger *log.Logger
	saves  int
	err    error
}

// NewAutosaver creates a subscriber that saves to path
func NewAutosaver(path string, logger *log.Logger) *Autosaver {
	return &Autosaver{path: path, logger: logger.WithPrefix("snapshot")}
}

// OnEvent implements engine.EventSubscriber
func (a *Autosaver) OnEvent(event engine.GameEvent) {
	changed, ok := event.(engine.StateChangedEvent)
	if !ok {
		return
	}

	if err := Save(a.path, changed.Snapshot); err != nil {
		a.logger.Error("Failed to save snapshot", "path", a.path, "error", err)
		a.err = err
		return
	}
	a.saves++
	a.logger.Debug("Saved snapshot", "path", a.path, "hand", changed.Snapshot.HandNumber, "phase", changed.Snapshot.Phase)
}

// Saves returns how many snapshots have been written
func (a *Autosaver) Saves() int {
	return a.saves
}

// Err returns the last save error, if any
func (a *Autosaver) Err() error {
	return a.err
}
