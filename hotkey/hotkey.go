// Package hotkey provides global keyboard shortcuts for the assistant.
package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Manager registers the app's global shortcuts: ctrl+k toggles listening,
// ctrl+m toggles mute.
type Manager struct {
	onToggleListen func()
	onToggleMute   func()

	mu      sync.Mutex
	running bool
}

// NewManager creates a manager with the given shortcut callbacks.
func NewManager(onToggleListen, onToggleMute func()) *Manager {
	return &Manager{
		onToggleListen: onToggleListen,
		onToggleMute:   onToggleMute,
	}
}

// Start registers the shortcuts and begins the event loop in a goroutine.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true

	hook.Register(hook.KeyDown, []string{"ctrl", "k"}, func(hook.Event) {
		if m.onToggleListen != nil {
			m.onToggleListen()
		}
	})
	hook.Register(hook.KeyDown, []string{"ctrl", "m"}, func(hook.Event) {
		if m.onToggleMute != nil {
			m.onToggleMute()
		}
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
		slog.Debug("hotkey event loop exited")
	}()
	return nil
}

// Stop ends the event loop and unregisters the shortcuts.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	hook.End()
}
