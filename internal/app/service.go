package app

import (
	"log/slog"
	"path/filepath"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/sajjadalinaqvi/hospital-agent/config"
	"github.com/sajjadalinaqvi/hospital-agent/history"
	"github.com/sajjadalinaqvi/hospital-agent/hotkey"
	"github.com/sajjadalinaqvi/hospital-agent/internal/types"
	"github.com/sajjadalinaqvi/hospital-agent/mic"
	"github.com/sajjadalinaqvi/hospital-agent/playback"
	"github.com/sajjadalinaqvi/hospital-agent/voice"
)

// defaultBackendURL is used when neither a backend nor provider credentials
// are configured, matching a locally run hospital voice backend.
const defaultBackendURL = "http://localhost:5000"

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; the store and the listening loop
// carry the actual behavior.
type Service struct {
	cfg      *config.Config
	store    *history.Store
	listener *Listener
	hotkey   *hotkey.Manager

	// UI references - set via Init
	app    *application.App
	window application.Window

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after the Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after the Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{}
	}
	s.cfg = cfg

	s.setupStore()
	s.setupListener()
	s.setupHotkey()

	// The assistant starts listening as soon as the app is up.
	if s.listener != nil {
		s.listener.Start()
	}
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.listener != nil {
		s.listener.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("close history store", "error", err)
		}
	}
}

func (s *Service) setupStore() {
	dir, err := config.DataDir()
	if err != nil {
		slog.Error("get data dir for history", "error", err)
		return
	}

	path := filepath.Join(dir, "history")
	store, err := history.Open(path)
	if err != nil {
		slog.Error("open history store", "error", err, "path", path)
		return
	}
	s.store = store
	slog.Info("history store opened", "path", path, "conversations", store.Len())

	store.OnChange(func(ch history.Change) {
		if ch.Messages {
			s.emit(EventMessages, store.Active())
		}
		if ch.History {
			s.emit(EventHistory, store.Items())
		}
	})
}

func (s *Service) setupListener() {
	if s.store == nil {
		return
	}

	var exchanger voice.Exchanger
	switch {
	case s.cfg.BackendURL != "":
		exchanger = voice.NewClient(s.cfg.BackendURL)
		slog.Info("using voice backend", "url", s.cfg.BackendURL)
	case s.cfg.OpenAI != nil && s.cfg.OpenAI.APIKey != "":
		exchanger = voice.NewPipeline(s.cfg.OpenAI, s.cfg.GetSystemPrompt(), s.recentTurns)
		slog.Info("using direct provider mode")
	default:
		exchanger = voice.NewClient(defaultBackendURL)
		slog.Warn("no backend or credentials configured, assuming local backend", "url", defaultBackendURL)
	}

	l := NewListener(s.store, mic.NewDevice(), exchanger, playback.NewSpeaker(), s.emit)
	l.segmentDur = s.cfg.RecordDuration()
	l.SetMuted(s.cfg.Muted)
	s.listener = l
}

func (s *Service) setupHotkey() {
	s.hotkey = hotkey.NewManager(
		func() { s.ToggleListening() },
		func() { s.ToggleMute() },
	)
	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// recentTurns feeds the active conversation to direct provider mode as
// reply context.
func (s *Service) recentTurns() []voice.Turn {
	msgs := s.store.Active()
	turns := make([]voice.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, voice.Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Listening control
// ─────────────────────────────────────────────────────────────────────────────

// StartListening starts the continuous listening loop.
func (s *Service) StartListening() {
	if s.listener != nil {
		s.listener.Start()
	}
}

// StopListening stops the continuous listening loop.
func (s *Service) StopListening() {
	if s.listener != nil {
		s.listener.Stop()
	}
}

// ToggleListening flips the loop on or off and reports the new state.
func (s *Service) ToggleListening() bool {
	if s.listener == nil {
		return false
	}
	if s.listener.Running() {
		s.listener.Stop()
		return false
	}
	s.listener.Start()
	return true
}

// ToggleMute flips reply playback and reports the new mute state.
func (s *Service) ToggleMute() bool {
	if s.listener == nil {
		return false
	}
	muted := !s.listener.Muted()
	s.listener.SetMuted(muted)
	return muted
}

// SetMuted sets the mute flag directly.
func (s *Service) SetMuted(muted bool) {
	if s.listener != nil {
		s.listener.SetMuted(muted)
	}
}

// GetState returns the current status-indicator snapshot.
func (s *Service) GetState() types.AssistantState {
	if s.listener == nil {
		return types.AssistantState{Status: types.StatusStopped}
	}
	return s.listener.State()
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversations
// ─────────────────────────────────────────────────────────────────────────────

// NewConversation creates and activates a fresh conversation.
func (s *Service) NewConversation() string {
	if s.store == nil {
		return ""
	}
	return s.store.CreateConversation()
}

// SelectConversation makes the given conversation active.
func (s *Service) SelectConversation(id string) {
	if s.store != nil {
		s.store.SetActive(id)
	}
}

// GetMessages returns the active conversation's messages for rendering.
func (s *Service) GetMessages() []history.Message {
	if s.store == nil {
		return nil
	}
	return s.store.Active()
}

// GetHistory returns the sidebar conversation list.
func (s *Service) GetHistory() []history.Item {
	if s.store == nil {
		return nil
	}
	return s.store.Items()
}

// ─────────────────────────────────────────────────────────────────────────────
// Theme
// ─────────────────────────────────────────────────────────────────────────────

// GetTheme returns the persisted theme preference.
func (s *Service) GetTheme() string {
	if s.store == nil {
		return "light"
	}
	return s.store.Theme()
}

// SetTheme persists the theme preference.
func (s *Service) SetTheme(theme string) {
	if s.store != nil {
		s.store.SetTheme(theme)
	}
}
