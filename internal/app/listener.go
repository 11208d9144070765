package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sajjadalinaqvi/hospital-agent/history"
	"github.com/sajjadalinaqvi/hospital-agent/internal/types"
	"github.com/sajjadalinaqvi/hospital-agent/mic"
	"github.com/sajjadalinaqvi/hospital-agent/playback"
	"github.com/sajjadalinaqvi/hospital-agent/voice"
)

// micErrorMessage is the one user-visible failure the loop produces.
const micErrorMessage = "Sorry, I cannot access your microphone. " +
	"Please check your system permissions."

// Listener drives the continuous capture → submit → render cycle. It is
// strictly sequential: at most one capture and one submission are in flight
// at any instant, and the next segment does not begin until the previous
// one (including playback) has fully resolved.
type Listener struct {
	store    *history.Store
	rec      mic.Recorder
	exchange voice.Exchanger
	player   playback.Player
	emit     func(name string, data any)

	segmentDur time.Duration
	retryDelay time.Duration

	muted atomic.Bool

	mu      sync.Mutex
	running bool
	status  types.Status
	cancel  context.CancelFunc
}

// NewListener wires the loop to its collaborators. emit may be nil.
func NewListener(store *history.Store, rec mic.Recorder, exchange voice.Exchanger, player playback.Player, emit func(name string, data any)) *Listener {
	if emit == nil {
		emit = func(string, any) {}
	}
	return &Listener{
		store:      store,
		rec:        rec,
		exchange:   exchange,
		player:     player,
		emit:       emit,
		segmentDur: 5 * time.Second,
		retryDelay: time.Second,
		status:     types.StatusStopped,
	}
}

// Start begins the listening loop. Starting a running listener is a no-op.
func (l *Listener) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.mu.Unlock()

	l.setStatus(types.StatusListening)
	go l.run(ctx)
}

// Stop halts the loop. An in-progress capture is finalized immediately; an
// in-flight submission is not cancelled, but its result is discarded.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.setStatus(types.StatusStopped)
}

// Running reports whether the loop is active.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Status returns the current loop state.
func (l *Listener) Status() types.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// State returns the status-indicator snapshot.
func (l *Listener) State() types.AssistantState {
	return types.AssistantState{Status: l.Status(), Muted: l.muted.Load()}
}

// SetMuted toggles reply playback. It never suppresses transcription or
// message creation.
func (l *Listener) SetMuted(muted bool) {
	l.muted.Store(muted)
	l.emit(EventStatus, l.State())
}

// Muted reports whether reply playback is suppressed.
func (l *Listener) Muted() bool {
	return l.muted.Load()
}

func (l *Listener) run(ctx context.Context) {
	for l.Running() {
		if err := l.iterate(ctx); err != nil {
			if errors.Is(err, mic.ErrNoDevice) {
				// Capability failure is fatal for this session: surface it
				// once and require an explicit restart.
				slog.Error("microphone unavailable", "error", err)
				l.store.AppendMessage(history.RoleAssistant, micErrorMessage)
				l.Stop()
				return
			}

			slog.Error("listening iteration", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(l.retryDelay):
			}
		}
	}
}

// iterate runs one capture-through-render cycle. It returns an error only
// for the two cases run handles: device loss and unexpected failures that
// warrant the backoff pause. Everything else degrades to "try again next
// iteration" silently.
func (l *Listener) iterate(ctx context.Context) error {
	clip, err := l.rec.Record(ctx, l.segmentDur)
	if err != nil {
		if errors.Is(err, mic.ErrNoDevice) {
			return err
		}
		// A failed segment is not an error, just nothing usable.
		slog.Warn("capture segment", "error", err)
		return nil
	}
	if clip.Empty() {
		return nil
	}
	if !l.Running() {
		return nil
	}

	l.setStatus(types.StatusProcessing)
	result, err := l.exchange.Exchange(ctx, clip)
	if err != nil {
		// Recoverable network blip: log and keep listening, no
		// user-visible message.
		slog.Warn("submit segment", "error", err)
		l.setStatus(types.StatusListening)
		return nil
	}

	// A result arriving after Stop must not resurrect the loop.
	if !l.Running() {
		return nil
	}

	text := strings.TrimSpace(result.UserInput)
	if text == "" {
		l.setStatus(types.StatusListening)
		return nil
	}
	l.store.AppendMessage(history.RoleUser, text)

	if result.AssistantResponse != "" {
		l.setStatus(types.StatusSpeaking)
		l.store.AppendMessage(history.RoleAssistant, result.AssistantResponse)

		if !l.muted.Load() && result.AudioURL != "" {
			// Playback failure counts as playback completion.
			if err := l.player.Play(ctx, result.AudioURL); err != nil {
				slog.Warn("play reply audio", "error", err)
			}
		}
	}

	l.setStatus(types.StatusListening)
	return nil
}

// setStatus applies a status transition and notifies the UI. Transient
// states are dropped once the loop has been stopped, so a late transition
// can never mask StatusStopped.
func (l *Listener) setStatus(status types.Status) {
	l.mu.Lock()
	if status != types.StatusStopped && !l.running {
		l.mu.Unlock()
		return
	}
	if l.status == status {
		l.mu.Unlock()
		return
	}
	l.status = status
	l.mu.Unlock()

	l.emit(EventStatus, l.State())
}
