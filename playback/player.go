// Package playback plays synthesized reply audio to completion.
package playback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

// Player plays one reply-audio handle to completion or failure.
type Player interface {
	// Play blocks until the audio finishes, errors, or ctx is cancelled.
	Play(ctx context.Context, source string) error
}

// Speaker plays MP3 reply audio through the default output device. The
// source may be an HTTP URL (backend mode) or a local file path (direct
// provider mode).
type Speaker struct {
	http *http.Client

	mu     sync.Mutex
	otoCtx *oto.Context
}

// NewSpeaker creates a Speaker. The audio device is opened lazily on the
// first Play.
func NewSpeaker() *Speaker {
	return &Speaker{
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Play fetches, decodes, and plays one MP3 source.
func (s *Speaker) Play(ctx context.Context, source string) error {
	rc, err := s.open(ctx, source)
	if err != nil {
		return err
	}
	defer rc.Close()

	dec, err := mp3.NewDecoder(rc)
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}

	otoCtx, err := s.context(dec.SampleRate())
	if err != nil {
		return err
	}

	player := otoCtx.NewPlayer(dec)
	player.Play()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			_ = player.Close()
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return player.Close()
}

func (s *Speaker) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open audio file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create audio request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch audio: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// context returns the shared oto context, created on first use. go-mp3
// always decodes to 16-bit stereo at the stream's rate; replies from one
// synthesis backend share a single rate, so the first stream fixes it.
func (s *Speaker) context(sampleRate int) (*oto.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.otoCtx != nil {
		return s.otoCtx, nil
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	<-ready

	s.otoCtx = otoCtx
	return otoCtx, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
