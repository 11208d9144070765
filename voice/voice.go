// Package voice submits captured audio for transcription and reply
// generation.
//
// Two implementations exist: Client talks to a hospital voice backend over
// HTTP, Pipeline talks to OpenAI directly when no backend is configured.
package voice

import (
	"context"

	"github.com/sajjadalinaqvi/hospital-agent/internal/types"
	"github.com/sajjadalinaqvi/hospital-agent/mic"
)

// Exchanger turns one captured clip into a transcript, an optional reply,
// and an optional handle to synthesized reply audio.
type Exchanger interface {
	Exchange(ctx context.Context, clip mic.Clip) (*types.VoiceResult, error)
}

// Turn is one prior conversation message supplied as reply context.
type Turn struct {
	Role    string
	Content string
}

// ContextFunc supplies recent conversation turns, oldest first.
type ContextFunc func() []Turn
