// Package mic captures bounded microphone segments.
//
// The device is opened fresh for every segment and released as soon as the
// segment ends, so the microphone is never held between loop iterations.
package mic

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	// SampleRate is the capture rate in Hz. Whisper expects 16 kHz mono.
	SampleRate = 16000

	// silenceRMS is the energy floor below which a whole segment counts
	// as "nothing was said".
	silenceRMS = 0.01
)

// ErrNoDevice reports that no capture device could be acquired. Callers
// treat it as fatal for the listening session, unlike a failed segment.
var ErrNoDevice = errors.New("no audio capture device available")

// Clip is one captured segment: mono float32 PCM at SampleRate.
type Clip []float32

// Empty reports whether the clip contains no usable speech, either because
// nothing was captured or because the whole segment sits below the energy
// floor.
func (c Clip) Empty() bool {
	return len(c) == 0 || rms(c) < silenceRMS
}

// Duration returns the clip length in wall time.
func (c Clip) Duration() time.Duration {
	return time.Duration(len(c)) * time.Second / SampleRate
}

// Recorder captures one bounded audio segment per call.
type Recorder interface {
	// Record captures until maxDur elapses or ctx is cancelled, whichever
	// comes first, and returns whatever was captured up to that point.
	// ErrNoDevice means the microphone itself is unavailable.
	Record(ctx context.Context, maxDur time.Duration) (Clip, error)
}

func rms(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
