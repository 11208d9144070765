package mic

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// Device records from the default capture device via miniaudio. It holds no
// state between calls; every Record opens and closes the device.
type Device struct{}

// NewDevice returns a Recorder backed by the default microphone.
func NewDevice() *Device {
	return &Device{}
}

// Record captures one mono 16 kHz segment from the default microphone.
func (d *Device) Record(ctx context.Context, maxDur time.Duration) (Clip, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: init context: %v", ErrNoDevice, err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = SampleRate
	cfg.Alsa.NoMMap = 1

	var (
		mu      sync.Mutex
		samples []float32
	)
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			mu.Lock()
			samples = append(samples, decodeF32(input, int(frameCount))...)
			mu.Unlock()
		},
	}

	dev, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: init device: %v", ErrNoDevice, err)
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return nil, fmt.Errorf("%w: start device: %v", ErrNoDevice, err)
	}

	// Bounded window: an external stop finalizes the segment early.
	select {
	case <-ctx.Done():
	case <-time.After(maxDur):
	}
	if err := dev.Stop(); err != nil {
		return nil, fmt.Errorf("stop device: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return Clip(samples), nil
}

func decodeF32(data []byte, frames int) []float32 {
	if frames*4 > len(data) {
		frames = len(data) / 4
	}
	out := make([]float32, frames)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
