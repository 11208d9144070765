package voice

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV renders mono float32 PCM as a 16-bit PCM WAV file, the one
// container format the backend and the transcription API both accept.
func EncodeWAV(samples []float32, sampleRate int) []byte {
	dataSize := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))

	le := binary.LittleEndian
	write := func(v any) { _ = binary.Write(buf, le, v) }

	buf.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16))             // chunk size
	write(uint16(1))              // PCM
	write(uint16(1))              // mono
	write(uint32(sampleRate))     // sample rate
	write(uint32(sampleRate * 2)) // byte rate
	write(uint16(2))              // block align
	write(uint16(16))             // bits per sample

	buf.WriteString("data")
	write(uint32(dataSize))

	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		write(int16(s * 32767))
	}

	return buf.Bytes()
}
