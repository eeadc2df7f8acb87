package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// mono PCM buffer with samples normalized to [-1, 1]
type Buffer struct {
	SampleRate int
	Samples    []float64
}

// allocates a silent buffer spanning the given duration
func Silence(duration time.Duration, sampleRate int) *Buffer {
	n := int(math.Round(duration.Seconds() * float64(sampleRate)))
	if n < 0 {
		n = 0
	}
	return &Buffer{
		SampleRate: sampleRate,
		Samples:    make([]float64, n),
	}
}

// converts little-endian 16-bit mono PCM bytes into a Buffer; a trailing
// odd byte is ignored
func FromPCM16(raw []byte, sampleRate int) *Buffer {
	n := len(raw) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float64(v) / 32768.0
	}
	return &Buffer{SampleRate: sampleRate, Samples: samples}
}

// renders the buffer back to little-endian 16-bit PCM, clamping overs
func (b *Buffer) PCM16() []byte {
	out := make([]byte, len(b.Samples)*2)
	for i, s := range b.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(math.Round(s * 32767))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(
		float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second),
	)
}

// adds src into the buffer starting at the given offset. Samples are summed
// and clamped to [-1, 1]; anything extending past the end of the buffer is
// dropped. Sample rates must match, the caller resamples beforehand.
func (b *Buffer) MixAt(src *Buffer, offset time.Duration) {
	if src == nil || len(src.Samples) == 0 {
		return
	}

	start := int(math.Round(offset.Seconds() * float64(b.SampleRate)))
	if start >= len(b.Samples) {
		return
	}

	srcStart := 0
	if start < 0 {
		srcStart = -start
		start = 0
	}

	for i := srcStart; i < len(src.Samples); i++ {
		dst := start + i - srcStart
		if dst >= len(b.Samples) {
			break
		}
		sum := b.Samples[dst] + src.Samples[i]
		if sum > 1 {
			sum = 1
		} else if sum < -1 {
			sum = -1
		}
		b.Samples[dst] = sum
	}
}

// extends the buffer with silence up to the given duration; a buffer that
// is already long enough is left alone
func (b *Buffer) PadTo(duration time.Duration) {
	want := int(math.Round(duration.Seconds() * float64(b.SampleRate)))
	if want <= len(b.Samples) {
		return
	}
	padded := make([]float64, want)
	copy(padded, b.Samples)
	b.Samples = padded
}
