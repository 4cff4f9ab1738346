package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/audio"
)

var (
	// ErrFormatMismatch is returned when joining buffers whose sample rate,
	// channel count or bit depth differ.
	ErrFormatMismatch = errors.New("audio format mismatch")
	// ErrOutOfRange is returned for a slice outside the buffer's timeline.
	ErrOutOfRange = errors.New("slice out of range")
)

// PCM is an immutable buffer of decoded, interleaved integer samples.
//
// Time maps to frames by flooring (frame = t × rate), and a buffer of n
// frames reports a duration rounded up to the next nanosecond. With those
// two rules slicing at a reported duration lands on the exact frame, and a
// slice taken up to t never lasts longer than t.
type PCM struct {
	buf *audio.IntBuffer
}

// NewPCM wraps interleaved samples. The data is not copied.
func NewPCM(data []int, sampleRate, channels, bitDepth int) (*PCM, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("channel count must be positive, got %d", channels)
	}
	if len(data)%channels != 0 {
		return nil, fmt.Errorf("%d samples do not divide into %d channels", len(data), channels)
	}
	return &PCM{buf: &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}}, nil
}

// IntBuffer exposes the underlying go-audio buffer for encoding.
// Callers must not modify it.
func (p *PCM) IntBuffer() *audio.IntBuffer { return p.buf }

// SampleRate returns the sample rate in Hz
func (p *PCM) SampleRate() int { return p.buf.Format.SampleRate }

// NumChannels returns the number of interleaved channels
func (p *PCM) NumChannels() int { return p.buf.Format.NumChannels }

// BitDepth returns the bits per sample
func (p *PCM) BitDepth() int { return p.buf.SourceBitDepth }

// Frames returns the number of frames (samples per channel).
func (p *PCM) Frames() int { return len(p.buf.Data) / p.NumChannels() }

// Duration returns the elapsed time covered by the buffer.
func (p *PCM) Duration() time.Duration {
	return FramesToDuration(int64(p.Frames()), p.SampleRate())
}

// IsEmpty reports whether the buffer holds no frames.
func (p *PCM) IsEmpty() bool { return len(p.buf.Data) == 0 }

// Slice returns a new buffer covering [start, end) of this one.
func (p *PCM) Slice(start, end time.Duration) (*PCM, error) {
	if start < 0 || start > end || end > p.Duration() {
		return nil, fmt.Errorf("%w: [%v, %v) of %v", ErrOutOfRange, start, end, p.Duration())
	}
	from := DurationToFrames(start, p.SampleRate())
	to := DurationToFrames(end, p.SampleRate())
	return p.sliceFrames(int(from), int(to)), nil
}

func (p *PCM) sliceFrames(from, to int) *PCM {
	ch := p.NumChannels()
	data := make([]int, (to-from)*ch)
	copy(data, p.buf.Data[from*ch:to*ch])
	return &PCM{buf: &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: ch, SampleRate: p.SampleRate()},
		SourceBitDepth: p.BitDepth(),
	}}
}

// Concat returns a new buffer with other appended.
func (p *PCM) Concat(other *PCM) (*PCM, error) {
	if !p.SameFormat(other) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, p.FormatString(), other.FormatString())
	}
	data := make([]int, 0, len(p.buf.Data)+len(other.buf.Data))
	data = append(data, p.buf.Data...)
	data = append(data, other.buf.Data...)
	return &PCM{buf: &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: p.NumChannels(), SampleRate: p.SampleRate()},
		SourceBitDepth: p.BitDepth(),
	}}, nil
}

// SameFormat reports whether both buffers share rate, channels and depth.
func (p *PCM) SameFormat(other *PCM) bool {
	return p.SampleRate() == other.SampleRate() &&
		p.NumChannels() == other.NumChannels() &&
		p.BitDepth() == other.BitDepth()
}

// FormatString describes the sample format, e.g. "44.1kHz 16-bit stereo".
func (p *PCM) FormatString() string {
	layout := "mono"
	switch ch := p.NumChannels(); {
	case ch == 2:
		layout = "stereo"
	case ch > 2:
		layout = fmt.Sprintf("%dch", ch)
	}
	return fmt.Sprintf("%.1fkHz %d-bit %s", float64(p.SampleRate())/1000.0, p.BitDepth(), layout)
}

// FramesToDuration converts a frame count to a duration, rounding up to the
// next nanosecond.
func FramesToDuration(frames int64, sampleRate int) time.Duration {
	rate := int64(sampleRate)
	whole := frames / rate
	rem := frames % rate
	nanos := (rem*int64(time.Second) + rate - 1) / rate
	return time.Duration(whole)*time.Second + time.Duration(nanos)
}

// DurationToFrames converts a duration to the number of whole frames it
// spans, rounding down.
func DurationToFrames(d time.Duration, sampleRate int) int64 {
	rate := int64(sampleRate)
	whole := int64(d / time.Second)
	rem := int64(d % time.Second)
	return whole*rate + rem*rate/int64(time.Second)
}
