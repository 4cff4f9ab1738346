package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramp returns interleaved samples whose values count up from start.
func ramp(frames, channels, start int) []int {
	data := make([]int, frames*channels)
	for i := range data {
		data[i] = start + i
	}
	return data
}

func newTestPCM(t *testing.T, frames, sampleRate, channels int) *PCM {
	t.Helper()
	p, err := NewPCM(ramp(frames, channels, 0), sampleRate, channels, 16)
	require.NoError(t, err)
	return p
}

func TestNewPCMValidation(t *testing.T) {
	_, err := NewPCM([]int{1, 2, 3}, 44100, 2, 16)
	assert.Error(t, err, "odd sample count for stereo")

	_, err = NewPCM(nil, 0, 1, 16)
	assert.Error(t, err, "zero sample rate")

	_, err = NewPCM(nil, 8000, 0, 16)
	assert.Error(t, err, "zero channels")

	p, err := NewPCM(nil, 8000, 1, 16)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.Equal(t, time.Duration(0), p.Duration())
}

func TestPCMDuration(t *testing.T) {
	p := newTestPCM(t, 44100*3, 44100, 2)
	assert.Equal(t, 3*time.Second, p.Duration())
	assert.Equal(t, 44100*3, p.Frames())

	// One frame at 44.1kHz is 22675.73ns, reported rounded up
	one := newTestPCM(t, 1, 44100, 1)
	assert.Equal(t, 22676*time.Nanosecond, one.Duration())
}

func TestFrameConversionRoundTrip(t *testing.T) {
	for _, rate := range []int{8000, 22050, 44100, 48000, 96000} {
		for _, frames := range []int64{0, 1, 2, 441, 12345, 1_000_003, 86_400 * 48_000} {
			d := FramesToDuration(frames, rate)
			assert.Equal(t, frames, DurationToFrames(d, rate), "rate %d frames %d", rate, frames)
		}
	}
}

func TestDurationToFramesFloors(t *testing.T) {
	// 1ms at 44.1kHz is 44.1 frames
	assert.Equal(t, int64(44), DurationToFrames(time.Millisecond, 44100))
	assert.LessOrEqual(t, FramesToDuration(44, 44100), time.Millisecond)
}

func TestPCMSlice(t *testing.T) {
	p := newTestPCM(t, 1000, 1000, 2)

	s, err := p.Slice(250*time.Millisecond, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 250, s.Frames())
	assert.Equal(t, 250*time.Millisecond, s.Duration())
	assert.Equal(t, 500, s.IntBuffer().Data[0], "slice starts at frame 250 of a stereo ramp")

	whole, err := p.Slice(0, p.Duration())
	require.NoError(t, err)
	assert.Equal(t, p.IntBuffer().Data, whole.IntBuffer().Data)

	empty, err := p.Slice(time.Second, time.Second)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	for _, r := range [][2]time.Duration{
		{-time.Millisecond, time.Millisecond},
		{0, 2 * time.Second},
		{600 * time.Millisecond, 400 * time.Millisecond},
	} {
		_, err := p.Slice(r[0], r[1])
		assert.ErrorIs(t, err, ErrOutOfRange, "slice %v", r)
	}
}

func TestPCMSliceDoesNotAlias(t *testing.T) {
	p := newTestPCM(t, 10, 10, 1)
	s, err := p.Slice(0, 500*time.Millisecond)
	require.NoError(t, err)
	s.IntBuffer().Data[0] = -1
	assert.Equal(t, 0, p.IntBuffer().Data[0])
}

func TestPCMConcat(t *testing.T) {
	a, err := NewPCM(ramp(3, 2, 0), 8000, 2, 16)
	require.NoError(t, err)
	b, err := NewPCM(ramp(2, 2, 6), 8000, 2, 16)
	require.NoError(t, err)

	joined, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, ramp(5, 2, 0), joined.IntBuffer().Data)
	assert.Equal(t, a.Duration()+b.Duration(), joined.Duration())

	mono, err := NewPCM(ramp(2, 1, 0), 8000, 1, 16)
	require.NoError(t, err)
	_, err = a.Concat(mono)
	assert.ErrorIs(t, err, ErrFormatMismatch)

	deep, err := NewPCM(ramp(2, 2, 0), 8000, 2, 24)
	require.NoError(t, err)
	_, err = a.Concat(deep)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestPCMSliceConcatConserves(t *testing.T) {
	p := newTestPCM(t, 44100, 44100, 2)
	cut := 333 * time.Millisecond

	head, err := p.Slice(0, cut)
	require.NoError(t, err)
	tail, err := p.Slice(head.Duration(), p.Duration())
	require.NoError(t, err)

	joined, err := head.Concat(tail)
	require.NoError(t, err)
	assert.Equal(t, p.IntBuffer().Data, joined.IntBuffer().Data)
	assert.LessOrEqual(t, head.Duration(), cut)
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "44.1kHz 16-bit stereo", newTestPCM(t, 1, 44100, 2).FormatString())
	assert.Equal(t, "8.0kHz 16-bit mono", newTestPCM(t, 1, 8000, 1).FormatString())
	assert.Equal(t, "48.0kHz 16-bit 6ch", newTestPCM(t, 1, 48000, 6).FormatString())
}
