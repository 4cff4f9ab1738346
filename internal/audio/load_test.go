package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.wav"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a riff file"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramp.wav")
	data := make([]int, 8000*2)
	for i := range data {
		data[i] = (i*37)%65536 - 32768
	}
	src, err := NewPCM(data, 8000, 2, 16)
	require.NoError(t, err)

	require.NoError(t, WriteWAV(path, src))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, got.SampleRate())
	assert.Equal(t, 2, got.NumChannels())
	assert.Equal(t, 16, got.BitDepth())
	assert.Equal(t, src.Duration(), got.Duration())
	assert.Equal(t, data, got.IntBuffer().Data)
}

func TestWAVWriterConcatenates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.wav")
	a, err := NewPCM(ramp(100, 1, 0), 16000, 1, 16)
	require.NoError(t, err)
	b, err := NewPCM(ramp(50, 1, 100), 16000, 1, 16)
	require.NoError(t, err)

	w, err := CreateWAV(path, a)
	require.NoError(t, err)
	require.NoError(t, w.Write(a))
	require.NoError(t, w.Write(b))
	assert.Equal(t, int64(150), w.Frames())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ramp(150, 1, 0), got.IntBuffer().Data)
}

func TestWAVWriterRejectsOtherFormats(t *testing.T) {
	mono, err := NewPCM(ramp(10, 1, 0), 16000, 1, 16)
	require.NoError(t, err)
	stereo, err := NewPCM(ramp(10, 2, 0), 16000, 2, 16)
	require.NoError(t, err)

	w, err := CreateWAV(filepath.Join(t.TempDir(), "mixed.wav"), mono)
	require.NoError(t, err)
	defer w.Close()

	assert.ErrorIs(t, w.Write(stereo), ErrFormatMismatch)
}

func TestWAVDecoderReadChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunked.wav")
	src, err := NewPCM(ramp(1000, 2, 0), 8000, 2, 16)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(path, src))

	dec, err := NewWAVDecoder(path)
	require.NoError(t, err)
	defer dec.Close()

	assert.Equal(t, int64(1000), dec.NumFrames())

	var all []int
	for {
		chunk, err := dec.ReadChunk(300)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.LessOrEqual(t, len(chunk), 600, "chunk is at most 300 stereo frames")
		all = append(all, chunk...)
	}
	assert.Equal(t, src.IntBuffer().Data, all)

	_, err = dec.ReadChunk(300)
	assert.Equal(t, io.EOF, err, "reads past the end keep returning EOF")
}

func TestNewDecoderByExtension(t *testing.T) {
	dir := t.TempDir()
	src, err := NewPCM(ramp(10, 1, 0), 8000, 1, 16)
	require.NoError(t, err)

	upper := filepath.Join(dir, "LOUD.WAV")
	require.NoError(t, WriteWAV(upper, src))

	dec, err := NewDecoder(upper)
	require.NoError(t, err)
	assert.IsType(t, &WAVDecoder{}, dec)
	require.NoError(t, dec.Close())

	_, err = NewDecoder(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// writeFloatWAV writes a mono 32-bit IEEE float WAV (format tag 3).
func writeFloatWAV(t *testing.T, path string, samples []float32) {
	t.Helper()
	const rate = 8000
	dataLen := uint32(len(samples) * 4)

	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	binary.Write(&b, le, 36+dataLen)
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(3)) // IEEE float
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint32(rate))
	binary.Write(&b, le, uint32(rate*4))
	binary.Write(&b, le, uint16(4))
	binary.Write(&b, le, uint16(32))
	b.WriteString("data")
	binary.Write(&b, le, dataLen)
	for _, v := range samples {
		binary.Write(&b, le, math.Float32bits(v))
	}
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
}

func TestLoadFloatWAVIsUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	samples := make([]float32, 800)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	writeFloatWAV(t, path, samples)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewWAVDecoder(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
