package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder implements AudioDecoder for MP3 files
type MP3Decoder struct {
	decoder     *mp3.Decoder
	file        *os.File
	sampleRate  int
	numChannels int
}

// mp3FrameBytes is the size of one decoded frame: go-mp3 always emits
// interleaved 16-bit little-endian stereo.
const mp3FrameBytes = 4

// NewMP3Decoder creates a new MP3 decoder
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Decoder{
		decoder:     decoder,
		file:        f,
		sampleRate:  decoder.SampleRate(),
		numChannels: 2, // go-mp3 always outputs stereo
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *MP3Decoder) ReadChunk(numFrames int) ([]int, error) {
	buf := make([]byte, numFrames*mp3FrameBytes)

	n, err := io.ReadFull(d.decoder, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	frames := n / mp3FrameBytes
	if frames == 0 {
		return nil, io.EOF
	}

	samples := make([]int, frames*2)
	for i := range samples {
		samples[i] = int(int16(buf[i*2]) | int16(buf[i*2+1])<<8)
	}

	return samples, nil
}

// SampleRate returns the sample rate
func (d *MP3Decoder) SampleRate() int {
	return d.sampleRate
}

// NumFrames returns the decoded length in frames
func (d *MP3Decoder) NumFrames() int64 {
	if l := d.decoder.Length(); l > 0 {
		return l / mp3FrameBytes
	}
	return 0
}

// NumChannels returns the number of audio channels
func (d *MP3Decoder) NumChannels() int {
	return d.numChannels
}

// BitDepth returns the bits per sample
func (d *MP3Decoder) BitDepth() int {
	return 16
}

// Close closes the decoder and releases resources
func (d *MP3Decoder) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}
