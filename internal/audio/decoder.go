package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrFileNotFound is returned when the input path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned for file extensions or sample formats with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// AudioDecoder defines the interface for all audio format decoders
type AudioDecoder interface {
	// ReadChunk reads up to numFrames frames of interleaved samples at the
	// source bit depth. Returns io.EOF when the stream is exhausted.
	ReadChunk(numFrames int) ([]int, error)

	// SampleRate returns the audio sample rate in Hz
	SampleRate() int

	// NumFrames returns the total number of frames in the file
	// Returns 0 if the length is unknown
	NumFrames() int64

	// NumChannels returns the number of audio channels (1=mono, 2=stereo)
	NumChannels() int

	// BitDepth returns the bits per sample of the decoded values
	BitDepth() int

	// Close closes the decoder and releases resources
	Close() error
}

// NewDecoder picks a decoder from the file extension.
func NewDecoder(filename string) (AudioDecoder, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".wav", ".wave":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
