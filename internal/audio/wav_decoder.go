package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder implements AudioDecoder for WAV files
type WAVDecoder struct {
	decoder    *wav.Decoder
	file       *os.File
	sampleRate int
	bitDepth   int
	numChans   int
	numFrames  int64
}

// NewWAVDecoder creates a new WAV decoder
func NewWAVDecoder(filename string) (*WAVDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file")
	}

	// Samples are handled as integers; float data would be misread as int bit patterns.
	if decoder.WavAudioFormat != wavFormatPCM {
		f.Close()
		return nil, fmt.Errorf("%w: WAV format tag %d, only integer PCM is supported", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	// Get format info without reading all samples
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	numChans := int(decoder.NumChans)
	bytesPerSample := int64(decoder.BitDepth / 8)
	var numFrames int64
	if bytesPerSample > 0 && numChans > 0 {
		numFrames = int64(decoder.PCMLen()) / (bytesPerSample * int64(numChans))
	}

	return &WAVDecoder{
		decoder:    decoder,
		file:       f,
		sampleRate: int(decoder.SampleRate),
		bitDepth:   int(decoder.BitDepth),
		numChans:   numChans,
		numFrames:  numFrames,
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *WAVDecoder) ReadChunk(numFrames int) ([]int, error) {
	// Interleaved data: numFrames × numChannels values
	intBuf := &audio.IntBuffer{
		Data: make([]int, numFrames*d.numChans),
		Format: &audio.Format{
			NumChannels: d.numChans,
			SampleRate:  d.sampleRate,
		},
		SourceBitDepth: d.bitDepth,
	}

	n, err := d.decoder.PCMBuffer(intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	if n == 0 {
		return nil, io.EOF
	}

	// Drop a trailing partial frame from a truncated file
	n -= n % d.numChans
	return intBuf.Data[:n], nil
}

// SampleRate returns the sample rate
func (d *WAVDecoder) SampleRate() int {
	return d.sampleRate
}

// NumFrames returns the frame count declared by the data chunk
func (d *WAVDecoder) NumFrames() int64 {
	return d.numFrames
}

// NumChannels returns the number of audio channels
func (d *WAVDecoder) NumChannels() int {
	return d.numChans
}

// BitDepth returns the bits per sample
func (d *WAVDecoder) BitDepth() int {
	return d.bitDepth
}

// Close closes the decoder and releases resources
func (d *WAVDecoder) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}
