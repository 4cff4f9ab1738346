package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements AudioDecoder for FLAC files
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numFrames   int64
	numChannels int
	bitDepth    int

	// Interleaved samples decoded past the last request
	pending []int
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Parse FLAC stream - reads signature and StreamInfo block
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  int(stream.Info.SampleRate),
		numFrames:   int64(stream.Info.NSamples),
		numChannels: int(stream.Info.NChannels),
		bitDepth:    int(stream.Info.BitsPerSample),
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *FLACDecoder) ReadChunk(numFrames int) ([]int, error) {
	want := numFrames * d.numChannels

	// Read FLAC frames until we have enough samples
	for len(d.pending) < want {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// One subframe per channel; interleave them
		blockSize := len(frame.Subframes[0].Samples)
		for i := 0; i < blockSize; i++ {
			for _, subframe := range frame.Subframes {
				d.pending = append(d.pending, int(subframe.Samples[i]))
			}
		}
	}

	if len(d.pending) == 0 {
		return nil, io.EOF
	}

	n := min(want, len(d.pending))
	samples := make([]int, n)
	copy(samples, d.pending[:n])
	d.pending = d.pending[n:]
	return samples, nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumFrames returns the total number of frames
func (d *FLACDecoder) NumFrames() int64 {
	return d.numFrames
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// BitDepth returns the bits per sample
func (d *FLACDecoder) BitDepth() int {
	return d.bitDepth
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
		d.stream = nil
	}
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}
