package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// loadChunkFrames is how many frames Load requests per decoder read.
const loadChunkFrames = 65536

// Load decodes an entire audio file into memory.
func Load(filename string) (*PCM, error) {
	if _, err := os.Stat(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}

	dec, err := NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio: %w", err)
	}
	defer dec.Close()

	pcm, err := ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return pcm, nil
}

// ReadAll drains a decoder into a PCM buffer.
func ReadAll(dec AudioDecoder) (*PCM, error) {
	capacity := dec.NumFrames() * int64(dec.NumChannels())
	data := make([]int, 0, capacity)

	for {
		chunk, err := dec.ReadChunk(loadChunkFrames)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		data = append(data, chunk...)
	}

	return NewPCM(data, dec.SampleRate(), dec.NumChannels(), dec.BitDepth())
}
