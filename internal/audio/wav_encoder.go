package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM audio format tag.
const wavFormatPCM = 1

// WAVWriter streams PCM buffers of one format into a WAV file. Buffers
// written in sequence are concatenated in the output.
type WAVWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  *PCM
	frames  int64
}

// CreateWAV creates (or truncates) path and prepares it for buffers shaped
// like format. The header is finalised by Close.
func CreateWAV(path string, format *PCM) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &WAVWriter{
		file:    f,
		encoder: wav.NewEncoder(f, format.SampleRate(), format.BitDepth(), format.NumChannels(), wavFormatPCM),
		format:  format,
	}, nil
}

// Write appends p to the file.
func (w *WAVWriter) Write(p *PCM) error {
	if !w.format.SameFormat(p) {
		return fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, w.format.FormatString(), p.FormatString())
	}
	if err := w.encoder.Write(p.IntBuffer()); err != nil {
		return fmt.Errorf("failed to encode WAV data: %w", err)
	}
	w.frames += int64(p.Frames())
	return nil
}

// Frames returns the number of frames written so far.
func (w *WAVWriter) Frames() int64 { return w.frames }

// Close finalises the header and closes the file.
func (w *WAVWriter) Close() error {
	if w.file == nil {
		return nil
	}
	encErr := w.encoder.Close()
	fileErr := w.file.Close()
	w.file = nil
	if encErr != nil {
		return fmt.Errorf("failed to finalise WAV header: %w", encErr)
	}
	return fileErr
}

// WriteWAV writes a single buffer to path.
func WriteWAV(path string, p *PCM) error {
	w, err := CreateWAV(path, p)
	if err != nil {
		return err
	}
	if err := w.Write(p); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
