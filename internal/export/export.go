// Package export writes repacked chunks to disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/linuxmatters/jivechunk/internal/audio"
	"github.com/linuxmatters/jivechunk/internal/repack"
)

// ErrExportFailure wraps every error raised while writing output files.
var ErrExportFailure = errors.New("export failed")

// Options controls file naming and the combined output.
type Options struct {
	// Dir receives one <index>.wav per chunk.
	Dir string
	// FirstIndex is the file number of the first chunk.
	FirstIndex int
	// CombinedPath receives all chunks back to back. Empty disables it.
	CombinedPath string
}

// Written describes one chunk file on disk.
type Written struct {
	Index    int
	Path     string
	Duration time.Duration
}

// ProgressFunc is called after each chunk file is written.
type ProgressFunc func(done, total int, w Written)

// PrepareDir deletes dir if it exists and recreates it empty.
func PrepareDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrExportFailure, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrExportFailure, dir, err)
	}
	return nil
}

// Write saves each chunk as <Dir>/<FirstIndex+i>.wav in order, streaming
// them into CombinedPath as it goes. On failure the files already written
// are left in place. Cancelling ctx stops before the next chunk.
func Write(ctx context.Context, chunks []repack.Segment[*audio.PCM], opts Options, progress ProgressFunc) ([]Written, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to save", ErrExportFailure)
	}

	var combined *audio.WAVWriter
	if opts.CombinedPath != "" {
		w, err := audio.CreateWAV(opts.CombinedPath, chunks[0].Audio)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", ErrExportFailure, opts.CombinedPath, err)
		}
		combined = w
		defer combined.Close()
	}

	written := make([]Written, 0, len(chunks))
	for i, chunk := range chunks {
		index := opts.FirstIndex + i
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("%w: stopped before chunk %d: %w", ErrExportFailure, index, err)
		}
		path := filepath.Join(opts.Dir, strconv.Itoa(index)+".wav")

		if err := audio.WriteWAV(path, chunk.Audio); err != nil {
			return written, fmt.Errorf("%w: chunk %d: %w", ErrExportFailure, index, err)
		}
		if combined != nil {
			if err := combined.Write(chunk.Audio); err != nil {
				return written, fmt.Errorf("%w: append chunk %d to %s: %w", ErrExportFailure, index, opts.CombinedPath, err)
			}
		}

		w := Written{Index: index, Path: path, Duration: chunk.Audio.Duration()}
		written = append(written, w)
		if progress != nil {
			progress(i+1, len(chunks), w)
		}
	}

	if combined != nil {
		if err := combined.Close(); err != nil {
			return written, fmt.Errorf("%w: finalise %s: %w", ErrExportFailure, opts.CombinedPath, err)
		}
	}
	return written, nil
}
