// Package repack regroups ordered audio segments into output chunks whose
// durations honour either an upper or a lower bound.
package repack

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput is returned when there are no segments to repack.
	ErrEmptyInput = errors.New("no segments to repack")
	// ErrInvalidDuration is returned for a non-positive bound, or a bound
	// shorter than the resolution of the buffers being repacked.
	ErrInvalidDuration = errors.New("invalid duration bound")
	// ErrUnknownMode is returned by Repack for a mode other than Max or Min.
	ErrUnknownMode = errors.New("unknown repack mode")
)

// Buffer is a time-ordered audio buffer of known duration. Implementations
// must treat values as immutable: Slice and Concat return new buffers.
type Buffer[B any] interface {
	Duration() time.Duration
	// Slice returns the range [start, end) of the buffer's own timeline.
	Slice(start, end time.Duration) (B, error)
	// Concat returns a new buffer with other appended.
	Concat(other B) (B, error)
	IsEmpty() bool
}

// Segment is one output chunk. Index is its 1-based position in the result.
type Segment[B any] struct {
	Index int
	Audio B
}

// Mode selects the repacking policy.
type Mode string

const (
	// ModeMax never lets a chunk exceed the bound; overflow carries over.
	ModeMax Mode = "max"
	// ModeMin never lets a chunk (except the last) fall below the bound.
	ModeMin Mode = "min"
)

// Repack dispatches to Max or Min.
func Repack[B Buffer[B]](segments []B, mode Mode, bound time.Duration) ([]Segment[B], error) {
	switch mode {
	case ModeMax:
		return Max(segments, bound)
	case ModeMin:
		return Min(segments, bound)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// accumulator holds the chunk being built and the chunks already completed.
type accumulator[B Buffer[B]] struct {
	buf     B
	present bool
	out     []Segment[B]
}

func (a *accumulator[B]) duration() time.Duration {
	if !a.present {
		return 0
	}
	return a.buf.Duration()
}

func (a *accumulator[B]) add(b B) error {
	if !a.present {
		a.buf = b
		a.present = true
		return nil
	}
	joined, err := a.buf.Concat(b)
	if err != nil {
		return fmt.Errorf("append segment: %w", err)
	}
	a.buf = joined
	return nil
}

func (a *accumulator[B]) flush() {
	if !a.present {
		return
	}
	a.out = append(a.out, Segment[B]{Index: len(a.out) + 1, Audio: a.buf})
	var zero B
	a.buf = zero
	a.present = false
}
