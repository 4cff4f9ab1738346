// Package detect finds the speech segments of a recording by asking an
// external silence detector where the pauses are.
package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linuxmatters/jivechunk/internal/audio"
)

// ErrDetectionFailure is returned when the detector fails or finds no speech.
var ErrDetectionFailure = errors.New("silence detection failed")

// Params configures silence detection.
type Params struct {
	// MinSilenceLen is the shortest pause that separates two segments.
	MinSilenceLen time.Duration
	// SilenceThreshDB is the level in dBFS below which audio counts as silence.
	SilenceThreshDB float64
	// Padding is the silence kept on each side of a speech segment.
	Padding time.Duration
	// ScanStep is the granularity of segment boundaries.
	ScanStep time.Duration
}

// Interval is a span of the source timeline.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End - i.Start
}

// Detector reports the silent intervals of an audio file in time order.
type Detector interface {
	Silences(ctx context.Context, path string, p Params) ([]Interval, error)
}

// Split runs d against path and cuts buf, the decoded contents of path, into
// speech segments.
func Split(ctx context.Context, d Detector, path string, buf *audio.PCM, p Params) ([]*audio.PCM, error) {
	silences, err := d.Silences(ctx, path, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetectionFailure, err)
	}

	ranges := SpeechRanges(silences, buf.Duration(), p.Padding, p.ScanStep)
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: no valid chunks detected, check silence threshold settings", ErrDetectionFailure)
	}

	segments := make([]*audio.PCM, 0, len(ranges))
	for _, r := range ranges {
		seg, err := buf.Slice(r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("%w: cut %v-%v: %w", ErrDetectionFailure, r.Start, r.End, err)
		}
		if seg.IsEmpty() {
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no valid chunks detected, check silence threshold settings", ErrDetectionFailure)
	}
	return segments, nil
}

// SpeechRanges returns the non-silent parts of [0, total), each widened by
// padding on both sides. Where the padding of two neighbours overlaps, the
// boundary moves to the middle of the overlap so no audio is repeated.
// Boundaries are rounded down to multiples of step when step is positive.
func SpeechRanges(silences []Interval, total, padding, step time.Duration) []Interval {
	var speech []Interval
	cursor := time.Duration(0)
	for _, s := range silences {
		start := clamp(s.Start, 0, total)
		end := clamp(s.End, 0, total)
		if end <= start || end <= cursor {
			continue
		}
		if start > cursor {
			speech = append(speech, Interval{Start: cursor, End: start})
		}
		cursor = end
	}
	if cursor < total {
		speech = append(speech, Interval{Start: cursor, End: total})
	}

	out := make([]Interval, 0, len(speech))
	for _, r := range speech {
		r.Start = quantise(clamp(r.Start-padding, 0, total), step)
		if r.End+padding >= total {
			r.End = total
		} else {
			r.End = quantise(r.End+padding, step)
		}
		if n := len(out); n > 0 && out[n-1].End > r.Start {
			mid := quantise(r.Start+(out[n-1].End-r.Start)/2, step)
			out[n-1].End = mid
			r.Start = mid
			if out[n-1].End <= out[n-1].Start {
				out = out[:n-1]
			}
		}
		if r.End > r.Start {
			out = append(out, r)
		}
	}
	return out
}

func clamp(d, lo, hi time.Duration) time.Duration {
	return max(lo, min(d, hi))
}

func quantise(d, step time.Duration) time.Duration {
	if step <= 0 {
		return d
	}
	return d - d%step
}
