package repack

import (
	"fmt"
	"time"
)

// Min packs segments into chunks of at least floor. Segments are never split:
// a chunk keeps growing until it reaches floor, and the segment that arrives
// after that starts the next chunk. The last chunk takes whatever is left and
// may be shorter than floor.
func Min[B Buffer[B]](segments []B, floor time.Duration) ([]Segment[B], error) {
	if len(segments) == 0 {
		return nil, ErrEmptyInput
	}
	if floor <= 0 {
		return nil, fmt.Errorf("%w: min %v", ErrInvalidDuration, floor)
	}

	acc := &accumulator[B]{}
	for i, seg := range segments {
		if acc.present && acc.duration() >= floor {
			acc.flush()
		}
		if err := acc.add(seg); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	if acc.present && !acc.buf.IsEmpty() {
		acc.flush()
	}
	return acc.out, nil
}
