package repack

import (
	"fmt"
	"time"
)

// Max greedily packs segments into chunks of at most limit. When a segment
// does not fit, the part that does is appended, the chunk is closed and the
// rest is carried into the next chunk. A carried remainder longer than limit
// is split again until it fits, so no chunk ever exceeds limit.
func Max[B Buffer[B]](segments []B, limit time.Duration) ([]Segment[B], error) {
	if len(segments) == 0 {
		return nil, ErrEmptyInput
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: max %v", ErrInvalidDuration, limit)
	}

	acc := &accumulator[B]{}
	for i, seg := range segments {
		d := seg.Duration()
		if acc.duration()+d <= limit {
			if err := acc.add(seg); err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			continue
		}

		room := limit - acc.duration()
		head, err := seg.Slice(0, room)
		if err != nil {
			return nil, fmt.Errorf("segment %d: split at %v: %w", i, room, err)
		}
		if head.IsEmpty() && !acc.present {
			return nil, fmt.Errorf("%w: max %v is shorter than one sample", ErrInvalidDuration, limit)
		}
		if !head.IsEmpty() {
			if err := acc.add(head); err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
		}
		acc.flush()

		rest, err := seg.Slice(head.Duration(), d)
		if err != nil {
			return nil, fmt.Errorf("segment %d: carry over: %w", i, err)
		}
		for rest.Duration() > limit {
			piece, err := rest.Slice(0, limit)
			if err != nil {
				return nil, fmt.Errorf("segment %d: split remainder: %w", i, err)
			}
			if piece.IsEmpty() {
				return nil, fmt.Errorf("%w: max %v is shorter than one sample", ErrInvalidDuration, limit)
			}
			if err := acc.add(piece); err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			acc.flush()
			if rest, err = rest.Slice(piece.Duration(), rest.Duration()); err != nil {
				return nil, fmt.Errorf("segment %d: carry over: %w", i, err)
			}
		}
		if !rest.IsEmpty() {
			if err := acc.add(rest); err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
		}
	}

	if acc.duration() > 0 {
		acc.flush()
	}
	return acc.out, nil
}
