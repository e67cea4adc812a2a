package pals

import (
	"fmt"
	"slices"
)

// EncodedLen returns the exact size Encode would produce for segments, after
// running the same validation.
func (c Codec) EncodedLen(segments [][]byte) (int, error) {
	if !c.variant.Valid() {
		return 0, ErrUnknownVariant
	}
	if len(segments) == 0 {
		return 0, ErrEmptyInput
	}
	size := (len(segments) + 1) * c.variant.FieldSize()
	for i, seg := range segments {
		if err := c.checkSegment(i, uint64(len(seg))); err != nil {
			return 0, err
		}
		size += len(seg)
	}
	return size, nil
}

// Encode returns the framed buffer for segments.
func (c Codec) Encode(segments [][]byte) ([]byte, error) {
	return c.AppendEncode(nil, segments)
}

// AppendEncode appends the framed buffer for segments to dst. All segments
// are validated before anything is appended; on error dst is returned as is.
func (c Codec) AppendEncode(dst []byte, segments [][]byte) ([]byte, error) {
	size, err := c.EncodedLen(segments)
	if err != nil {
		return dst, err
	}
	out := slices.Grow(dst, size)

	w := c.variant.FieldSize()
	var field [wideFieldSize]byte
	for _, seg := range segments {
		c.variant.putField(field[:w], uint64(len(seg))+1)
		out = append(out, field[:w]...)
	}
	clear(field[:w])
	out = append(out, field[:w]...)

	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out, nil
}

func (c Codec) checkSegment(i int, n uint64) error {
	if n == 0 && !c.opts.PermitEmptySegments {
		return fmt.Errorf("%w: segment %d", ErrEmptySegment, i)
	}
	if err := c.variant.CheckLength(n); err != nil {
		return fmt.Errorf("segment %d: %w", i, err)
	}
	return nil
}
