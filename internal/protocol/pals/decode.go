package pals

import "fmt"

// Decode recovers the segment list framed in buf. It returns either every
// segment or an error, never a partial list. The returned segments share one
// freshly allocated backing array and do not alias buf.
func (c Codec) Decode(buf []byte) ([][]byte, error) {
	count, start, err := c.scanTable(buf)
	if err != nil {
		return nil, err
	}

	w := c.variant.FieldSize()
	remaining := uint64(len(buf) - start)
	var total uint64
	for i := 0; i < count; i++ {
		n := c.variant.field(buf[i*w:]) - 1
		if n > remaining {
			return nil, fmt.Errorf("%w: segment %d needs %d bytes, %d remain", ErrIncompleteData, i, n, remaining)
		}
		remaining -= n
		total += n
	}
	if remaining > 0 && c.opts.StrictTrailing {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, remaining)
	}

	data := make([]byte, total)
	copy(data, buf[start:])
	segments := make([][]byte, count)
	off := 0
	for i := range segments {
		n := int(c.variant.field(buf[i*w:]) - 1)
		segments[i] = data[off : off+n : off+n]
		off += n
	}
	return segments, nil
}

// Lengths scans only the length table and returns the raw segment lengths
// together with the offset at which the payload region starts. The payload
// itself is not checked.
func (c Codec) Lengths(buf []byte) ([]uint64, int, error) {
	count, start, err := c.scanTable(buf)
	if err != nil {
		return nil, 0, err
	}
	w := c.variant.FieldSize()
	lengths := make([]uint64, count)
	for i := range lengths {
		lengths[i] = c.variant.field(buf[i*w:]) - 1
	}
	return lengths, start, nil
}

// scanTable walks the length table up to and including the terminator. It
// returns the number of segments and the payload offset.
func (c Codec) scanTable(buf []byte) (int, int, error) {
	if !c.variant.Valid() {
		return 0, 0, ErrUnknownVariant
	}
	w := c.variant.FieldSize()
	off := 0
	for count := 0; ; count++ {
		rem := len(buf) - off
		if rem == 0 {
			return 0, 0, fmt.Errorf("%w: %d fields read", ErrMissingTerminator, count)
		}
		if rem < w {
			return 0, 0, fmt.Errorf("%w: %d of %d bytes at offset %d", ErrTruncatedTable, rem, w, off)
		}
		shifted := c.variant.field(buf[off : off+w])
		off += w
		switch {
		case shifted == 0:
			if count == 0 {
				return 0, 0, fmt.Errorf("%w: table has no fields", ErrEmptyInput)
			}
			return count, off, nil
		case shifted == 1 && !c.opts.PermitEmptySegments:
			return 0, 0, fmt.Errorf("%w: segment %d", ErrEmptySegment, count)
		}
	}
}
