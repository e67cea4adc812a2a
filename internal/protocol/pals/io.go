package pals

import (
	"fmt"
	"io"
	"math"
)

// WriteSegments encodes segments and writes the whole buffer to w.
func (c Codec) WriteSegments(w io.Writer, segments [][]byte) (int64, error) {
	buf, err := c.Encode(segments)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadSegments reads r to EOF, up to limit bytes, and decodes the result.
// The full buffer is read before any segment is produced.
func (c Codec) ReadSegments(r io.Reader, limit int64) ([][]byte, error) {
	buf, err := ReadBuffer(r, limit)
	if err != nil {
		return nil, err
	}
	return c.Decode(buf)
}

// ReadBuffer reads r to EOF and fails with ErrBufferTooLarge when more than
// limit bytes are available.
func ReadBuffer(r io.Reader, limit int64) ([]byte, error) {
	n := limit
	if n < math.MaxInt64 {
		n++
	}
	buf, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBufferTooLarge, limit)
	}
	return buf, nil
}
