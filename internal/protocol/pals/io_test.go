package pals

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteReadSegments(t *testing.T) {
	c := New(Wide, DefaultOptions())
	segments := [][]byte{[]byte("header"), {}, []byte("body")}

	var buf bytes.Buffer
	n, err := c.WriteSegments(&buf, segments)
	if err != nil {
		t.Fatalf("write segments: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("reported %d bytes, wrote %d", n, buf.Len())
	}

	out, err := c.ReadSegments(&buf, 1024)
	if err != nil {
		t.Fatalf("read segments: %v", err)
	}
	if diff := cmp.Diff(segments, out); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSegmentsLimit(t *testing.T) {
	c := New(Narrow, DefaultOptions())
	buf, err := c.Encode([][]byte{bytes.Repeat([]byte{1}, 100)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := c.ReadSegments(bytes.NewReader(buf), int64(len(buf))); err != nil {
		t.Fatalf("read at exact limit: %v", err)
	}
	_, err = c.ReadSegments(bytes.NewReader(buf), int64(len(buf)-1))
	if !errors.Is(err, ErrBufferTooLarge) {
		t.Fatalf("expected ErrBufferTooLarge, got %v", err)
	}
}

func TestWriteSegmentsRejectsBeforeWriting(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(Narrow, DefaultOptions()).WriteSegments(&buf, nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("partial write on error: %d bytes", buf.Len())
	}
}

func TestReadSegmentsMaxLimit(t *testing.T) {
	c := New(Narrow, DefaultOptions())
	out, err := c.ReadSegments(bytes.NewReader([]byte{2, 0, 7}), math.MaxInt64)
	if err != nil {
		t.Fatalf("read with max limit: %v", err)
	}
	if diff := cmp.Diff([][]byte{{7}}, out); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBufferReturnsAllBytes(t *testing.T) {
	buf, err := ReadBuffer(bytes.NewReader([]byte{3, 0, 1, 2}), 4)
	if err != nil {
		t.Fatalf("read buffer: %v", err)
	}
	if len(buf) != 4 {
		t.Fatalf("read %d bytes, want 4", len(buf))
	}
	if _, err := ReadBuffer(bytes.NewReader([]byte{3, 0, 1, 2}), 3); !errors.Is(err, ErrBufferTooLarge) {
		t.Fatalf("expected ErrBufferTooLarge, got %v", err)
	}
}
