package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pals/internal/protocol/pals"
	"github.com/danmuck/pals/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestEncodeDecodeFiles(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte{1, 2, 3})
	b := writeFile(t, dir, "b", nil)
	c := writeFile(t, dir, "c", []byte{9, 9})
	out := filepath.Join(dir, "out.pals")

	if err := run([]string{"encode", "-variant", "narrow", "-o", out, a, b, c}, &bytes.Buffer{}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(buf, []byte{4, 1, 3, 0, 1, 2, 3, 9, 9}) {
		t.Fatalf("unexpected encoded buffer: %v", buf)
	}

	segDir := filepath.Join(dir, "segments")
	var stdout bytes.Buffer
	if err := run([]string{"decode", "-variant", "narrow", "-dir", segDir, out}, &stdout); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Count(stdout.String(), "\n"); got != 3 {
		t.Fatalf("expected 3 segment paths, got %d: %q", got, stdout.String())
	}
	got, err := os.ReadFile(filepath.Join(segDir, segmentFileName(2)))
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	if !bytes.Equal(got, []byte{9, 9}) {
		t.Fatalf("unexpected segment 2: %v", got)
	}
}

func TestEncodeToStdoutWide(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte{10, 20})

	var stdout bytes.Buffer
	if err := run([]string{"encode", "-o", "-", a}, &stdout); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 0, 10, 20}
	if !bytes.Equal(stdout.Bytes(), want) {
		t.Fatalf("unexpected wide buffer: %v", stdout.Bytes())
	}
}

func TestEncodeWithoutSegmentsFails(t *testing.T) {
	testlog.Start(t)
	out := filepath.Join(t.TempDir(), "out.pals")
	err := run([]string{"encode", "-o", out}, &bytes.Buffer{})
	if !errors.Is(err, pals.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output written on failure")
	}
}

func TestDecodeStrictFlag(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "in.pals", []byte{2, 0, 7, 0xEE})

	err := run([]string{"decode", "-variant", "narrow", "-strict", "-dir", filepath.Join(dir, "out"), in}, &bytes.Buffer{})
	if !errors.Is(err, pals.ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "in.pals", []byte{4, 1, 3, 0, 1, 2, 3, 9, 9})

	var stdout bytes.Buffer
	if err := run([]string{"inspect", "-variant", "narrow", in}, &stdout); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "segments=3 payload_offset=4 payload_bytes=5 buffer_bytes=9") {
		t.Fatalf("unexpected summary: %q", out)
	}
	if !strings.Contains(out, "segment[1] len=0") {
		t.Fatalf("missing empty segment line: %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run([]string{"compress"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := run(nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func wideDecodeBytesSum(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "pals_codec_bytes" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == "decode" && labels["variant"] == "wide" {
				return m.GetHistogram().GetSampleSum()
			}
		}
	}
	return 0
}

func TestDecodeRecordsBufferSize(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 0, 10, 20}
	in := writeFile(t, dir, "in.pals", buf)

	before := wideDecodeBytesSum(t)
	if err := run([]string{"decode", "-dir", filepath.Join(dir, "out"), in}, &bytes.Buffer{}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := wideDecodeBytesSum(t) - before; got != float64(len(buf)) {
		t.Fatalf("recorded %v decode bytes, want %d", got, len(buf))
	}
}

func TestAllowEmptyFlag(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte{1})
	b := writeFile(t, dir, "b", nil)
	out := filepath.Join(dir, "out.pals")

	err := run([]string{"encode", "-variant", "narrow", "-allow-empty=false", "-o", out, a, b}, &bytes.Buffer{})
	if !errors.Is(err, pals.ErrEmptySegment) {
		t.Fatalf("expected ErrEmptySegment, got %v", err)
	}
}
