package pals

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Variant selects the length-field width and byte order.
type Variant uint8

const (
	// Narrow uses 1-byte little-endian length fields.
	Narrow Variant = iota + 1
	// Wide uses 8-byte big-endian length fields.
	Wide
)

const (
	narrowFieldSize = 1
	wideFieldSize   = 8
)

func (v Variant) String() string {
	switch v {
	case Narrow:
		return "narrow"
	case Wide:
		return "wide"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == Narrow || v == Wide
}

// FieldSize is the byte width of one length field.
func (v Variant) FieldSize() int {
	if v == Wide {
		return wideFieldSize
	}
	return narrowFieldSize
}

// MaxSegmentLen is the largest raw segment length the variant can frame.
func (v Variant) MaxSegmentLen() uint64 {
	if v == Wide {
		return math.MaxUint64 - 1
	}
	return math.MaxUint8 - 1
}

// CheckLength validates a raw segment length against the field capacity.
func (v Variant) CheckLength(n uint64) error {
	if n > v.MaxSegmentLen() {
		return fmt.Errorf("%w: %d bytes exceeds %s max %d", ErrSegmentTooLarge, n, v, v.MaxSegmentLen())
	}
	return nil
}

func (v Variant) putField(dst []byte, x uint64) {
	if v == Wide {
		binary.BigEndian.PutUint64(dst, x)
		return
	}
	dst[0] = uint8(x)
}

func (v Variant) field(src []byte) uint64 {
	if v == Wide {
		return binary.BigEndian.Uint64(src)
	}
	return uint64(src[0])
}

// ParseVariant maps a config or flag value onto a Variant.
func ParseVariant(raw string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "narrow", "le", "u8":
		return Narrow, nil
	case "wide", "be", "u64":
		return Wide, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected narrow or wide)", ErrUnknownVariant, raw)
	}
}
