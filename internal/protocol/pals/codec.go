package pals

// Options holds the policy knobs that are not fixed by the wire format.
type Options struct {
	// PermitEmptySegments allows zero-length segments on encode and decode.
	PermitEmptySegments bool
	// StrictTrailing rejects bytes left over after the last segment.
	StrictTrailing bool
}

func DefaultOptions() Options {
	return Options{
		PermitEmptySegments: true,
		StrictTrailing:      false,
	}
}

// Codec binds a variant to a policy. The zero value is unusable; build one
// with New. A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	variant Variant
	opts    Options
}

// New returns a Codec for variant v with the given policy.
func New(v Variant, opts Options) Codec {
	return Codec{variant: v, opts: opts}
}

func (c Codec) Variant() Variant {
	return c.variant
}

func (c Codec) Options() Options {
	return c.opts
}

// Encode frames segments with the default options.
func Encode(v Variant, segments [][]byte) ([]byte, error) {
	return New(v, DefaultOptions()).Encode(segments)
}

// Decode unframes buf with the default options.
func Decode(v Variant, buf []byte) ([][]byte, error) {
	return New(v, DefaultOptions()).Decode(buf)
}
