package pals

import "errors"

var (
	ErrUnknownVariant    = errors.New("pals: unknown variant")
	ErrEmptyInput        = errors.New("pals: empty segment list")
	ErrSegmentTooLarge   = errors.New("pals: segment too large")
	ErrEmptySegment      = errors.New("pals: empty segment not permitted")
	ErrTruncatedTable    = errors.New("pals: truncated length table")
	ErrMissingTerminator = errors.New("pals: missing table terminator")
	ErrIncompleteData    = errors.New("pals: incomplete payload")
	ErrTrailingData      = errors.New("pals: trailing data after payload")
	ErrBufferTooLarge    = errors.New("pals: buffer exceeds read limit")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrUnknownVariant, "unknown_variant"},
	{ErrEmptyInput, "empty_input"},
	{ErrSegmentTooLarge, "segment_too_large"},
	{ErrEmptySegment, "empty_segment"},
	{ErrTruncatedTable, "truncated_table"},
	{ErrMissingTerminator, "missing_terminator"},
	{ErrIncompleteData, "incomplete_data"},
	{ErrTrailingData, "trailing_data"},
	{ErrBufferTooLarge, "buffer_too_large"},
}

// KindOf returns a stable label for err. nil maps to "ok", errors outside
// this package map to "other".
func KindOf(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
