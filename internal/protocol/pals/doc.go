// Package pals implements the pre-allocated length serialization framing
// format: a table of shifted segment lengths closed by a zero terminator,
// followed by the concatenated segment payloads.
//
// Buffer layout:
//
//	[len_1+1][len_2+1]...[len_n+1][0][payload_1][payload_2]...[payload_n]
//
// Two variants exist and a buffer carries no tag saying which one wrote it:
// Narrow uses 1-byte little-endian fields, Wide uses 8-byte big-endian
// fields. Callers agree on the variant out of band.
package pals
