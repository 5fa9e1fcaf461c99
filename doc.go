// Package fints provides the segment type system of a FinTS 3.0 client:
//
// - Data element and data element group descriptors with FinTS value rules
// - Segment schemas whose type and version derive from their name (HNHBK3)
// - A positional parse/serialize engine over already tokenized segments
// - A registry that dispatches (type, version) to a schema, with a generic
//   fallback that round-trips unknown segments verbatim
//
// Design policy:
// - Keep the core free of I/O; tokenizing lives in wire/, the segment
//   catalog in catalog/, metrics in metrics/ and the CLI under cmd/fintseg.
// - Schema declarations fail at declaration time, never while parsing.
// - Segments and records are immutable values.
//
// Typical usage:
//
//	reg, _ := catalog.Load()
//	for _, groups := range msg {
//		seg, err := reg.ParseSegment(groups)
//		...
//	}
//
//	seg, err := schema.New(fints.Values{"message_number": 1})
//	groups, err := seg.Tokens()
package fints
