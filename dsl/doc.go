// Package dsl declares FinTS segments and data element groups in Go code
// with a fluent builder.
//
//	ref := dsl.Group("ReferenceMessage").
//		Elem("dialogue_id", fints.TypeID).
//		Elem("message_number", fints.TypeNum, fints.MaxLength(4)).
//		MustBuild()
//
//	hnhbk := dsl.Segment("HNHBK3").Doc("Nachrichtenkopf").
//		Elem("message_size", fints.TypeDig, fints.Length(12)).
//		Elem("hbci_version", fints.TypeNum, fints.MaxLength(3)).
//		Elem("dialogue_id", fints.TypeID).
//		Elem("message_number", fints.TypeNum, fints.MaxLength(4)).
//		Group("reference_message", ref, fints.Optional()).
//		MustBuild()
//
// Build validates the whole declaration, nested groups included, and
// reports problems as *fints.SchemaDefinitionError.
package dsl
