// Package walker navigates JSON documents and inlines JSON Schema
// references.
//
// # Inlining
//
// Inline copies the sub-schema selected by a JSON Pointer and replaces
// every object that carries a string "$ref" with a copy of the referenced
// schema. References are resolved against the base URI of the document
// that contains them; references into other documents are fetched through
// a Fetcher.
//
// A reference whose target is already being expanded further up the walk
// is recursive. Instead of expanding it forever it is rewritten into a
// local reference to the place where the target was copied:
//
//	{"$ref": "#/properties/devices/additionalProperties"}
//
// so that the result is a single self-contained schema with no references
// to other documents.
//
// # Literal keywords
//
// The values of "enum", "const", "default" and "examples" are data, not
// schemas. They are copied verbatim even if they contain "$ref" members.
//
// # Thread Safety
//
// An Inliner may be shared; every call to Inline keeps its own walk state.
// Input documents are never modified and the result shares no maps or
// slices with them.
package walker
