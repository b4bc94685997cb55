// Package export renders decoded chunks for other tools.
//
// A chunk is first converted to a Document, a plain tree of functions,
// instructions and constants, and then written as JSON, YAML or canonical
// CBOR. The list format writes the luac -l style listing instead.
//
//	c, _ := chunk.Decode(data)
//	export.Write(os.Stdout, export.FormatJSON, c, true)
package export
