// Package luachunk reads, writes and inspects Lua 5.3 precompiled chunks.
//
// A chunk is the binary form luac and string.dump produce: a fixed header
// followed by a tree of function prototypes. This module decodes that tree
// into Go values, checks it for consistency, re-encodes it, and renders it
// as a luac style listing or as JSON, YAML and CBOR documents.
//
// # Architecture Overview
//
//	luachunk/
//	├── chunk/           Chunk decoding, encoding, stripping and validation
//	│   └── internal/
//	│       └── binary/  Little-endian cursor and writer for the dump format
//	├── export/          Document model and JSON, YAML, CBOR output
//	├── errors/          Structured error types carrying byte offsets
//	└── cmd/luachunk/    Command line tool and interactive browser
//
// # Quick Start
//
// Decode a chunk and list it:
//
//	data, err := os.ReadFile("luac.out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := chunk.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chunk.List(os.Stdout, c, true)
//
// Export it for other tools:
//
//	export.Write(os.Stdout, export.FormatJSON, c, false)
//
// # Error Handling
//
// Decode failures are *errors.Error values. Each carries a kind, the byte
// offset of the failing read and the path of the function being decoded:
//
//	c, err := chunk.Decode(data)
//	if e, ok := errors.As(err); ok {
//	    fmt.Printf("%s at offset %d in %v\n", e.Kind, e.Offset, e.Path)
//	}
//
// # Logging
//
// The chunk package logs through zap and is silent by default:
//
//	chunk.SetLogger(zap.NewExample())
package luachunk
