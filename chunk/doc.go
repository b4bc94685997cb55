// Package chunk provides Lua 5.3 binary chunk parsing and encoding.
//
// This package reads the precompiled chunks produced by luac 5.3 (or
// string.dump) for a 64-bit little-endian host into a tree of function
// prototypes, and writes such trees back out in the same layout.
//
// # Supported Layout
//
//	Header:
//	  - Signature "\x1bLua", version 0x53, format 0
//	  - LUAC_DATA "\x19\x93\r\n\x1a\n" transport check
//	  - Size bytes: int 4, size_t 8, Instruction 4, Integer 8, Number 8
//	  - LUAC_INT 0x5678 and LUAC_NUM 370.5 probes
//
//	Prototype:
//	  - Source, line range, parameter count, vararg flags, stack size
//	  - Code, constants (nil, boolean, float, integer, short and long strings)
//	  - Upvalue descriptors and nested prototypes in stream order
//	  - Debug info: line info, local variables, upvalue names
//
// # Parsing
//
// Parse a chunk from binary:
//
//	data, _ := os.ReadFile("luac.out")
//	c, err := chunk.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse with validation enabled:
//
//	c, err := chunk.ParseValidate(data)
//
// Chunks written by tools that store strings NUL-terminated instead of
// length-prefixed are read with options:
//
//	opts := chunk.DefaultOptions()
//	opts.Strings = chunk.StringsNulTerminated
//	c, err := chunk.DecodeWithOptions(data, opts)
//
// # Encoding
//
// Encode a chunk back to binary:
//
//	encoded := c.Encode()
//
// Decoding the encoded bytes yields an equal tree:
//
//	again, _ := chunk.Decode(c.Encode())
//	// again.Equal(c) == true
//
// Strip drops debug information the way luac -s does.
//
// # Listing
//
// List writes a luac -l style listing:
//
//	chunk.List(os.Stdout, c, true)
//
// # Errors
//
// Decode errors are *errors.Error values carrying the byte offset of the
// failing read. Match them by kind:
//
//	if stderrors.Is(err, errors.ErrTruncatedInput) { ... }
package chunk
