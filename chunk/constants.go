package chunk

// Header values of a Lua 5.3 chunk built for a 64-bit little-endian host.
const (
	// Signature is the chunk magic ("\x1bLua").
	Signature = "\x1bLua"

	// Version is the supported format version (major*16 + minor).
	Version byte = 0x53

	// Format is the official format number.
	Format byte = 0

	// LuacData catches line-ending and charset conversion during transport.
	LuacData = "\x19\x93\r\n\x1a\n"

	// LuacInt and LuacNum detect integer and float format mismatches.
	LuacInt int64   = 0x5678
	LuacNum float64 = 370.5
)

// Size descriptors this decoder reads natively.
const (
	CIntSize        byte = 4
	SizeTSize       byte = 8
	InstructionSize byte = 4
	IntegerSize     byte = 8
	NumberSize      byte = 8
)

// HeaderSize is the encoded size of the chunk header.
const HeaderSize = 4 + 1 + 1 + 6 + 5 + 8 + 8

// Constant tags as written by the dumper (type | variant<<4).
const (
	TagNil         byte = 0x00
	TagBoolean     byte = 0x01
	TagNumber      byte = 0x03 // float
	TagInteger     byte = 0x13
	TagShortString byte = 0x04
	TagLongString  byte = 0x14
)

// MaxShortStringLen is the longest string the compiler stores with the
// short string tag (LUAI_MAXSHORTLEN).
const MaxShortStringLen = 40

// Vararg flag bits (Lua 5.3 still carries the 5.1 compatibility bits).
const (
	VarargHasArg   byte = 1
	VarargIsVararg byte = 2
	VarargNeedsArg byte = 4
)
