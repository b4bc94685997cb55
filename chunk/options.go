package chunk

import "fmt"

// StringFormat selects how strings are laid out in the chunk.
type StringFormat int

const (
	// StringsLua is the reference dump layout: a size byte (0xff escapes
	// to a size_t), size counting an unstored trailing NUL.
	StringsLua StringFormat = iota
	// StringsNulTerminated stores raw bytes followed by a zero byte.
	StringsNulTerminated
)

func (f StringFormat) String() string {
	switch f {
	case StringsLua:
		return "lua"
	case StringsNulTerminated:
		return "cstring"
	default:
		return fmt.Sprintf("StringFormat(%d)", int(f))
	}
}

// ParseStringFormat maps "lua" and "cstring" to a StringFormat.
func ParseStringFormat(s string) (StringFormat, error) {
	switch s {
	case "", "lua":
		return StringsLua, nil
	case "cstring", "nul":
		return StringsNulTerminated, nil
	default:
		return 0, fmt.Errorf("unknown string format %q (want lua or cstring)", s)
	}
}

// DefaultMaxDepth bounds prototype nesting, matching LUAI_MAXCCALLS.
const DefaultMaxDepth = 200

// Options configures decoding and encoding.
type Options struct {
	Strings StringFormat
	// MaxDepth bounds prototype nesting; 0 means DefaultMaxDepth.
	MaxDepth int
	// AllowTrailing accepts bytes after the main prototype.
	AllowTrailing bool
	// Validate runs Chunk.Validate after a successful decode.
	Validate bool
}

// DefaultOptions returns the options used by Decode.
func DefaultOptions() Options {
	return Options{
		Strings:  StringsLua,
		MaxDepth: DefaultMaxDepth,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
