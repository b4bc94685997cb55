package chunk

import (
	"math"
	"strconv"
)

// ConstKind identifies the variant held by a Constant.
type ConstKind byte

const (
	ConstNil ConstKind = iota
	ConstBoolean
	ConstInteger
	ConstNumber
	ConstString
)

var constKindNames = [...]string{
	ConstNil:     "nil",
	ConstBoolean: "boolean",
	ConstInteger: "integer",
	ConstNumber:  "number",
	ConstString:  "string",
}

func (k ConstKind) String() string {
	if int(k) < len(constKindNames) {
		return constKindNames[k]
	}
	return "ConstKind(" + strconv.Itoa(int(k)) + ")"
}

// Constant is one entry of a prototype's constant pool. Only the payload
// field matching Kind is meaningful.
type Constant struct {
	Str  string
	Int  int64
	Num  float64
	Kind ConstKind
	Bool bool
	// LongString records that the string was stored with the long string
	// tag, so re-encoding reproduces the input byte for byte.
	LongString bool
}

// Nil returns the nil constant.
func Nil() Constant { return Constant{Kind: ConstNil} }

// Bool returns a boolean constant.
func Bool(b bool) Constant { return Constant{Kind: ConstBoolean, Bool: b} }

// Int returns an integer constant.
func Int(i int64) Constant { return Constant{Kind: ConstInteger, Int: i} }

// Num returns a float constant.
func Num(f float64) Constant { return Constant{Kind: ConstNumber, Num: f} }

// Str returns a string constant. Strings longer than MaxShortStringLen are
// tagged as long strings, as the reference compiler does.
func Str(s string) Constant {
	return Constant{Kind: ConstString, Str: s, LongString: len(s) > MaxShortStringLen}
}

// Tag returns the dump tag for the constant.
func (c Constant) Tag() byte {
	switch c.Kind {
	case ConstBoolean:
		return TagBoolean
	case ConstInteger:
		return TagInteger
	case ConstNumber:
		return TagNumber
	case ConstString:
		if c.LongString {
			return TagLongString
		}
		return TagShortString
	default:
		return TagNil
	}
}

// Value returns the payload as nil, bool, int64, float64 or string.
func (c Constant) Value() any {
	switch c.Kind {
	case ConstBoolean:
		return c.Bool
	case ConstInteger:
		return c.Int
	case ConstNumber:
		return c.Num
	case ConstString:
		return c.Str
	default:
		return nil
	}
}

// Equal reports structural equality. Floats compare by bit pattern so a
// NaN constant equals itself.
func (c Constant) Equal(o Constant) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ConstBoolean:
		return c.Bool == o.Bool
	case ConstInteger:
		return c.Int == o.Int
	case ConstNumber:
		return math.Float64bits(c.Num) == math.Float64bits(o.Num)
	case ConstString:
		return c.Str == o.Str && c.LongString == o.LongString
	default:
		return true
	}
}

// String renders the constant the way luac listings do.
func (c Constant) String() string {
	switch c.Kind {
	case ConstBoolean:
		return strconv.FormatBool(c.Bool)
	case ConstInteger:
		return strconv.FormatInt(c.Int, 10)
	case ConstNumber:
		return formatNumber(c.Num)
	case ConstString:
		return strconv.Quote(c.Str)
	default:
		return "nil"
	}
}

// formatNumber follows LUAI_NUMFFORMAT ("%.14g") and keeps a float look
// for integral values.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '.' || c == 'e' || c == 'n' || c == 'i' {
			return s
		}
	}
	return s + ".0"
}
