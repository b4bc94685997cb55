package chunk

import (
	"strings"

	"github.com/wippyai/luachunk/chunk/internal/binary"
	"github.com/wippyai/luachunk/errors"
)

// Encode encodes the chunk in the reference dump layout. The header is
// always written with the values this package supports; Header fields are
// not consulted. A nil Main is written as an empty function.
func (c *Chunk) Encode() []byte {
	w := binary.NewWriter()
	e := encoder{w: w, strings: StringsLua}
	e.chunk(c)
	return w.Bytes()
}

// EncodeWithOptions encodes the chunk using opts.Strings. NUL-terminated
// strings cannot carry zero bytes, so such strings are rejected.
func (c *Chunk) EncodeWithOptions(opts Options) ([]byte, error) {
	if opts.Strings == StringsNulTerminated {
		if err := checkNulFree(c); err != nil {
			return nil, err
		}
	}
	w := binary.NewWriter()
	e := encoder{w: w, strings: opts.Strings}
	e.chunk(c)
	return w.Bytes(), nil
}

func checkNulFree(c *Chunk) error {
	if c.Main == nil {
		return nil
	}
	var bad error
	c.Main.Walk(func(path []int, p *Prototype) bool {
		if bad != nil {
			return false
		}
		check := func(field, s string) {
			if bad == nil && strings.IndexByte(s, 0) >= 0 {
				bad = errors.New(errors.PhaseEncode, errors.KindInvalidData).
					Path(pathNames(path)...).
					Field(field).
					Detail("string contains a NUL byte").
					Build()
			}
		}
		check("source", p.Source)
		for _, k := range p.Constants {
			if k.Kind == ConstString {
				check("constant", k.Str)
			}
		}
		for _, lv := range p.LocVars {
			check("local variable name", lv.Name)
		}
		for _, name := range p.UpvalueNames {
			check("upvalue name", name)
		}
		return true
	})
	return bad
}

type encoder struct {
	w       *binary.Writer
	strings StringFormat
}

func (e *encoder) chunk(c *Chunk) {
	w := e.w
	h := DefaultHeader()
	w.WriteBytes(h.Signature[:])
	w.Byte(h.Version)
	w.Byte(h.Format)
	w.WriteBytes(h.LuacData[:])
	w.Byte(h.CIntSize)
	w.Byte(h.SizeTSize)
	w.Byte(h.InstructionSize)
	w.Byte(h.IntegerSize)
	w.Byte(h.NumberSize)
	w.WriteI64(h.LuacInt)
	w.WriteF64(h.LuacNum)

	w.Byte(c.MainUpvalues)
	main := c.Main
	if main == nil {
		main = &Prototype{}
	}
	e.proto(main)
}

func (e *encoder) string(s string) {
	if e.strings == StringsNulTerminated {
		e.w.WriteCString(s)
		return
	}
	e.w.WriteString(s)
}

func (e *encoder) source(p *Prototype) {
	if !p.SourceInherited && p.Source != "" {
		e.string(p.Source)
		return
	}
	if e.strings == StringsNulTerminated {
		e.w.WriteCString("")
		return
	}
	e.w.WriteAbsent()
}

func (e *encoder) proto(p *Prototype) {
	w := e.w
	e.source(p)
	w.WriteU32(p.LineDefined)
	w.WriteU32(p.LastLineDefined)
	w.Byte(p.NumParams)
	w.Byte(p.IsVararg)
	w.Byte(p.MaxStackSize)

	w.WriteU32(uint32(len(p.Code)))
	for _, ins := range p.Code {
		w.WriteU32(ins)
	}

	w.WriteU32(uint32(len(p.Constants)))
	for _, k := range p.Constants {
		w.Byte(k.Tag())
		switch k.Kind {
		case ConstBoolean:
			if k.Bool {
				w.Byte(1)
			} else {
				w.Byte(0)
			}
		case ConstInteger:
			w.WriteI64(k.Int)
		case ConstNumber:
			w.WriteF64(k.Num)
		case ConstString:
			e.string(k.Str)
		}
	}

	w.WriteU32(uint32(len(p.Upvalues)))
	for _, uv := range p.Upvalues {
		w.Byte(uv.InStack)
		w.Byte(uv.Index)
	}

	w.WriteU32(uint32(len(p.Protos)))
	for _, child := range p.Protos {
		if child == nil {
			child = &Prototype{SourceInherited: true}
		}
		e.proto(child)
	}

	w.WriteU32(uint32(len(p.LineInfo)))
	for _, line := range p.LineInfo {
		w.WriteU32(line)
	}

	w.WriteU32(uint32(len(p.LocVars)))
	for _, lv := range p.LocVars {
		e.string(lv.Name)
		w.WriteU32(lv.StartPC)
		w.WriteU32(lv.EndPC)
	}

	w.WriteU32(uint32(len(p.UpvalueNames)))
	for _, name := range p.UpvalueNames {
		e.string(name)
	}
}
