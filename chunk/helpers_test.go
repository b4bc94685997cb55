package chunk_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"

	"github.com/wippyai/luachunk/chunk"
)

// stream assembles chunk bytes by hand, independent of the encoder.
type stream struct {
	buf bytes.Buffer
}

func (s *stream) u8(b ...byte) *stream {
	s.buf.Write(b)
	return s
}

func (s *stream) u32(v uint32) *stream {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.buf.Write(b[:])
	return s
}

func (s *stream) i64(v int64) *stream {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	s.buf.Write(b[:])
	return s
}

func (s *stream) f64(v float64) *stream {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf.Write(b[:])
	return s
}

// str writes a short Lua string; "" is written as the absent string.
func (s *stream) str(v string) *stream {
	if v == "" {
		return s.u8(0)
	}
	s.u8(byte(len(v) + 1))
	s.buf.WriteString(v)
	return s
}

func (s *stream) header() *stream {
	s.buf.WriteString("\x1bLua")
	s.u8(0x53, 0x00)
	s.buf.WriteString("\x19\x93\r\n\x1a\n")
	s.u8(4, 8, 4, 8, 8)
	s.i64(0x5678)
	s.f64(370.5)
	return s
}

func (s *stream) bytes() []byte {
	return append([]byte(nil), s.buf.Bytes()...)
}

// protoDef describes a prototype for stream.proto. Only the fields the
// tests care about are configurable.
type protoDef struct {
	source   string
	line     uint32
	code     []uint32
	consts   func(*stream) int
	children []protoDef
}

var returnOp = uint32(chunk.CreateABC(chunk.OpReturn, 0, 1, 0))

func (s *stream) proto(p protoDef) *stream {
	s.str(p.source)
	s.u32(p.line).u32(p.line)
	s.u8(0, 2, 2)
	code := p.code
	if code == nil {
		code = []uint32{returnOp}
	}
	s.u32(uint32(len(code)))
	for _, c := range code {
		s.u32(c)
	}
	if p.consts != nil {
		// The callback writes the constants after a count placeholder.
		var body stream
		n := p.consts(&body)
		s.u32(uint32(n))
		s.buf.Write(body.buf.Bytes())
	} else {
		s.u32(0)
	}
	s.u32(0) // upvalues
	s.u32(uint32(len(p.children)))
	for _, c := range p.children {
		s.proto(c)
	}
	s.u32(0).u32(0).u32(0) // debug
	return s
}

// minimalChunk is a header, zero main upvalues and a main function
// holding only RETURN.
func minimalChunk() []byte {
	var s stream
	return s.header().u8(0).proto(protoDef{source: "@min.lua"}).bytes()
}

// sampleChunk mirrors what luac produces for
//
//	local function f(x) return x + 1 end
//	print(f(41))
//
// plus a few extra constants covering every constant kind.
func sampleChunk() *chunk.Chunk {
	f := &chunk.Prototype{
		Source:          "@sample.lua",
		SourceInherited: true,
		LineDefined:     1,
		LastLineDefined: 1,
		NumParams:       1,
		MaxStackSize:    2,
		Code: []uint32{
			uint32(chunk.CreateABC(chunk.OpAdd, 1, 0, chunk.BitRK|0)),
			uint32(chunk.CreateABC(chunk.OpReturn, 1, 2, 0)),
			uint32(chunk.CreateABC(chunk.OpReturn, 0, 1, 0)),
		},
		Constants: []chunk.Constant{chunk.Int(1)},
		LineInfo:  []uint32{1, 1, 1},
		LocVars:   []chunk.LocVar{{Name: "x", StartPC: 0, EndPC: 3}},
	}
	main := &chunk.Prototype{
		Source:       "@sample.lua",
		IsVararg:     chunk.VarargIsVararg,
		MaxStackSize: 4,
		Code: []uint32{
			uint32(chunk.CreateABx(chunk.OpClosure, 0, 0)),
			uint32(chunk.CreateABC(chunk.OpGetTabUp, 1, 0, chunk.BitRK|0)),
			uint32(chunk.CreateABC(chunk.OpMove, 2, 0, 0)),
			uint32(chunk.CreateABx(chunk.OpLoadK, 3, 1)),
			uint32(chunk.CreateABC(chunk.OpCall, 2, 2, 0)),
			uint32(chunk.CreateABC(chunk.OpCall, 1, 0, 1)),
			uint32(chunk.CreateABC(chunk.OpReturn, 0, 1, 0)),
		},
		Constants: []chunk.Constant{
			chunk.Str("print"),
			chunk.Int(41),
			chunk.Num(0.5),
			chunk.Bool(true),
			chunk.Nil(),
			chunk.Str(strings.Repeat("x", 50)),
		},
		Upvalues:     []chunk.Upvalue{{InStack: 1, Index: 0}},
		Protos:       []*chunk.Prototype{f},
		LineInfo:     []uint32{1, 2, 2, 2, 2, 2, 2},
		LocVars:      []chunk.LocVar{{Name: "f", StartPC: 1, EndPC: 7}},
		UpvalueNames: []string{"_ENV"},
	}
	return &chunk.Chunk{
		Header:       chunk.DefaultHeader(),
		MainUpvalues: 1,
		Main:         main,
	}
}
