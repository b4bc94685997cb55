package export

import (
	"math"

	"github.com/wippyai/luachunk/chunk"
)

// Document is the serializable view of a chunk. Field names are stable
// across releases; tools may depend on them.
type Document struct {
	Header       Header    `json:"header" yaml:"header" cbor:"header"`
	Main         *Function `json:"main" yaml:"main" cbor:"main"`
	MainUpvalues int       `json:"main_upvalues" yaml:"main_upvalues" cbor:"main_upvalues"`
}

// Header mirrors chunk.Header with printable values.
type Header struct {
	Version         string  `json:"version" yaml:"version" cbor:"version"`
	LuacNum         float64 `json:"luac_num" yaml:"luac_num" cbor:"luac_num"`
	LuacInt         int64   `json:"luac_int" yaml:"luac_int" cbor:"luac_int"`
	Format          int     `json:"format" yaml:"format" cbor:"format"`
	IntSize         int     `json:"int_size" yaml:"int_size" cbor:"int_size"`
	SizeTSize       int     `json:"size_t_size" yaml:"size_t_size" cbor:"size_t_size"`
	InstructionSize int     `json:"instruction_size" yaml:"instruction_size" cbor:"instruction_size"`
	IntegerSize     int     `json:"integer_size" yaml:"integer_size" cbor:"integer_size"`
	NumberSize      int     `json:"number_size" yaml:"number_size" cbor:"number_size"`
}

// Function is one prototype. Debug tables are present only for documents
// built with full set.
type Function struct {
	Name            string        `json:"name" yaml:"name" cbor:"name"`
	Source          string        `json:"source" yaml:"source" cbor:"source"`
	Code            []Instruction `json:"code" yaml:"code" cbor:"code"`
	Constants       []Constant    `json:"constants" yaml:"constants" cbor:"constants"`
	Upvalues        []Upvalue     `json:"upvalues" yaml:"upvalues" cbor:"upvalues"`
	Functions       []*Function   `json:"functions,omitempty" yaml:"functions,omitempty" cbor:"functions,omitempty"`
	LineInfo        []uint32      `json:"line_info,omitempty" yaml:"line_info,omitempty,flow" cbor:"line_info,omitempty"`
	Locals          []Local       `json:"locals,omitempty" yaml:"locals,omitempty" cbor:"locals,omitempty"`
	LineDefined     uint32        `json:"line_defined" yaml:"line_defined" cbor:"line_defined"`
	LastLineDefined uint32        `json:"last_line_defined" yaml:"last_line_defined" cbor:"last_line_defined"`
	NumParams       int           `json:"num_params" yaml:"num_params" cbor:"num_params"`
	IsVararg        int           `json:"is_vararg" yaml:"is_vararg" cbor:"is_vararg"`
	MaxStackSize    int           `json:"max_stack_size" yaml:"max_stack_size" cbor:"max_stack_size"`
	SourceInherited bool          `json:"source_inherited,omitempty" yaml:"source_inherited,omitempty" cbor:"source_inherited,omitempty"`
}

// Instruction pairs the raw word with its decoded form.
type Instruction struct {
	Op   string `json:"op" yaml:"op" cbor:"op"`
	Text string `json:"text" yaml:"text" cbor:"text"`
	Word uint32 `json:"word" yaml:"word" cbor:"word"`
}

// Constant holds a typed value and its listing text. Value is nil for nil
// constants and for floats JSON cannot represent (NaN, infinities); Text
// is always set.
type Constant struct {
	Value any    `json:"value" yaml:"value" cbor:"value"`
	Type  string `json:"type" yaml:"type" cbor:"type"`
	Text  string `json:"text" yaml:"text" cbor:"text"`
}

type Upvalue struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty" cbor:"name,omitempty"`
	Index   int    `json:"index" yaml:"index" cbor:"index"`
	InStack bool   `json:"in_stack" yaml:"in_stack" cbor:"in_stack"`
}

type Local struct {
	Name    string `json:"name" yaml:"name" cbor:"name"`
	StartPC uint32 `json:"start_pc" yaml:"start_pc" cbor:"start_pc"`
	EndPC   uint32 `json:"end_pc" yaml:"end_pc" cbor:"end_pc"`
}

// New builds a Document from a decoded chunk. With full set, line info
// and local variables are included.
func New(c *chunk.Chunk, full bool) *Document {
	h := c.Header
	d := &Document{
		Header: Header{
			Version:         formatVersion(h.Version),
			Format:          int(h.Format),
			IntSize:         int(h.CIntSize),
			SizeTSize:       int(h.SizeTSize),
			InstructionSize: int(h.InstructionSize),
			IntegerSize:     int(h.IntegerSize),
			NumberSize:      int(h.NumberSize),
			LuacInt:         h.LuacInt,
			LuacNum:         h.LuacNum,
		},
		MainUpvalues: int(c.MainUpvalues),
	}
	if c.Main != nil {
		d.Main = newFunction(c.Main, nil, full)
	}
	return d
}

func formatVersion(v byte) string {
	return string([]byte{'0' + v>>4, '.', '0' + v&0x0f})
}

func newFunction(p *chunk.Prototype, path []int, full bool) *Function {
	f := &Function{
		Name:            chunk.FunctionName(path),
		Source:          p.Source,
		SourceInherited: p.SourceInherited,
		LineDefined:     p.LineDefined,
		LastLineDefined: p.LastLineDefined,
		NumParams:       int(p.NumParams),
		IsVararg:        int(p.IsVararg),
		MaxStackSize:    int(p.MaxStackSize),
		Code:            make([]Instruction, len(p.Code)),
		Constants:       make([]Constant, len(p.Constants)),
		Upvalues:        make([]Upvalue, len(p.Upvalues)),
	}

	for i, word := range p.Code {
		ins := chunk.Instruction(word)
		f.Code[i] = Instruction{Word: word, Op: ins.Opcode().String(), Text: ins.String()}
	}
	for i, k := range p.Constants {
		f.Constants[i] = newConstant(k)
	}
	for i, uv := range p.Upvalues {
		f.Upvalues[i] = Upvalue{InStack: uv.InStack != 0, Index: int(uv.Index)}
		if i < len(p.UpvalueNames) {
			f.Upvalues[i].Name = p.UpvalueNames[i]
		}
	}

	if full {
		f.LineInfo = p.LineInfo
		for _, lv := range p.LocVars {
			f.Locals = append(f.Locals, Local{Name: lv.Name, StartPC: lv.StartPC, EndPC: lv.EndPC})
		}
	}

	for i, child := range p.Protos {
		childPath := append(path[:len(path):len(path)], i)
		f.Functions = append(f.Functions, newFunction(child, childPath, full))
	}
	return f
}

func newConstant(k chunk.Constant) Constant {
	c := Constant{Type: k.Kind.String(), Text: k.String(), Value: k.Value()}
	if k.Kind == chunk.ConstNumber && (math.IsNaN(k.Num) || math.IsInf(k.Num, 0)) {
		c.Value = nil
	}
	return c
}
