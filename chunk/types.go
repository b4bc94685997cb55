package chunk

// Chunk is a decoded binary chunk: header plus the main function prototype.
type Chunk struct {
	Main         *Prototype
	Header       Header
	MainUpvalues byte // upvalue count of the main closure
}

// Header is the fixed chunk prefix. It is kept for inspection only.
type Header struct {
	Signature       [4]byte
	LuacData        [6]byte
	LuacInt         int64
	LuacNum         float64
	Version         byte
	Format          byte
	CIntSize        byte
	SizeTSize       byte
	InstructionSize byte
	IntegerSize     byte
	NumberSize      byte
}

// DefaultHeader returns the header this package reads and writes.
func DefaultHeader() Header {
	h := Header{
		Version:         Version,
		Format:          Format,
		CIntSize:        CIntSize,
		SizeTSize:       SizeTSize,
		InstructionSize: InstructionSize,
		IntegerSize:     IntegerSize,
		NumberSize:      NumberSize,
		LuacInt:         LuacInt,
		LuacNum:         LuacNum,
	}
	copy(h.Signature[:], Signature)
	copy(h.LuacData[:], LuacData)
	return h
}

// Prototype is one compiled function. Protos are owned exclusively by
// their parent and kept in stream order.
type Prototype struct {
	Source          string
	Code            []uint32
	Constants       []Constant
	Upvalues        []Upvalue
	Protos          []*Prototype
	LineInfo        []uint32 // debug: source line per instruction
	LocVars         []LocVar // debug
	UpvalueNames    []string // debug
	LineDefined     uint32
	LastLineDefined uint32
	NumParams       byte
	IsVararg        byte
	MaxStackSize    byte

	// SourceInherited is set when the stream stored no source and Source
	// was taken from the enclosing prototype.
	SourceInherited bool
}

// Upvalue describes where a closure finds a captured variable: a register
// of the enclosing function (InStack=1) or one of its upvalues.
type Upvalue struct {
	InStack byte
	Index   byte
}

// LocVar is the live range of a local variable, in instruction indices.
type LocVar struct {
	Name    string
	StartPC uint32
	EndPC   uint32
}

// IsMain reports whether the prototype is a main chunk function
// (line defined 0).
func (p *Prototype) IsMain() bool {
	return p.LineDefined == 0
}

// Walk calls fn for p and every nested prototype in depth-first stream
// order. path holds child indices from p. Returning false stops descent
// into the current prototype's children.
func (p *Prototype) Walk(fn func(path []int, proto *Prototype) bool) {
	p.walk(nil, fn)
}

func (p *Prototype) walk(path []int, fn func([]int, *Prototype) bool) {
	if !fn(path, p) {
		return
	}
	for i, child := range p.Protos {
		child.walk(append(path[:len(path):len(path)], i), fn)
	}
}

// Count returns the number of prototypes in the tree rooted at p.
func (p *Prototype) Count() int {
	n := 0
	p.Walk(func([]int, *Prototype) bool {
		n++
		return true
	})
	return n
}

// Child returns the prototype at path below p, or nil.
func (p *Prototype) Child(path ...int) *Prototype {
	cur := p
	for _, i := range path {
		if i < 0 || i >= len(cur.Protos) {
			return nil
		}
		cur = cur.Protos[i]
	}
	return cur
}
