package chunk

import "slices"

// Strip returns a deep copy of the chunk without debug information, as
// luac -s produces: no line info, local variables, upvalue names or
// source names. Every function, main included, is encoded with the
// absent source.
func (c *Chunk) Strip() *Chunk {
	out := &Chunk{
		Header:       c.Header,
		MainUpvalues: c.MainUpvalues,
	}
	if c.Main != nil {
		out.Main = stripProto(c.Main)
	}
	return out
}

func stripProto(p *Prototype) *Prototype {
	q := &Prototype{
		LineDefined:     p.LineDefined,
		LastLineDefined: p.LastLineDefined,
		NumParams:       p.NumParams,
		IsVararg:        p.IsVararg,
		MaxStackSize:    p.MaxStackSize,
		Code:            append([]uint32(nil), p.Code...),
		Constants:       append([]Constant(nil), p.Constants...),
		Upvalues:        append([]Upvalue(nil), p.Upvalues...),
		SourceInherited: true,
	}
	if len(p.Protos) > 0 {
		q.Protos = make([]*Prototype, len(p.Protos))
		for i, child := range p.Protos {
			q.Protos[i] = stripProto(child)
		}
	}
	return q
}

// Equal reports whether two chunks are structurally equal, header included.
func (c *Chunk) Equal(o *Chunk) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Header != o.Header || c.MainUpvalues != o.MainUpvalues {
		return false
	}
	return c.Main.Equal(o.Main)
}

// Equal reports whether two prototype trees are structurally equal.
// Nil and empty slices compare equal.
func (p *Prototype) Equal(o *Prototype) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Source != o.Source ||
		p.SourceInherited != o.SourceInherited ||
		p.LineDefined != o.LineDefined ||
		p.LastLineDefined != o.LastLineDefined ||
		p.NumParams != o.NumParams ||
		p.IsVararg != o.IsVararg ||
		p.MaxStackSize != o.MaxStackSize {
		return false
	}
	if !slices.Equal(p.Code, o.Code) ||
		!slices.Equal(p.Upvalues, o.Upvalues) ||
		!slices.Equal(p.LineInfo, o.LineInfo) ||
		!slices.Equal(p.LocVars, o.LocVars) ||
		!slices.Equal(p.UpvalueNames, o.UpvalueNames) {
		return false
	}
	if len(p.Constants) != len(o.Constants) {
		return false
	}
	for i := range p.Constants {
		if !p.Constants[i].Equal(o.Constants[i]) {
			return false
		}
	}
	if len(p.Protos) != len(o.Protos) {
		return false
	}
	for i := range p.Protos {
		if !p.Protos[i].Equal(o.Protos[i]) {
			return false
		}
	}
	return true
}
