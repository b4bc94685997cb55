package chunk

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// List writes a luac -l style listing of every function in the chunk.
// With full set, constant, local and upvalue tables follow each function.
func List(w io.Writer, c *Chunk, full bool) error {
	if c.Main == nil {
		return nil
	}
	lw := &listWriter{w: w}
	c.Main.Walk(func(path []int, p *Prototype) bool {
		if lw.err != nil {
			return false
		}
		listProto(lw, p, path, full)
		return true
	})
	return lw.err
}

// ListFunction writes the listing of a single prototype; path is its
// position in the tree and only affects the labels.
func ListFunction(w io.Writer, p *Prototype, path []int, full bool) error {
	lw := &listWriter{w: w}
	listProto(lw, p, path, full)
	return lw.err
}

// FunctionName returns the label used for the prototype at path:
// "main" for the root and "function[0.1]" style names below it.
func FunctionName(path []int) string {
	if len(path) == 0 {
		return "main"
	}
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = strconv.Itoa(n)
	}
	return "function[" + strings.Join(parts, ".") + "]"
}

// DisplaySource shortens a chunk name the way luac does: "@file" and
// "=name" lose their prefix, anything else is a string chunk.
func DisplaySource(source string) string {
	switch {
	case source == "":
		return "?"
	case source[0] == '@' || source[0] == '=':
		return source[1:]
	case source[0] == Signature[0]:
		return "(bstring)"
	default:
		return "(string)"
	}
}

type listWriter struct {
	w   io.Writer
	err error
}

func (lw *listWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format, args...)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func listProto(lw *listWriter, p *Prototype, path []int, full bool) {
	kind := "function"
	if len(path) == 0 {
		kind = "main"
	}
	lw.printf("\n%s <%s:%d,%d> (%s) %s\n",
		kind, DisplaySource(p.Source), p.LineDefined, p.LastLineDefined,
		plural(len(p.Code), "instruction"), FunctionName(path))

	vararg := ""
	if p.IsVararg != 0 {
		vararg = "+"
	}
	params := "s"
	if p.NumParams == 1 {
		params = ""
	}
	lw.printf("%d%s param%s, %s, %s, %s, %s, %s\n",
		p.NumParams, vararg, params,
		plural(int(p.MaxStackSize), "slot"),
		plural(len(p.Upvalues), "upvalue"),
		plural(len(p.LocVars), "local"),
		plural(len(p.Constants), "constant"),
		plural(len(p.Protos), "function"))

	for pc, word := range p.Code {
		ins := Instruction(word)
		line := "-"
		if pc < len(p.LineInfo) {
			line = strconv.FormatUint(uint64(p.LineInfo[pc]), 10)
		}
		lw.printf("\t%d\t[%s]\t%-9s\t%s", pc+1, line, ins.Opcode(), ins.Operands())
		if comment := p.comment(pc, ins, path); comment != "" {
			lw.printf("\t; %s", comment)
		}
		lw.printf("\n")
	}

	if !full {
		return
	}

	name := FunctionName(path)
	lw.printf("constants (%d) for %s:\n", len(p.Constants), name)
	for i, k := range p.Constants {
		lw.printf("\t%d\t%s\n", i+1, k)
	}
	lw.printf("locals (%d) for %s:\n", len(p.LocVars), name)
	for i, lv := range p.LocVars {
		lw.printf("\t%d\t%s\t%d\t%d\n", i, lv.Name, lv.StartPC+1, lv.EndPC+1)
	}
	lw.printf("upvalues (%d) for %s:\n", len(p.Upvalues), name)
	for i, uv := range p.Upvalues {
		lw.printf("\t%d\t%s\t%d\t%d\n", i, p.upvalueName(i), uv.InStack, uv.Index)
	}
}

func (p *Prototype) upvalueName(i int) string {
	if i < len(p.UpvalueNames) && p.UpvalueNames[i] != "" {
		return p.UpvalueNames[i]
	}
	return "-"
}

func (p *Prototype) constant(i int) string {
	if i < 0 || i >= len(p.Constants) {
		return "?"
	}
	return p.Constants[i].String()
}

func (p *Prototype) rk(x int) string {
	if IsK(x) {
		return p.constant(IndexK(x))
	}
	return "-"
}

// comment returns the luac annotation for the instruction at pc.
func (p *Prototype) comment(pc int, ins Instruction, path []int) string {
	op := ins.Opcode()
	switch op {
	case OpLoadK:
		return p.constant(ins.Bx())
	case OpGetUpval, OpSetUpval:
		return p.upvalueName(ins.B())
	case OpGetTabUp:
		if IsK(ins.C()) {
			return p.upvalueName(ins.B()) + " " + p.rk(ins.C())
		}
		return p.upvalueName(ins.B())
	case OpSetTabUp:
		s := p.upvalueName(ins.A())
		if IsK(ins.B()) {
			s += " " + p.rk(ins.B())
		}
		if IsK(ins.C()) {
			s += " " + p.rk(ins.C())
		}
		return s
	case OpGetTable, OpSelf:
		if IsK(ins.C()) {
			return p.rk(ins.C())
		}
	case OpSetTable, OpAdd, OpSub, OpMul, OpMod, OpPow, OpDiv, OpIDiv,
		OpBAnd, OpBOr, OpBXor, OpShl, OpShr, OpEq, OpLt, OpLe:
		if IsK(ins.B()) || IsK(ins.C()) {
			return p.rk(ins.B()) + " " + p.rk(ins.C())
		}
	case OpJmp, OpForLoop, OpForPrep, OpTForLoop:
		return "to " + strconv.Itoa(pc+ins.SBx()+2)
	case OpClosure:
		child := append(path[:len(path):len(path)], ins.Bx())
		return FunctionName(child)
	case OpSetList:
		if ins.C() == 0 && pc+1 < len(p.Code) {
			return strconv.Itoa(Instruction(p.Code[pc+1]).Ax())
		}
		return strconv.Itoa(ins.C())
	}
	return ""
}
