package chunk

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/luachunk/errors"
)

// Validate checks the decoded tree for internal consistency. Decoding
// itself only guarantees the stream was well formed; Validate checks that
// the debug tables, operands and counts agree with each other.
func (c *Chunk) Validate() error {
	if c.Main == nil {
		return errors.Inconsistent(nil, "main", "chunk has no main function")
	}
	if int(c.MainUpvalues) != len(c.Main.Upvalues) {
		return errors.Inconsistent([]string{"main"}, "main_upvalues",
			fmt.Sprintf("header declares %d upvalues, main function has %d", c.MainUpvalues, len(c.Main.Upvalues)))
	}

	var err error
	c.Main.Walk(func(path []int, p *Prototype) bool {
		if err != nil {
			return false
		}
		err = p.validate(pathNames(path))
		return err == nil
	})
	if err != nil {
		Logger().Debug("chunk failed validation", zap.Error(err))
	}
	return err
}

// ParseValidate decodes a chunk with DefaultOptions and validates it.
func ParseValidate(data []byte) (*Chunk, error) {
	opts := DefaultOptions()
	opts.Validate = true
	return DecodeWithOptions(data, opts)
}

func pathNames(path []int) []string {
	names := make([]string, 0, len(path)+1)
	names = append(names, "main")
	for _, i := range path {
		names = append(names, strconv.Itoa(i))
	}
	return names
}

func (p *Prototype) validate(path []string) error {
	if err := p.validateHeader(path); err != nil {
		return err
	}
	if err := p.validateDebug(path); err != nil {
		return err
	}
	return p.validateOperands(path)
}

func (p *Prototype) validateHeader(path []string) error {
	if len(p.Code) == 0 {
		return errors.Inconsistent(path, "code", "function has no instructions")
	}
	if last := Instruction(p.Code[len(p.Code)-1]).Opcode(); last != OpReturn {
		return errors.Inconsistent(path, "code",
			fmt.Sprintf("function ends with %s, not RETURN", last))
	}
	if p.IsVararg > VarargHasArg|VarargIsVararg|VarargNeedsArg {
		return errors.Inconsistent(path, "is_vararg",
			fmt.Sprintf("vararg flags 0x%02x out of range", p.IsVararg))
	}
	if p.NumParams > p.MaxStackSize {
		return errors.Inconsistent(path, "num_params",
			fmt.Sprintf("%d parameters exceed stack size %d", p.NumParams, p.MaxStackSize))
	}
	if p.LineDefined != 0 && p.LastLineDefined < p.LineDefined {
		return errors.Inconsistent(path, "last_line_defined",
			fmt.Sprintf("function ends at line %d before it starts at %d", p.LastLineDefined, p.LineDefined))
	}
	return nil
}

func (p *Prototype) validateDebug(path []string) error {
	if n := len(p.LineInfo); n != 0 && n != len(p.Code) {
		return errors.Inconsistent(path, "line_info",
			fmt.Sprintf("%d line entries for %d instructions", n, len(p.Code)))
	}
	if n := len(p.UpvalueNames); n != 0 && n != len(p.Upvalues) {
		return errors.Inconsistent(path, "upvalue_names",
			fmt.Sprintf("%d names for %d upvalues", n, len(p.Upvalues)))
	}
	for i, lv := range p.LocVars {
		if lv.StartPC > lv.EndPC || int(lv.EndPC) > len(p.Code) {
			return errors.Inconsistent(path, "local_vars",
				fmt.Sprintf("local %d (%s) range [%d, %d) outside %d instructions", i, lv.Name, lv.StartPC, lv.EndPC, len(p.Code)))
		}
	}
	return nil
}

// validateOperands checks operands that index per-function tables.
func (p *Prototype) validateOperands(path []string) error {
	nk := len(p.Constants)
	for pc, word := range p.Code {
		ins := Instruction(word)
		op := ins.Opcode()
		if !op.Valid() {
			return errors.Inconsistent(path, "code",
				fmt.Sprintf("pc %d: invalid opcode %d", pc, op))
		}
		switch op {
		case OpLoadK:
			if bx := ins.Bx(); bx >= nk {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: LOADK constant %d out of %d", pc, bx, nk))
			}
		case OpLoadKX:
			if pc+1 >= len(p.Code) || Instruction(p.Code[pc+1]).Opcode() != OpExtraArg {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: LOADKX without EXTRAARG", pc))
			}
			if ax := Instruction(p.Code[pc+1]).Ax(); ax >= nk {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: LOADKX constant %d out of %d", pc, ax, nk))
			}
		case OpClosure:
			if bx := ins.Bx(); bx >= len(p.Protos) {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: CLOSURE function %d out of %d", pc, bx, len(p.Protos)))
			}
		case OpGetUpval, OpSetUpval:
			if b := ins.B(); b >= len(p.Upvalues) {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: %s upvalue %d out of %d", pc, op, b, len(p.Upvalues)))
			}
		case OpGetTabUp:
			if b := ins.B(); b >= len(p.Upvalues) {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: GETTABUP upvalue %d out of %d", pc, b, len(p.Upvalues)))
			}
		case OpSetTabUp:
			if a := ins.A(); a >= len(p.Upvalues) {
				return errors.Inconsistent(path, "code",
					fmt.Sprintf("pc %d: SETTABUP upvalue %d out of %d", pc, a, len(p.Upvalues)))
			}
		}
		if op.Mode() == ModeABC {
			for _, arg := range [2]struct {
				mode ArgMode
				val  int
			}{{op.BMode(), ins.B()}, {op.CMode(), ins.C()}} {
				if arg.mode == ArgK && IsK(arg.val) && IndexK(arg.val) >= nk {
					return errors.Inconsistent(path, "code",
						fmt.Sprintf("pc %d: %s constant %d out of %d", pc, op, IndexK(arg.val), nk))
				}
			}
		}
	}
	return nil
}
