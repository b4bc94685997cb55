package chunk

import "strconv"

// Instruction field layout (lopcodes.h).
const (
	sizeOp = 6
	sizeA  = 8
	sizeB  = 9
	sizeC  = 9
	sizeBx = sizeB + sizeC
	sizeAx = sizeA + sizeBx

	posA = sizeOp
	posC = posA + sizeA
	posB = posC + sizeC

	maxArgBx  = 1<<sizeBx - 1
	maxArgSBx = maxArgBx >> 1

	// BitRK marks a B/C operand that indexes the constant table.
	BitRK = 1 << (sizeB - 1)

	// FieldsPerFlush is the SETLIST batch size (LFIELDS_PER_FLUSH).
	FieldsPerFlush = 50
)

// Instruction is one 32-bit VM instruction word.
type Instruction uint32

// Opcode returns the instruction's opcode.
func (i Instruction) Opcode() Opcode {
	return Opcode(i & (1<<sizeOp - 1))
}

// A returns operand A.
func (i Instruction) A() int {
	return int(i >> posA & (1<<sizeA - 1))
}

// B returns operand B.
func (i Instruction) B() int {
	return int(i >> posB & (1<<sizeB - 1))
}

// C returns operand C.
func (i Instruction) C() int {
	return int(i >> posC & (1<<sizeC - 1))
}

// Bx returns the unsigned 18-bit operand.
func (i Instruction) Bx() int {
	return int(i >> posC)
}

// SBx returns the signed (excess-K) 18-bit operand.
func (i Instruction) SBx() int {
	return i.Bx() - maxArgSBx
}

// Ax returns the 26-bit operand.
func (i Instruction) Ax() int {
	return int(i >> posA)
}

// ABC returns operands A, B and C.
func (i Instruction) ABC() (a, b, c int) {
	return i.A(), i.B(), i.C()
}

// ABx returns operands A and Bx.
func (i Instruction) ABx() (a, bx int) {
	return i.A(), i.Bx()
}

// AsBx returns operands A and sBx.
func (i Instruction) AsBx() (a, sbx int) {
	return i.A(), i.SBx()
}

// IsK reports whether a B/C operand refers to a constant.
func IsK(x int) bool {
	return x&BitRK != 0
}

// IndexK returns the constant index of a B/C operand.
func IndexK(x int) int {
	return x &^ BitRK
}

// CreateABC builds an iABC instruction.
func CreateABC(op Opcode, a, b, c int) Instruction {
	return Instruction(uint32(op) | uint32(a)<<posA | uint32(b)<<posB | uint32(c)<<posC)
}

// CreateABx builds an iABx instruction.
func CreateABx(op Opcode, a, bx int) Instruction {
	return Instruction(uint32(op) | uint32(a)<<posA | uint32(bx)<<posC)
}

// CreateAsBx builds an iAsBx instruction.
func CreateAsBx(op Opcode, a, sbx int) Instruction {
	return CreateABx(op, a, sbx+maxArgSBx)
}

// CreateAx builds an iAx instruction.
func CreateAx(op Opcode, ax int) Instruction {
	return Instruction(uint32(op) | uint32(ax)<<posA)
}

// Operands renders the operand column of a luac -l listing.
func (i Instruction) Operands() string {
	op := i.Opcode()
	if !op.Valid() {
		return ""
	}
	a := i.A()
	switch op.Mode() {
	case ModeABC:
		s := itoa(a)
		if op.BMode() != ArgN {
			s += " " + itoa(rkOperand(i.B(), op.BMode()))
		}
		if op.CMode() != ArgN {
			s += " " + itoa(rkOperand(i.C(), op.CMode()))
		}
		return s
	case ModeABx:
		s := itoa(a)
		switch op.BMode() {
		case ArgK:
			s += " " + itoa(-1-i.Bx())
		case ArgU:
			s += " " + itoa(i.Bx())
		}
		return s
	case ModeAsBx:
		return itoa(a) + " " + itoa(i.SBx())
	default:
		if op.BMode() == ArgK {
			return itoa(-1 - i.Ax())
		}
		return itoa(i.Ax())
	}
}

func rkOperand(x int, mode ArgMode) int {
	if mode == ArgK && IsK(x) {
		return -1 - IndexK(x)
	}
	return x
}

// String renders the instruction as "NAME operands".
func (i Instruction) String() string {
	ops := i.Operands()
	if ops == "" {
		return i.Opcode().String()
	}
	return i.Opcode().String() + " " + ops
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
