package chunk

// Opcode is a Lua 5.3 virtual machine opcode.
type Opcode byte

// Lua 5.3 opcodes, in lopcodes.h order.
const (
	OpMove Opcode = iota
	OpLoadK
	OpLoadKX
	OpLoadBool
	OpLoadNil
	OpGetUpval
	OpGetTabUp
	OpGetTable
	OpSetTabUp
	OpSetUpval
	OpSetTable
	OpNewTable
	OpSelf
	OpAdd
	OpSub
	OpMul
	OpMod
	OpPow
	OpDiv
	OpIDiv
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr
	OpUnm
	OpBNot
	OpNot
	OpLen
	OpConcat
	OpJmp
	OpEq
	OpLt
	OpLe
	OpTest
	OpTestSet
	OpCall
	OpTailCall
	OpReturn
	OpForLoop
	OpForPrep
	OpTForCall
	OpTForLoop
	OpSetList
	OpClosure
	OpVararg
	OpExtraArg

	NumOpcodes = int(OpExtraArg) + 1
)

// Mode is an instruction format.
type Mode byte

const (
	ModeABC Mode = iota
	ModeABx
	ModeAsBx
	ModeAx
)

func (m Mode) String() string {
	switch m {
	case ModeABC:
		return "iABC"
	case ModeABx:
		return "iABx"
	case ModeAsBx:
		return "iAsBx"
	default:
		return "iAx"
	}
}

// ArgMode describes how an operand is used.
type ArgMode byte

const (
	ArgN ArgMode = iota // not used
	ArgU                // used
	ArgR                // register or jump offset
	ArgK                // constant or register/constant
)

type opInfo struct {
	name  string
	bMode ArgMode
	cMode ArgMode
	mode  Mode
	test  bool // next instruction is a jump
	setA  bool // instruction writes register A
}

var opcodes = [NumOpcodes]opInfo{
	OpMove:     {"MOVE", ArgR, ArgN, ModeABC, false, true},
	OpLoadK:    {"LOADK", ArgK, ArgN, ModeABx, false, true},
	OpLoadKX:   {"LOADKX", ArgN, ArgN, ModeABx, false, true},
	OpLoadBool: {"LOADBOOL", ArgU, ArgU, ModeABC, false, true},
	OpLoadNil:  {"LOADNIL", ArgU, ArgN, ModeABC, false, true},
	OpGetUpval: {"GETUPVAL", ArgU, ArgN, ModeABC, false, true},
	OpGetTabUp: {"GETTABUP", ArgU, ArgK, ModeABC, false, true},
	OpGetTable: {"GETTABLE", ArgR, ArgK, ModeABC, false, true},
	OpSetTabUp: {"SETTABUP", ArgK, ArgK, ModeABC, false, false},
	OpSetUpval: {"SETUPVAL", ArgU, ArgN, ModeABC, false, false},
	OpSetTable: {"SETTABLE", ArgK, ArgK, ModeABC, false, false},
	OpNewTable: {"NEWTABLE", ArgU, ArgU, ModeABC, false, true},
	OpSelf:     {"SELF", ArgR, ArgK, ModeABC, false, true},
	OpAdd:      {"ADD", ArgK, ArgK, ModeABC, false, true},
	OpSub:      {"SUB", ArgK, ArgK, ModeABC, false, true},
	OpMul:      {"MUL", ArgK, ArgK, ModeABC, false, true},
	OpMod:      {"MOD", ArgK, ArgK, ModeABC, false, true},
	OpPow:      {"POW", ArgK, ArgK, ModeABC, false, true},
	OpDiv:      {"DIV", ArgK, ArgK, ModeABC, false, true},
	OpIDiv:     {"IDIV", ArgK, ArgK, ModeABC, false, true},
	OpBAnd:     {"BAND", ArgK, ArgK, ModeABC, false, true},
	OpBOr:      {"BOR", ArgK, ArgK, ModeABC, false, true},
	OpBXor:     {"BXOR", ArgK, ArgK, ModeABC, false, true},
	OpShl:      {"SHL", ArgK, ArgK, ModeABC, false, true},
	OpShr:      {"SHR", ArgK, ArgK, ModeABC, false, true},
	OpUnm:      {"UNM", ArgR, ArgN, ModeABC, false, true},
	OpBNot:     {"BNOT", ArgR, ArgN, ModeABC, false, true},
	OpNot:      {"NOT", ArgR, ArgN, ModeABC, false, true},
	OpLen:      {"LEN", ArgR, ArgN, ModeABC, false, true},
	OpConcat:   {"CONCAT", ArgR, ArgR, ModeABC, false, true},
	OpJmp:      {"JMP", ArgR, ArgN, ModeAsBx, false, false},
	OpEq:       {"EQ", ArgK, ArgK, ModeABC, true, false},
	OpLt:       {"LT", ArgK, ArgK, ModeABC, true, false},
	OpLe:       {"LE", ArgK, ArgK, ModeABC, true, false},
	OpTest:     {"TEST", ArgN, ArgU, ModeABC, true, false},
	OpTestSet:  {"TESTSET", ArgR, ArgU, ModeABC, true, true},
	OpCall:     {"CALL", ArgU, ArgU, ModeABC, false, true},
	OpTailCall: {"TAILCALL", ArgU, ArgU, ModeABC, false, true},
	OpReturn:   {"RETURN", ArgU, ArgN, ModeABC, false, false},
	OpForLoop:  {"FORLOOP", ArgR, ArgN, ModeAsBx, false, true},
	OpForPrep:  {"FORPREP", ArgR, ArgN, ModeAsBx, false, true},
	OpTForCall: {"TFORCALL", ArgN, ArgU, ModeABC, false, false},
	OpTForLoop: {"TFORLOOP", ArgR, ArgN, ModeAsBx, false, true},
	OpSetList:  {"SETLIST", ArgU, ArgU, ModeABC, false, false},
	OpClosure:  {"CLOSURE", ArgU, ArgN, ModeABx, false, true},
	OpVararg:   {"VARARG", ArgU, ArgN, ModeABC, false, true},
	OpExtraArg: {"EXTRAARG", ArgU, ArgU, ModeAx, false, false},
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return int(op) < NumOpcodes
}

// String returns the opcode mnemonic.
func (op Opcode) String() string {
	if !op.Valid() {
		return "OP_" + itoa(int(op))
	}
	return opcodes[op].name
}

// Mode returns the instruction format of op.
func (op Opcode) Mode() Mode { return opcodes[op%Opcode(NumOpcodes)].mode }

// BMode returns how operand B (or Bx) is used.
func (op Opcode) BMode() ArgMode { return opcodes[op%Opcode(NumOpcodes)].bMode }

// CMode returns how operand C is used.
func (op Opcode) CMode() ArgMode { return opcodes[op%Opcode(NumOpcodes)].cMode }

// IsTest reports whether op is a test followed by a jump.
func (op Opcode) IsTest() bool { return opcodes[op%Opcode(NumOpcodes)].test }

// SetsA reports whether op writes register A.
func (op Opcode) SetsA() bool { return opcodes[op%Opcode(NumOpcodes)].setA }
