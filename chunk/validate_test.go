package chunk_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/luachunk/chunk"
	"github.com/wippyai/luachunk/errors"
)

func TestValidateSample(t *testing.T) {
	if err := sampleChunk().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := sampleChunk().Strip().Validate(); err != nil {
		t.Fatalf("Validate stripped: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*chunk.Chunk)
		field  string
		path   string
		detail string
	}{
		{
			name:   "missing main",
			mutate: func(c *chunk.Chunk) { c.Main = nil },
			field:  "main",
			detail: "no main function",
		},
		{
			name:   "main upvalue count",
			mutate: func(c *chunk.Chunk) { c.MainUpvalues = 0 },
			field:  "main_upvalues",
			path:   "main",
		},
		{
			name:   "empty code",
			mutate: func(c *chunk.Chunk) { c.Main.Protos[0].Code = nil; c.Main.Protos[0].LineInfo = nil },
			field:  "code",
			path:   "main.0",
			detail: "no instructions",
		},
		{
			name: "missing return",
			mutate: func(c *chunk.Chunk) {
				c.Main.Code[len(c.Main.Code)-1] = uint32(chunk.CreateAsBx(chunk.OpJmp, 0, -1))
			},
			field:  "code",
			path:   "main",
			detail: "ends with JMP",
		},
		{
			name:   "vararg flags",
			mutate: func(c *chunk.Chunk) { c.Main.IsVararg = 8 },
			field:  "is_vararg",
		},
		{
			name:   "params exceed stack",
			mutate: func(c *chunk.Chunk) { c.Main.Protos[0].NumParams = 3 },
			field:  "num_params",
			path:   "main.0",
		},
		{
			name:   "line range",
			mutate: func(c *chunk.Chunk) { c.Main.Protos[0].LineDefined = 5 },
			field:  "last_line_defined",
		},
		{
			name:   "line info length",
			mutate: func(c *chunk.Chunk) { c.Main.LineInfo = c.Main.LineInfo[:3] },
			field:  "line_info",
			detail: "3 line entries for 7 instructions",
		},
		{
			name:   "upvalue names length",
			mutate: func(c *chunk.Chunk) { c.Main.UpvalueNames = append(c.Main.UpvalueNames, "extra") },
			field:  "upvalue_names",
		},
		{
			name:   "local range",
			mutate: func(c *chunk.Chunk) { c.Main.LocVars[0].EndPC = 99 },
			field:  "local_vars",
			detail: "local 0 (f)",
		},
		{
			name:   "LOADK index",
			mutate: func(c *chunk.Chunk) { c.Main.Code[3] = uint32(chunk.CreateABx(chunk.OpLoadK, 3, 6)) },
			field:  "code",
			detail: "pc 3: LOADK constant 6 out of 6",
		},
		{
			name:   "CLOSURE index",
			mutate: func(c *chunk.Chunk) { c.Main.Code[0] = uint32(chunk.CreateABx(chunk.OpClosure, 0, 1)) },
			field:  "code",
			detail: "CLOSURE function 1 out of 1",
		},
		{
			name: "RK constant index",
			mutate: func(c *chunk.Chunk) {
				c.Main.Protos[0].Code[0] = uint32(chunk.CreateABC(chunk.OpAdd, 1, 0, chunk.BitRK|4))
			},
			field:  "code",
			path:   "main.0",
			detail: "ADD constant 4 out of 1",
		},
		{
			name:   "GETTABUP upvalue",
			mutate: func(c *chunk.Chunk) { c.Main.Code[1] = uint32(chunk.CreateABC(chunk.OpGetTabUp, 1, 5, chunk.BitRK)) },
			field:  "code",
			detail: "GETTABUP upvalue 5 out of 1",
		},
		{
			name:   "LOADKX without EXTRAARG",
			mutate: func(c *chunk.Chunk) { c.Main.Code[3] = uint32(chunk.CreateABx(chunk.OpLoadKX, 3, 0)) },
			field:  "code",
			detail: "LOADKX without EXTRAARG",
		},
		{
			name:   "invalid opcode",
			mutate: func(c *chunk.Chunk) { c.Main.Code[2] = 60 },
			field:  "code",
			detail: "invalid opcode 60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleChunk()
			tt.mutate(c)
			err := c.Validate()
			if !stderrors.Is(err, errors.ErrInconsistent) {
				t.Fatalf("err = %v, want inconsistent", err)
			}
			e, _ := errors.As(err)
			if e.Phase != errors.PhaseValidate {
				t.Errorf("phase = %s", e.Phase)
			}
			if e.Field != tt.field {
				t.Errorf("field = %q, want %q", e.Field, tt.field)
			}
			if tt.path != "" && strings.Join(e.Path, ".") != tt.path {
				t.Errorf("path = %v, want %s", e.Path, tt.path)
			}
			if !strings.Contains(e.Detail, tt.detail) {
				t.Errorf("detail = %q, want it to contain %q", e.Detail, tt.detail)
			}
		})
	}
}

func TestValidateLoadKX(t *testing.T) {
	c := sampleChunk()
	c.Main.Code = []uint32{
		uint32(chunk.CreateABx(chunk.OpLoadKX, 0, 0)),
		uint32(chunk.CreateAx(chunk.OpExtraArg, 5)),
		uint32(chunk.CreateABC(chunk.OpReturn, 0, 1, 0)),
	}
	c.Main.LineInfo = nil
	c.Main.LocVars = nil
	c.Main.Protos = nil
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	c.Main.Code[1] = uint32(chunk.CreateAx(chunk.OpExtraArg, 6))
	if err := c.Validate(); !stderrors.Is(err, errors.ErrInconsistent) {
		t.Errorf("out of range EXTRAARG: err = %v", err)
	}
}
