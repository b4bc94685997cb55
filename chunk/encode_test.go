package chunk_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/luachunk/chunk"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		chunk func() *chunk.Chunk
	}{
		{"sample", sampleChunk},
		{"stripped", func() *chunk.Chunk { return sampleChunk().Strip() }},
		{"nan and negative zero", func() *chunk.Chunk {
			c := sampleChunk()
			c.Main.Constants = append(c.Main.Constants, chunk.Num(math.NaN()), chunk.Num(math.Copysign(0, -1)))
			return c
		}},
		{"empty string constant", func() *chunk.Chunk {
			c := sampleChunk()
			c.Main.Constants = append(c.Main.Constants, chunk.Str(""))
			return c
		}},
		{"deep nesting", func() *chunk.Chunk {
			c := sampleChunk()
			p := c.Main.Protos[0]
			for i := 0; i < 20; i++ {
				child := &chunk.Prototype{
					Source:          p.Source,
					SourceInherited: true,
					LineDefined:     uint32(i + 2),
					LastLineDefined: uint32(i + 2),
					Code:            []uint32{returnOp},
				}
				p.Protos = []*chunk.Prototype{child}
				p = child
			}
			return c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.chunk()
			data := c.Encode()

			got, err := chunk.Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !got.Equal(c) {
				t.Fatal("decoded chunk differs from the encoded one")
			}
			if again := got.Encode(); !bytes.Equal(again, data) {
				t.Error("second encoding differs from the first")
			}
		})
	}
}

func TestEncodeNilMain(t *testing.T) {
	c := &chunk.Chunk{}
	data := c.Encode()
	got, err := chunk.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Main.Code) != 0 || got.Main.Source != "" {
		t.Errorf("main = %+v", got.Main)
	}
}

func TestEncodeIgnoresHeaderField(t *testing.T) {
	c := sampleChunk()
	c.Header.Version = 0x51
	got, err := chunk.Decode(c.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Header.Version != chunk.Version {
		t.Errorf("version = %#x", got.Header.Version)
	}
}

func TestStrip(t *testing.T) {
	c := sampleChunk()
	s := c.Strip()

	s.Main.Walk(func(path []int, p *chunk.Prototype) bool {
		if len(p.LineInfo) != 0 || len(p.LocVars) != 0 || len(p.UpvalueNames) != 0 {
			t.Errorf("%v: debug info survived strip", path)
		}
		if p.Source != "" || !p.SourceInherited {
			t.Errorf("%v: source = %q inherited=%v", path, p.Source, p.SourceInherited)
		}
		return true
	})

	if len(c.Main.LineInfo) == 0 || len(c.Main.Protos[0].LocVars) == 0 {
		t.Error("Strip modified the original chunk")
	}
	s.Main.Code[0] = 0
	if c.Main.Code[0] == 0 {
		t.Error("Strip shares code with the original")
	}

	stripped := s.Encode()
	if len(stripped) >= len(c.Encode()) {
		t.Errorf("stripped chunk is %d bytes, original %d", len(stripped), len(c.Encode()))
	}
	got, err := chunk.Decode(stripped)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(s) {
		t.Error("stripped chunk does not round trip")
	}
}

func TestStripChildWithOwnSource(t *testing.T) {
	c := sampleChunk()
	c.Main.Protos[0].Source = "@other.lua"
	c.Main.Protos[0].SourceInherited = false

	s := c.Strip()
	if got := s.Main.Protos[0].Source; got != "" {
		t.Errorf("child source = %q", got)
	}
	got, err := chunk.Decode(s.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(s) {
		t.Error("stripped chunk does not round trip")
	}
}

func TestStripWritesAbsentSources(t *testing.T) {
	data := minimalChunk()
	c, err := chunk.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	stripped := c.Strip().Encode()
	// header, main upvalues, then the main source size byte
	if b := stripped[chunk.HeaderSize+1]; b != 0 {
		t.Errorf("main source size byte = 0x%02x, want 0x00", b)
	}
	if want := len(data) - len("@min.lua"); len(stripped) != want {
		t.Errorf("stripped chunk is %d bytes, want %d", len(stripped), want)
	}
}

func TestEncodeEmptyStringsByteExact(t *testing.T) {
	var s stream
	data := s.header().u8(0).proto(protoDef{
		source: "@t.lua",
		consts: func(b *stream) int {
			b.u8(chunk.TagShortString, 0x01)
			b.u8(chunk.TagLongString, 0x01)
			return 2
		},
	}).bytes()

	c, err := chunk.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, k := range c.Main.Constants {
		if k.Kind != chunk.ConstString || k.Str != "" {
			t.Errorf("constant %d = %#v", i, k)
		}
	}
	if got := c.Encode(); !bytes.Equal(got, data) {
		t.Errorf("re-encoding differs:\n got % x\nwant % x", got, data)
	}
}

func TestEncodeEmptyStringIsNotAbsent(t *testing.T) {
	c, err := chunk.Decode(minimalChunk())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c.Main.Constants = []chunk.Constant{chunk.Str("")}
	c.Main.LocVars = []chunk.LocVar{{Name: "", StartPC: 0, EndPC: 1}}
	data := c.Encode()

	// header, main upvalues, source, lines, 3 bytes, code, constant count
	tagOffset := chunk.HeaderSize + 1 + 1 + len("@min.lua") + 8 + 3 + 4 + 4 + 4
	if got := data[tagOffset : tagOffset+2]; !bytes.Equal(got, []byte{chunk.TagShortString, 0x01}) {
		t.Errorf("empty constant encoded as % x, want 04 01", got)
	}
	got, err := chunk.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Main.LocVars[0].Name != "" || !bytes.Equal(got.Encode(), data) {
		t.Error("empty local name does not round trip")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*chunk.Chunk)
		equal  bool
	}{
		{"identical", func(*chunk.Chunk) {}, true},
		{"nil and empty debug slices", func(c *chunk.Chunk) { c.Main.Protos[0].UpvalueNames = []string{} }, true},
		{"main upvalues", func(c *chunk.Chunk) { c.MainUpvalues = 2 }, false},
		{"code word", func(c *chunk.Chunk) { c.Main.Code[2]++ }, false},
		{"constant", func(c *chunk.Chunk) { c.Main.Constants[1] = chunk.Int(42) }, false},
		{"constant kind", func(c *chunk.Chunk) { c.Main.Constants[1] = chunk.Num(41) }, false},
		{"child line", func(c *chunk.Chunk) { c.Main.Protos[0].LineDefined = 9 }, false},
		{"source inheritance", func(c *chunk.Chunk) { c.Main.Protos[0].SourceInherited = false }, false},
		{"local name", func(c *chunk.Chunk) { c.Main.LocVars[0].Name = "g" }, false},
		{"extra child", func(c *chunk.Chunk) { c.Main.Protos = append(c.Main.Protos, &chunk.Prototype{}) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleChunk()
			tt.mutate(c)
			if got := c.Equal(sampleChunk()); got != tt.equal {
				t.Errorf("Equal = %v, want %v", got, tt.equal)
			}
		})
	}

	var nilChunk *chunk.Chunk
	if !nilChunk.Equal(nil) || nilChunk.Equal(sampleChunk()) {
		t.Error("nil chunk comparisons")
	}
}
