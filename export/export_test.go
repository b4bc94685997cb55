package export_test

import (
	"bytes"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/luachunk/chunk"
	"github.com/wippyai/luachunk/errors"
	"github.com/wippyai/luachunk/export"
)

func testChunk() *chunk.Chunk {
	child := &chunk.Prototype{
		Source:          "@t.lua",
		SourceInherited: true,
		LineDefined:     2,
		LastLineDefined: 4,
		MaxStackSize:    2,
		Code:            []uint32{uint32(chunk.CreateABC(chunk.OpReturn, 0, 1, 0))},
	}
	main := &chunk.Prototype{
		Source:       "@t.lua",
		IsVararg:     chunk.VarargIsVararg,
		MaxStackSize: 2,
		Code: []uint32{
			uint32(chunk.CreateABx(chunk.OpLoadK, 0, 0)),
			uint32(chunk.CreateABx(chunk.OpClosure, 1, 0)),
			uint32(chunk.CreateABC(chunk.OpReturn, 0, 1, 0)),
		},
		Constants: []chunk.Constant{
			chunk.Str("hello"),
			chunk.Int(7),
			chunk.Num(1.5),
			chunk.Num(math.Inf(1)),
			chunk.Bool(false),
			chunk.Nil(),
		},
		Upvalues:     []chunk.Upvalue{{InStack: 1, Index: 0}},
		UpvalueNames: []string{"_ENV"},
		Protos:       []*chunk.Prototype{child},
		LineInfo:     []uint32{1, 4, 5},
		LocVars:      []chunk.LocVar{{Name: "s", StartPC: 1, EndPC: 3}},
	}
	return &chunk.Chunk{Header: chunk.DefaultHeader(), MainUpvalues: 1, Main: main}
}

func TestNew(t *testing.T) {
	d := export.New(testChunk(), true)

	if d.Header.Version != "5.3" || d.Header.LuacInt != 0x5678 || d.Header.LuacNum != 370.5 {
		t.Errorf("header = %+v", d.Header)
	}
	if d.MainUpvalues != 1 {
		t.Errorf("MainUpvalues = %d", d.MainUpvalues)
	}

	m := d.Main
	if m.Name != "main" || m.Source != "@t.lua" || m.IsVararg != 2 {
		t.Errorf("main = %+v", m)
	}
	if len(m.Code) != 3 || m.Code[0].Op != "LOADK" || m.Code[0].Text != "LOADK 0 -1" {
		t.Errorf("code = %+v", m.Code)
	}
	if m.Upvalues[0] != (export.Upvalue{Name: "_ENV", Index: 0, InStack: true}) {
		t.Errorf("upvalue = %+v", m.Upvalues[0])
	}
	if len(m.Locals) != 1 || len(m.LineInfo) != 3 {
		t.Errorf("debug tables missing: locals=%v lines=%v", m.Locals, m.LineInfo)
	}
	if len(m.Functions) != 1 || m.Functions[0].Name != "function[0]" || !m.Functions[0].SourceInherited {
		t.Errorf("functions = %+v", m.Functions)
	}

	tests := []struct {
		typ   string
		value any
		text  string
	}{
		{"string", "hello", `"hello"`},
		{"integer", int64(7), "7"},
		{"number", 1.5, "1.5"},
		{"number", nil, "inf"},
		{"boolean", false, "false"},
		{"nil", nil, "nil"},
	}
	for i, tt := range tests {
		k := m.Constants[i]
		if k.Type != tt.typ || k.Value != tt.value || k.Text != tt.text {
			t.Errorf("constant %d = %+v, want %v %v %v", i, k, tt.typ, tt.value, tt.text)
		}
	}
}

func TestNewWithoutDebug(t *testing.T) {
	d := export.New(testChunk(), false)
	if d.Main.LineInfo != nil || d.Main.Locals != nil {
		t.Error("debug tables included without full")
	}
	if d.Main.Upvalues[0].Name != "_ENV" {
		t.Error("upvalue names should always be included")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatJSON, testChunk(), true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got export.Document
	if err := jsoniter.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Main == nil || got.Main.Code[1].Op != "CLOSURE" {
		t.Errorf("decoded main = %+v", got.Main)
	}
	if !strings.Contains(buf.String(), `"main_upvalues": 1`) {
		t.Errorf("missing main_upvalues field:\n%s", buf.String())
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatYAML, testChunk(), true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got export.Document
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if got.Header.Version != "5.3" || got.Main.Functions[0].LineDefined != 2 {
		t.Errorf("decoded = %+v", got)
	}
	if !strings.Contains(buf.String(), "line_info: [1, 4, 5]") {
		t.Errorf("line info not in flow style:\n%s", buf.String())
	}
}

func TestCBOR(t *testing.T) {
	d := export.New(testChunk(), true)

	first, err := export.MarshalCBOR(d)
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}
	second, err := export.MarshalCBOR(export.New(testChunk(), true))
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("canonical encoding is not deterministic")
	}

	got, err := export.UnmarshalCBOR(first)
	if err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if got.Main.Name != "main" || len(got.Main.Constants) != 6 || got.Main.Constants[0].Value != "hello" {
		t.Errorf("decoded main = %+v", got.Main)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatCBOR, testChunk(), true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), first) {
		t.Error("Write and MarshalCBOR disagree")
	}
}

func TestUnmarshalCBORInvalid(t *testing.T) {
	_, err := export.UnmarshalCBOR([]byte{0xff, 0x00})
	if !stderrors.Is(err, errors.ErrInvalidData) {
		t.Errorf("err = %v", err)
	}
}

func TestWriteList(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatList, testChunk(), false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "main <t.lua:0,0> (3 instructions)") {
		t.Errorf("listing:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"", export.FormatList, false},
		{"list", export.FormatList, false},
		{"json", export.FormatJSON, false},
		{"yaml", export.FormatYAML, false},
		{"cbor", export.FormatCBOR, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if !export.FormatCBOR.Binary() || export.FormatJSON.Binary() {
		t.Error("Binary")
	}
}
