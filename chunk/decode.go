package chunk

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/luachunk/chunk/internal/binary"
	"github.com/wippyai/luachunk/errors"
)

// Minimum encoded sizes, used to reject counts that cannot fit in the
// remaining input before allocating for them.
const (
	minConstantSize = 1                                 // tag only (nil)
	minUpvalueSize  = 2                                 // in_stack, index
	minLocVarSize   = 1 + 4 + 4                         // empty name, start, end
	minStringSize   = 1                                 // absent string or bare NUL
	minProtoSize    = 1 + 4 + 4 + 3 + 4 + 4 + 4 + 4 + 12 // empty prototype
)

// Decode parses a binary chunk with DefaultOptions.
func Decode(data []byte) (*Chunk, error) {
	return DecodeWithOptions(data, DefaultOptions())
}

// DecodeWithOptions parses a binary chunk. The input must hold exactly one
// chunk unless opts.AllowTrailing is set. On failure no partial result is
// returned; the error is an *errors.Error carrying the byte offset.
func DecodeWithOptions(data []byte, opts Options) (*Chunk, error) {
	d := &decoder{
		r:    binary.NewReader(data),
		opts: opts,
	}

	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	Logger().Debug("chunk header accepted", zap.Int("size", len(data)))

	up, err := d.r.ReadByte()
	if err != nil {
		return nil, d.fail(err, "main upvalue count")
	}

	main, err := d.readProto("", 0, "main")
	if err != nil {
		return nil, err
	}

	if n := d.r.Len(); n > 0 && !opts.AllowTrailing {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(d.r.Position()).
			Detail("%d trailing bytes after main function", n).
			Build()
	}

	c := &Chunk{
		Header:       h,
		MainUpvalues: up,
		Main:         main,
	}

	if opts.Validate {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	Logger().Debug("chunk decoded",
		zap.String("source", main.Source),
		zap.Int("functions", main.Count()),
		zap.Uint8("main_upvalues", up))

	return c, nil
}

// decoder threads one cursor through the recursive descent.
type decoder struct {
	r    *binary.Reader
	path []string
	opts Options
}

func (d *decoder) pathCopy() []string {
	if len(d.path) == 0 {
		return nil
	}
	return append([]string(nil), d.path...)
}

// fail converts a reader error into a decode error naming what was being read.
func (d *decoder) fail(err error, what string) error {
	pe, ok := err.(*binary.ParseError)
	if !ok {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, what)
	}
	if pe.Err == binary.ErrInvalidText {
		return errors.InvalidText(pe.Position, d.pathCopy(), what)
	}
	return errors.Truncated(pe.Position, d.pathCopy(), what)
}

func (d *decoder) readHeader() (Header, error) {
	var h Header
	r := d.r

	off := r.Position()
	sig, err := r.ReadBytes(len(Signature))
	if err != nil {
		return h, d.fail(err, "signature")
	}
	if string(sig) != Signature {
		return h, errors.HeaderMismatch(off, "signature", Signature, string(sig))
	}
	copy(h.Signature[:], sig)

	off = r.Position()
	if h.Version, err = r.ReadByte(); err != nil {
		return h, d.fail(err, "version")
	}
	if h.Version != Version {
		return h, errors.HeaderMismatch(off, "version", Version, h.Version)
	}

	off = r.Position()
	if h.Format, err = r.ReadByte(); err != nil {
		return h, d.fail(err, "format")
	}
	if h.Format != Format {
		return h, errors.HeaderMismatch(off, "format", Format, h.Format)
	}

	off = r.Position()
	data, err := r.ReadBytes(len(LuacData))
	if err != nil {
		return h, d.fail(err, "luac_data")
	}
	if string(data) != LuacData {
		return h, errors.New(errors.PhaseDecode, errors.KindMalformedHeader).
			Offset(off).
			Field("luac_data").
			Mismatch([]byte(LuacData), data).
			Detail("chunk was corrupted in transit").
			Build()
	}
	copy(h.LuacData[:], data)

	sizes := []struct {
		field string
		want  byte
		dst   *byte
	}{
		{"int_size", CIntSize, &h.CIntSize},
		{"size_t_size", SizeTSize, &h.SizeTSize},
		{"instruction_size", InstructionSize, &h.InstructionSize},
		{"integer_size", IntegerSize, &h.IntegerSize},
		{"number_size", NumberSize, &h.NumberSize},
	}
	for _, s := range sizes {
		off = r.Position()
		b, err := r.ReadByte()
		if err != nil {
			return h, d.fail(err, s.field)
		}
		if b != s.want {
			return h, errors.UnsupportedSize(off, s.field, s.want, b)
		}
		*s.dst = b
	}

	off = r.Position()
	if h.LuacInt, err = r.ReadI64(); err != nil {
		return h, d.fail(err, "luac_int")
	}
	if h.LuacInt != LuacInt {
		return h, errors.New(errors.PhaseDecode, errors.KindMalformedHeader).
			Offset(off).
			Field("luac_int").
			Mismatch(LuacInt, h.LuacInt).
			Detail("integer format or endianness mismatch").
			Build()
	}

	off = r.Position()
	if h.LuacNum, err = r.ReadF64(); err != nil {
		return h, d.fail(err, "luac_num")
	}
	if h.LuacNum != LuacNum {
		return h, errors.New(errors.PhaseDecode, errors.KindMalformedHeader).
			Offset(off).
			Field("luac_num").
			Mismatch(LuacNum, h.LuacNum).
			Detail("float format mismatch").
			Build()
	}

	return h, nil
}

func (d *decoder) readString(what string) (string, error) {
	var (
		s   string
		err error
	)
	if d.opts.Strings == StringsNulTerminated {
		s, err = d.r.ReadCString()
	} else {
		s, err = d.r.ReadString()
	}
	if err != nil {
		return "", d.fail(err, what)
	}
	return s, nil
}

// readCount reads a u32 element count and checks that count elements of
// at least minSize bytes each can still be present.
func (d *decoder) readCount(what string, minSize int) (int, error) {
	off := d.r.Position()
	n, err := d.r.ReadU32()
	if err != nil {
		return 0, d.fail(err, what+" count")
	}
	if uint64(n)*uint64(minSize) > uint64(d.r.Len()) {
		return 0, errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
			Path(d.pathCopy()...).
			Offset(off).
			Detail("%s count %d exceeds remaining %d bytes", what, n, d.r.Len()).
			Build()
	}
	return int(n), nil
}

func (d *decoder) readProto(parentSource string, depth int, name string) (*Prototype, error) {
	d.path = append(d.path, name)
	defer func() { d.path = d.path[:len(d.path)-1] }()

	if depth >= d.opts.maxDepth() {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(d.pathCopy()...).
			Offset(d.r.Position()).
			Detail("functions nested deeper than %d levels", d.opts.maxDepth()).
			Build()
	}

	r := d.r
	p := &Prototype{}
	var err error

	if p.Source, err = d.readString("source"); err != nil {
		return nil, err
	}
	if p.Source == "" {
		// Nested functions usually omit the source; decoding continues
		// either way so the cursor stays in step with the stream.
		p.Source = parentSource
		p.SourceInherited = true
	}

	if p.LineDefined, err = r.ReadU32(); err != nil {
		return nil, d.fail(err, "line defined")
	}
	if p.LastLineDefined, err = r.ReadU32(); err != nil {
		return nil, d.fail(err, "last line defined")
	}
	if p.NumParams, err = r.ReadByte(); err != nil {
		return nil, d.fail(err, "parameter count")
	}
	if p.IsVararg, err = r.ReadByte(); err != nil {
		return nil, d.fail(err, "vararg flag")
	}
	if p.MaxStackSize, err = r.ReadByte(); err != nil {
		return nil, d.fail(err, "max stack size")
	}

	if p.Code, err = d.readCode(); err != nil {
		return nil, err
	}
	if p.Constants, err = d.readConstants(); err != nil {
		return nil, err
	}
	if p.Upvalues, err = d.readUpvalues(); err != nil {
		return nil, err
	}
	if p.Protos, err = d.readProtos(p.Source, depth); err != nil {
		return nil, err
	}
	if err := d.readDebug(p); err != nil {
		return nil, err
	}

	Logger().Debug("prototype decoded",
		zap.Strings("path", d.path),
		zap.String("source", p.Source),
		zap.Uint32("line", p.LineDefined),
		zap.Int("instructions", len(p.Code)),
		zap.Int("constants", len(p.Constants)),
		zap.Int("upvalues", len(p.Upvalues)),
		zap.Int("children", len(p.Protos)))

	return p, nil
}

func (d *decoder) readCode() ([]uint32, error) {
	n, err := d.readCount("code", int(InstructionSize))
	if err != nil {
		return nil, err
	}
	code := make([]uint32, n)
	for i := range code {
		if code[i], err = d.r.ReadU32(); err != nil {
			return nil, d.fail(err, "instruction")
		}
	}
	return code, nil
}

func (d *decoder) readConstants() ([]Constant, error) {
	n, err := d.readCount("constant", minConstantSize)
	if err != nil {
		return nil, err
	}
	consts := make([]Constant, n)
	for i := range consts {
		if consts[i], err = d.readConstant(); err != nil {
			return nil, err
		}
	}
	return consts, nil
}

func (d *decoder) readConstant() (Constant, error) {
	r := d.r
	off := r.Position()
	tag, err := r.ReadByte()
	if err != nil {
		return Constant{}, d.fail(err, "constant tag")
	}

	switch tag {
	case TagNil:
		return Nil(), nil
	case TagBoolean:
		b, err := r.ReadByte()
		if err != nil {
			return Constant{}, d.fail(err, "boolean constant")
		}
		return Bool(b != 0), nil
	case TagNumber:
		f, err := r.ReadF64()
		if err != nil {
			return Constant{}, d.fail(err, "number constant")
		}
		return Num(f), nil
	case TagInteger:
		i, err := r.ReadI64()
		if err != nil {
			return Constant{}, d.fail(err, "integer constant")
		}
		return Int(i), nil
	case TagShortString, TagLongString:
		s, err := d.readString("string constant")
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: ConstString, Str: s, LongString: tag == TagLongString}, nil
	default:
		return Constant{}, errors.UnknownTag(off, d.pathCopy(), tag)
	}
}

func (d *decoder) readUpvalues() ([]Upvalue, error) {
	// The count is taken from its own 4-byte window.
	off := d.r.Position()
	sub, err := d.r.Sub(4)
	if err != nil {
		return nil, d.fail(err, "upvalue count")
	}
	n, err := sub.ReadU32()
	if err != nil {
		return nil, d.fail(err, "upvalue count")
	}
	if uint64(n)*minUpvalueSize > uint64(d.r.Len()) {
		return nil, errors.New(errors.PhaseDecode, errors.KindTruncatedInput).
			Path(d.pathCopy()...).
			Offset(off).
			Detail("upvalue count %d exceeds remaining %d bytes", n, d.r.Len()).
			Build()
	}

	ups := make([]Upvalue, n)
	for i := range ups {
		if ups[i].InStack, err = d.r.ReadByte(); err != nil {
			return nil, d.fail(err, "upvalue in_stack")
		}
		if ups[i].Index, err = d.r.ReadByte(); err != nil {
			return nil, d.fail(err, "upvalue index")
		}
	}
	return ups, nil
}

func (d *decoder) readProtos(source string, depth int) ([]*Prototype, error) {
	n, err := d.readCount("function", minProtoSize)
	if err != nil {
		return nil, err
	}
	protos := make([]*Prototype, n)
	for i := range protos {
		if protos[i], err = d.readProto(source, depth+1, strconv.Itoa(i)); err != nil {
			return nil, err
		}
	}
	return protos, nil
}

// readDebug reads line info, local variables and upvalue names. Stripped
// chunks carry zero counts for all three.
func (d *decoder) readDebug(p *Prototype) error {
	r := d.r

	n, err := d.readCount("line info", 4)
	if err != nil {
		return err
	}
	p.LineInfo = make([]uint32, n)
	for i := range p.LineInfo {
		if p.LineInfo[i], err = r.ReadU32(); err != nil {
			return d.fail(err, "line info")
		}
	}

	if n, err = d.readCount("local variable", minLocVarSize); err != nil {
		return err
	}
	p.LocVars = make([]LocVar, n)
	for i := range p.LocVars {
		lv := &p.LocVars[i]
		if lv.Name, err = d.readString("local variable name"); err != nil {
			return err
		}
		if lv.StartPC, err = r.ReadU32(); err != nil {
			return d.fail(err, "local variable start")
		}
		if lv.EndPC, err = r.ReadU32(); err != nil {
			return d.fail(err, "local variable end")
		}
	}

	if n, err = d.readCount("upvalue name", minStringSize); err != nil {
		return err
	}
	p.UpvalueNames = make([]string, n)
	for i := range p.UpvalueNames {
		if p.UpvalueNames[i], err = d.readString("upvalue name"); err != nil {
			return err
		}
	}
	return nil
}
