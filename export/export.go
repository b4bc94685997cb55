package export

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/luachunk/chunk"
	"github.com/wippyai/luachunk/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cborEncMode uses canonical mode so equal documents encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Format is an output format.
type Format string

const (
	FormatList Format = "list"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatList, FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	if s == "" {
		return FormatList, nil
	}
	return "", errors.InvalidInput(errors.PhaseExport,
		fmt.Sprintf("unknown format %q (want list, json, yaml or cbor)", s))
}

// Binary reports whether the format produces non-text output.
func (f Format) Binary() bool {
	return f == FormatCBOR
}

// Write renders c to w in format f.
func Write(w io.Writer, f Format, c *chunk.Chunk, full bool) error {
	if f == FormatList {
		if err := chunk.List(w, c, full); err != nil {
			return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "write listing")
		}
		return nil
	}

	d := New(c, full)
	var err error
	switch f {
	case FormatJSON:
		err = JSON(w, d)
	case FormatYAML:
		err = YAML(w, d)
	case FormatCBOR:
		err = CBOR(w, d)
	default:
		return errors.InvalidInput(errors.PhaseExport, fmt.Sprintf("unknown format %q", f))
	}
	return err
}

// JSON writes d as indented JSON.
func JSON(w io.Writer, d *Document) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "marshal json")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "write json")
	}
	return nil
}

// YAML writes d as a YAML document.
func YAML(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "marshal yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "close yaml encoder")
	}
	return nil
}

// CBOR writes d in canonical CBOR.
func CBOR(w io.Writer, d *Document) error {
	data, err := MarshalCBOR(d)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "write cbor")
	}
	return nil
}

// MarshalCBOR returns the canonical CBOR encoding of d.
func MarshalCBOR(d *Document) ([]byte, error) {
	data, err := cborEncMode.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "marshal cbor")
	}
	return data, nil
}

// UnmarshalCBOR decodes a document written by CBOR.
func UnmarshalCBOR(data []byte) (*Document, error) {
	var d Document
	if err := cbor.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "unmarshal cbor")
	}
	return &d, nil
}
