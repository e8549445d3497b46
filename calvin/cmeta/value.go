package cmeta

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cstring"
	"affy-calvin/ds"
)

// ClassifyMimeType maps the triplet's type tag to a kind by exact match. An
// unrecognized tag classifies as Float32 and comes with an
// UnknownMimeTypeError so the caller can choose to surface it.
func ClassifyMimeType(triplet Triplet) (MimeKind, error) {
	mimeType := triplet.MimeType.String()
	kind, ok := mimeKinds[mimeType]
	if !ok {
		return MimeKindFloat32, UnknownMimeTypeError{MimeType: mimeType}
	}
	return kind, nil
}

func DecodeValue(triplet Triplet, kind MimeKind) (Value, error) {
	raw := triplet.Value.Value
	switch kind {
	case MimeKindASCIIText:
		return Value{Kind: kind, Data: string(untilNUL(raw))}, nil
	case MimeKindPlainText:
		return Value{Kind: kind, Data: decodeText(raw).String()}, nil
	}

	var (
		data any
		err  error
	)
	switch kind {
	case MimeKindInt8:
		data, err = cbytes.DecodeWidenedInt8(raw)
	case MimeKindUInt8:
		data, err = cbytes.DecodeWidenedUint8(raw)
	case MimeKindInt16:
		data, err = cbytes.DecodeWidenedInt16(raw)
	case MimeKindUInt16:
		data, err = cbytes.DecodeWidenedUint16(raw)
	case MimeKindInt32:
		data, err = cbytes.DecodeWidenedInt32(raw)
	case MimeKindUInt32:
		data, err = cbytes.DecodeWidenedUint32(raw)
	case MimeKindFloat32:
		data, err = cbytes.DecodeWidenedFloat32(raw)
	default:
		return Value{}, ds.ErrUnreachableCode{Caller: "DecodeValue", Value: kind}
	}
	if err != nil {
		err := errors.Wrapf(
			ShortValueError{Kind: kind, Length: len(raw)},
			`DecodeValue error: "%s"`, triplet.Name,
		)
		return Value{}, err
	}
	return Value{Kind: kind, Data: data}, nil
}

// Decode classifies and decodes in one step. A value is returned even when
// the error is an UnknownMimeTypeError.
func Decode(triplet Triplet) (Value, error) {
	kind, classifyErr := ClassifyMimeType(triplet)
	value, err := DecodeValue(triplet, kind)
	if err != nil {
		return Value{}, err
	}
	return value, classifyErr
}

// decodeText reads a plain text payload as big-endian 16-bit code units,
// which differs from the length-prefixed wide string layout.
func decodeText(raw []byte) cstring.Wide {
	n := len(raw) / cstring.WideUnitSize
	units := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		unit := binary.BigEndian.Uint16(raw[i*cstring.WideUnitSize:])
		if unit == 0 {
			break
		}
		units = append(units, unit)
	}
	if len(units) == 0 {
		return cstring.Wide{}
	}
	return cstring.Wide{Units: units, Present: true}
}

func untilNUL(raw []byte) []byte {
	for i, b := range raw {
		if b == 0 {
			return raw[:i]
		}
	}
	return raw
}

func (r Value) Text() (string, bool) {
	s, ok := r.Data.(string)
	return s, ok
}

// Int64 widens any integer kind.
func (r Value) Int64() (int64, bool) {
	switch data := r.Data.(type) {
	case int8:
		return int64(data), true
	case uint8:
		return int64(data), true
	case int16:
		return int64(data), true
	case uint16:
		return int64(data), true
	case int32:
		return int64(data), true
	case uint32:
		return int64(data), true
	}
	return 0, false
}

func (r Value) Float64() (float64, bool) {
	if data, ok := r.Data.(float32); ok {
		return float64(data), true
	}
	if data, ok := r.Int64(); ok {
		return float64(data), true
	}
	return 0, false
}

// String formats integers in decimal and floats with six decimals. Text
// kinds are returned as-is.
func (r Value) String() string {
	switch data := r.Data.(type) {
	case string:
		return data
	case float32:
		return fmt.Sprintf("%f", data)
	case nil:
		return ""
	}
	if data, ok := r.Int64(); ok {
		return fmt.Sprintf("%d", data)
	}
	return fmt.Sprintf("%v", r.Data)
}
