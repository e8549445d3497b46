package cset

import (
	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cstring"
	"affy-calvin/ds"
)

// NewColumn builds the empty typed array for a descriptor. capacity is only a
// hint; the array grows as cells are decoded.
func NewColumn(descriptor ColumnDescriptor, capacity int) (Column, error) {
	switch descriptor.Type {
	case ColumnTypeInt8:
		return newNumericColumn[int8](descriptor.Type, capacity), nil
	case ColumnTypeUInt8:
		return newNumericColumn[uint8](descriptor.Type, capacity), nil
	case ColumnTypeInt16:
		return newNumericColumn[int16](descriptor.Type, capacity), nil
	case ColumnTypeUInt16:
		return newNumericColumn[uint16](descriptor.Type, capacity), nil
	case ColumnTypeInt32:
		return newNumericColumn[int32](descriptor.Type, capacity), nil
	case ColumnTypeUInt32:
		return newNumericColumn[uint32](descriptor.Type, capacity), nil
	case ColumnTypeFloat32:
		return newNumericColumn[float32](descriptor.Type, capacity), nil
	case ColumnTypeASCIIString:
		return &ASCIIColumn{Width: descriptor.Width, Values: make([]cstring.ASCII, 0, capacity)}, nil
	case ColumnTypeWideString:
		return &WideColumn{Width: descriptor.Width, Values: make([]cstring.Wide, 0, capacity)}, nil
	}
	return nil, UnsupportedColumnTypeError{
		Column:   descriptor.Name.String(),
		TypeCode: uint8(descriptor.Type),
	}
}

func newNumericColumn[T Numeric](columnType ColumnType, capacity int) *NumericColumn[T] {
	return &NumericColumn[T]{
		ColumnType: columnType,
		Values:     make([]T, 0, capacity),
	}
}

// Values returns the backing slice of a numeric column when its element type
// is T.
func Values[T Numeric](column Column) ([]T, bool) {
	numeric, ok := column.(*NumericColumn[T])
	if !ok {
		return nil, false
	}
	return numeric.Values, true
}

func (r *NumericColumn[T]) Type() ColumnType {
	return r.ColumnType
}

func (r *NumericColumn[T]) Len() int {
	return len(r.Values)
}

func (r *NumericColumn[T]) Data() any {
	return r.Values
}

func (r *NumericColumn[T]) Float64s() []float64 {
	values := make([]float64, len(r.Values))
	for i, value := range r.Values {
		values[i] = float64(value)
	}
	return values
}

func (r *NumericColumn[T]) decodeCell(reader *cbytes.Reader) error {
	var (
		value T
		err   error
	)
	switch r.ColumnType {
	case ColumnTypeInt8:
		var v int8
		v, err = reader.ReadInt8()
		value = T(v)
	case ColumnTypeUInt8:
		var v uint8
		v, err = reader.ReadUint8()
		value = T(v)
	case ColumnTypeInt16:
		var v int16
		v, err = reader.ReadInt16()
		value = T(v)
	case ColumnTypeUInt16:
		var v uint16
		v, err = reader.ReadUint16()
		value = T(v)
	case ColumnTypeInt32:
		var v int32
		v, err = reader.ReadInt32()
		value = T(v)
	case ColumnTypeUInt32:
		var v uint32
		v, err = reader.ReadUint32()
		value = T(v)
	case ColumnTypeFloat32:
		var v float32
		v, err = reader.ReadFloat32()
		value = T(v)
	default:
		return ds.ErrUnreachableCode{Caller: "NumericColumn.decodeCell", Value: r.ColumnType}
	}
	if err != nil {
		return err
	}
	r.Values = append(r.Values, value)
	return nil
}

func (r *NumericColumn[T]) reset() {
	r.Values = nil
}

func (r *ASCIIColumn) Type() ColumnType {
	return ColumnTypeASCIIString
}

func (r *ASCIIColumn) Len() int {
	return len(r.Values)
}

func (r *ASCIIColumn) Data() any {
	return r.Values
}

func (r *ASCIIColumn) Strings() []string {
	strings := make([]string, len(r.Values))
	for i, value := range r.Values {
		strings[i] = value.String()
	}
	return strings
}

func (r *ASCIIColumn) decodeCell(reader *cbytes.Reader) error {
	value, err := cstring.DecodeASCIIFixed(reader, int(r.Width)-cstring.LengthPrefixSize)
	if err != nil {
		return errors.Wrap(err, "ASCIIColumn error")
	}
	r.Values = append(r.Values, value)
	return nil
}

func (r *ASCIIColumn) reset() {
	r.Values = nil
}

func (r *WideColumn) Type() ColumnType {
	return ColumnTypeWideString
}

func (r *WideColumn) Len() int {
	return len(r.Values)
}

func (r *WideColumn) Data() any {
	return r.Values
}

func (r *WideColumn) Strings() []string {
	strings := make([]string, len(r.Values))
	for i, value := range r.Values {
		strings[i] = value.String()
	}
	return strings
}

func (r *WideColumn) decodeCell(reader *cbytes.Reader) error {
	value, err := cstring.DecodeWideFixed(reader, int(r.Width)-cstring.LengthPrefixSize)
	if err != nil {
		return errors.Wrap(err, "WideColumn error")
	}
	r.Values = append(r.Values, value)
	return nil
}

func (r *WideColumn) reset() {
	r.Values = nil
}
