// Package cset decodes dataset schemas and their row-major tables into
// column-major typed arrays.
package cset

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cstring"
)

type (
	ColumnType uint8
	// ColumnDescriptor declares one column. For the string types Width is the
	// whole on-disk field, length prefix included.
	ColumnDescriptor struct {
		Name  cstring.Wide `json:"name"`
		Type  ColumnType   `json:"type"`
		Width int32        `json:"width"`
	}
	DataSet struct {
		FirstRowPosition uint32             `json:"first_row_position"`
		LastRowPosition  uint32             `json:"last_row_position"`
		Name             cstring.Wide       `json:"name"`
		Metadata         []cmeta.Triplet    `json:"metadata"`
		Columns          []ColumnDescriptor `json:"columns"`
		RowCount         uint32             `json:"row_count"`
		// Rows holds one Column per descriptor, each RowCount long once
		// ReadRows succeeded.
		Rows []Column `json:"-"`
	}
	Numeric interface {
		constraints.Integer | constraints.Float
	}
	// Column is a typed array for one column. The concrete type is picked
	// from the column type once, when the schema is read.
	Column interface {
		Type() ColumnType
		Len() int
		// Data returns the backing slice: []int8 ... []float32,
		// []cstring.ASCII or []cstring.Wide.
		Data() any
		decodeCell(reader *cbytes.Reader) error
		reset()
	}
	NumericColumn[T Numeric] struct {
		ColumnType ColumnType
		Values     []T
	}
	ASCIIColumn struct {
		Width  int32
		Values []cstring.ASCII
	}
	WideColumn struct {
		Width  int32
		Values []cstring.Wide
	}
)

const (
	ColumnTypeInt8 = ColumnType(iota)
	ColumnTypeUInt8
	ColumnTypeInt16
	ColumnTypeUInt16
	ColumnTypeInt32
	ColumnTypeUInt32
	ColumnTypeFloat32
	ColumnTypeASCIIString
	ColumnTypeWideString
)

var columnTypeNames = []string{
	"Int8",
	"UInt8",
	"Int16",
	"UInt16",
	"Int32",
	"UInt32",
	"Float32",
	"FixedByteString",
	"FixedWideString",
}

type (
	UnsupportedColumnTypeError struct {
		Column   string
		TypeCode uint8
	}
)

func (r UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf(`column "%s" has unsupported type code %d`, r.Column, r.TypeCode)
}

func (r ColumnType) IsValid() bool {
	return int(r) < len(columnTypeNames)
}

func (r ColumnType) String() string {
	if !r.IsValid() {
		return fmt.Sprintf("ColumnType(%d)", uint8(r))
	}
	return columnTypeNames[r]
}

// Size is the on-disk cell size of a numeric type, 0 for the string types.
func (r ColumnType) Size() int {
	switch r {
	case ColumnTypeInt8, ColumnTypeUInt8:
		return 1
	case ColumnTypeInt16, ColumnTypeUInt16:
		return 2
	case ColumnTypeInt32, ColumnTypeUInt32, ColumnTypeFloat32:
		return 4
	}
	return 0
}

func (r ColumnType) IsString() bool {
	return r == ColumnTypeASCIIString || r == ColumnTypeWideString
}

func (r ColumnType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
