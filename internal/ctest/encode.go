// Package ctest synthesizes Calvin files in memory for tests.
//
// It is the only place that writes the format. Offsets are computed from the
// encoded sizes, so fixtures can reorder groups physically or pad datasets
// while keeping every stored pointer valid.
package ctest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
)

type (
	Param struct {
		Name     string
		Value    []byte
		MimeType string
	}
	DataHeader struct {
		DataTypeID   string
		UniqueFileID string
		DateTime     string
		Locale       string
		Params       []Param
		Parents      []DataHeader
	}
	Column struct {
		Name  string
		Type  uint8
		Width int32
	}
	DataSet struct {
		Name    string
		Params  []Param
		Columns []Column
		// Rows are row-major; each cell is an int, a float or a string
		// depending on the column type.
		Rows            [][]any
		TrailingPadding int
	}
	Group struct {
		Name     string
		DataSets []DataSet
	}
	File struct {
		Header DataHeader
		Groups []Group
		// ReversePhysicalOrder stores the groups back to front while the
		// next-group pointers still describe the declared order.
		ReversePhysicalOrder bool
	}
)

const (
	Magic   = 59
	Version = 1

	TypeInt8        = uint8(0)
	TypeUint8       = uint8(1)
	TypeInt16       = uint8(2)
	TypeUint16      = uint8(3)
	TypeInt32       = uint8(4)
	TypeUint32      = uint8(5)
	TypeFloat32     = uint8(6)
	TypeASCIIString = uint8(7)
	TypeWideString  = uint8(8)

	MimeFloat  = "text/x-calvin-float"
	MimePlain  = "text/plain"
	MimeASCII  = "text/ascii"
	MimeInt8   = "text/x-calvin-integer-8"
	MimeInt16  = "text/x-calvin-integer-16"
	MimeInt32  = "text/x-calvin-integer-32"
	MimeUint8  = "text/x-calvin-unsigned-integer-8"
	MimeUint16 = "text/x-calvin-unsigned-integer-16"
	MimeUint32 = "text/x-calvin-unsigned-integer-32"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func AppendInt32(bs []byte, value int32) []byte {
	return binary.BigEndian.AppendUint32(bs, uint32(value))
}

func AppendUint32(bs []byte, value uint32) []byte {
	return binary.BigEndian.AppendUint32(bs, value)
}

func EncodeUTF16(s string) []byte {
	encoded, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(fmt.Errorf("EncodeUTF16 error: %w", err))
	}
	return encoded
}

func AppendASCII(bs []byte, s string) []byte {
	bs = AppendInt32(bs, int32(len(s)))
	return append(bs, s...)
}

func AppendWide(bs []byte, s string) []byte {
	encoded := EncodeUTF16(s)
	bs = AppendInt32(bs, int32(len(encoded)/2))
	return append(bs, encoded...)
}

func AppendParam(bs []byte, param Param) []byte {
	bs = AppendWide(bs, param.Name)
	bs = AppendInt32(bs, int32(len(param.Value)))
	bs = append(bs, param.Value...)
	return AppendWide(bs, param.MimeType)
}

func AppendParams(bs []byte, params []Param) []byte {
	bs = AppendInt32(bs, int32(len(params)))
	for _, param := range params {
		bs = AppendParam(bs, param)
	}
	return bs
}

func EncodeFileHeader(groupCount int32, firstGroupPosition uint32) []byte {
	bs := []byte{Magic, Version}
	bs = AppendInt32(bs, groupCount)
	return AppendUint32(bs, firstGroupPosition)
}

func EncodeDataHeader(header DataHeader) []byte {
	bs := AppendASCII(nil, header.DataTypeID)
	bs = AppendASCII(bs, header.UniqueFileID)
	bs = AppendWide(bs, header.DateTime)
	bs = AppendWide(bs, header.Locale)
	bs = AppendParams(bs, header.Params)
	bs = AppendInt32(bs, int32(len(header.Parents)))
	for _, parent := range header.Parents {
		bs = append(bs, EncodeDataHeader(parent)...)
	}
	return bs
}

func EncodeCell(column Column, value any) []byte {
	switch column.Type {
	case TypeInt8, TypeUint8:
		return []byte{byte(toInt64(value))}
	case TypeInt16, TypeUint16:
		return binary.BigEndian.AppendUint16(nil, uint16(toInt64(value)))
	case TypeInt32, TypeUint32:
		return AppendUint32(nil, uint32(toInt64(value)))
	case TypeFloat32:
		return AppendUint32(nil, math.Float32bits(toFloat32(value)))
	case TypeASCIIString:
		payload := []byte(value.(string))
		return fixedWidth(column.Width, len(payload), payload)
	case TypeWideString:
		payload := EncodeUTF16(value.(string))
		return fixedWidth(column.Width, len(payload)/2, payload)
	}
	panic(fmt.Sprintf("EncodeCell unsupported column type %d", column.Type))
}

func fixedWidth(width int32, length int, payload []byte) []byte {
	bs := AppendInt32(nil, int32(length))
	bs = append(bs, payload...)
	if padding := int(width) - 4 - len(payload); padding > 0 {
		bs = append(bs, make([]byte, padding)...)
	}
	return bs
}

func toInt64(value any) int64 {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	}
	panic(fmt.Sprintf("toInt64 unsupported value %#v", value))
}

func toFloat32(value any) float32 {
	switch v := value.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	}
	panic(fmt.Sprintf("toFloat32 unsupported value %#v", value))
}

// EncodeDataSet lays out one dataset starting at the absolute offset base.
func EncodeDataSet(dataSet DataSet, base int) []byte {
	schema := AppendWide(nil, dataSet.Name)
	schema = AppendParams(schema, dataSet.Params)
	schema = AppendUint32(schema, uint32(len(dataSet.Columns)))
	for _, column := range dataSet.Columns {
		schema = AppendWide(schema, column.Name)
		schema = append(schema, column.Type)
		schema = AppendInt32(schema, column.Width)
	}
	schema = AppendUint32(schema, uint32(len(dataSet.Rows)))

	rows := make([]byte, 0)
	for _, row := range dataSet.Rows {
		for i, cell := range row {
			rows = append(rows, EncodeCell(dataSet.Columns[i], cell)...)
		}
	}

	// two uint32 positions precede the rest of the schema
	firstRow := base + 8 + len(schema)
	lastRow := firstRow + len(rows) + dataSet.TrailingPadding
	bs := AppendUint32(nil, uint32(firstRow))
	bs = AppendUint32(bs, uint32(lastRow))
	bs = append(bs, schema...)
	bs = append(bs, rows...)
	return append(bs, make([]byte, dataSet.TrailingPadding)...)
}

// EncodeGroup lays out a group header and its datasets at base. The next
// group pointer is written as given.
func EncodeGroup(group Group, base int, next uint32) []byte {
	name := AppendWide(nil, group.Name)
	headerLength := 12 + len(name)
	bs := AppendUint32(nil, next)
	bs = AppendUint32(bs, uint32(base+headerLength))
	bs = AppendInt32(bs, int32(len(group.DataSets)))
	bs = append(bs, name...)
	for _, dataSet := range group.DataSets {
		bs = append(bs, EncodeDataSet(dataSet, base+len(bs))...)
	}
	return bs
}

func Encode(file File) []byte {
	dataHeader := EncodeDataHeader(file.Header)
	base := len(EncodeFileHeader(0, 0)) + len(dataHeader)

	n := len(file.Groups)
	physical := make([]int, n)
	for i := range physical {
		physical[i] = i
		if file.ReversePhysicalOrder {
			physical[i] = n - 1 - i
		}
	}
	offsets := make([]int, n)
	cursor := base
	for _, logical := range physical {
		offsets[logical] = cursor
		cursor += len(EncodeGroup(file.Groups[logical], 0, 0))
	}

	firstGroup := uint32(0)
	if n > 0 {
		firstGroup = uint32(offsets[0])
	}
	bs := EncodeFileHeader(int32(n), firstGroup)
	bs = append(bs, dataHeader...)
	for _, logical := range physical {
		next := uint32(0)
		if logical+1 < n {
			next = uint32(offsets[logical+1])
		}
		bs = append(bs, EncodeGroup(file.Groups[logical], offsets[logical], next)...)
	}
	return bs
}

func Gzip(bs []byte) []byte {
	buf := bytes.Buffer{}
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(bs); err != nil {
		panic(err)
	}
	if err := writer.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func Int8Value(value int8) []byte {
	return []byte{byte(value), 0, 0, 0}
}

func Uint8Value(value uint8) []byte {
	return []byte{value, 0, 0, 0}
}

func Int16Value(value int16) []byte {
	return []byte{byte(uint16(value) >> 8), byte(value), 0, 0}
}

func Uint16Value(value uint16) []byte {
	return []byte{byte(value >> 8), byte(value), 0, 0}
}

func Int32Value(value int32) []byte {
	return AppendInt32(nil, value)
}

func Uint32Value(value uint32) []byte {
	return AppendUint32(nil, value)
}

func Float32Value(value float32) []byte {
	return AppendUint32(nil, math.Float32bits(value))
}

func PlainTextValue(s string) []byte {
	return EncodeUTF16(s)
}
