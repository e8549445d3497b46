package cset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cstring"
	"affy-calvin/internal/ctest"
)

func decodeFixture(t *testing.T, dataSet ctest.DataSet) (*DataSet, *cbytes.Reader) {
	t.Helper()
	reader := cbytes.NewBytesReader(ctest.EncodeDataSet(dataSet, 0))
	decoded, err := Decode(reader)
	require.NoError(t, err)
	return decoded, reader
}

func TestDecode_Float32Column(t *testing.T) {
	fixture := ctest.DataSet{
		Name:    "Intensity",
		Columns: []ctest.Column{{Name: "Intensity", Type: ctest.TypeFloat32, Width: 4}},
		Rows:    [][]any{{1.5}, {-2.0}, {0.0}},
	}
	dataSet, _ := decodeFixture(t, fixture)

	assert.Equal(t, "Intensity", dataSet.Name.String())
	assert.Equal(t, uint32(3), dataSet.RowCount)
	require.Len(t, dataSet.Rows, 1)
	assert.Equal(t, ColumnTypeFloat32, dataSet.Rows[0].Type())

	values, ok := Values[float32](dataSet.Rows[0])
	require.True(t, ok)
	assert.Equal(t, []float32{1.5, -2.0, 0.0}, values)

	_, ok = Values[int32](dataSet.Rows[0])
	assert.False(t, ok)
}

func TestDecode_AllColumnTypes(t *testing.T) {
	fixture := ctest.DataSet{
		Name: "Everything",
		Params: []ctest.Param{
			{Name: "affymetrix-dataset-note", Value: []byte("mixed"), MimeType: ctest.MimeASCII},
		},
		Columns: []ctest.Column{
			{Name: "i8", Type: ctest.TypeInt8, Width: 1},
			{Name: "u8", Type: ctest.TypeUint8, Width: 1},
			{Name: "i16", Type: ctest.TypeInt16, Width: 2},
			{Name: "u16", Type: ctest.TypeUint16, Width: 2},
			{Name: "i32", Type: ctest.TypeInt32, Width: 4},
			{Name: "u32", Type: ctest.TypeUint32, Width: 4},
			{Name: "f32", Type: ctest.TypeFloat32, Width: 4},
			{Name: "probe", Type: ctest.TypeASCIIString, Width: 12},
			{Name: "label", Type: ctest.TypeWideString, Width: 16},
		},
		Rows: [][]any{
			{-1, 255, -300, 65535, -70000, uint32(math.MaxUint32), 0.5, "AFFX-1", "BioB"},
			{127, 0, 300, 1, 70000, 7, -0.25, "", "Cre"},
		},
	}
	dataSet, reader := decodeFixture(t, fixture)

	assert.Equal(t, []string{"i8", "u8", "i16", "u16", "i32", "u32", "f32", "probe", "label"}, dataSet.ColumnNames())
	assert.Equal(t, []int8{-1, 127}, dataSet.Rows[0].Data())
	assert.Equal(t, []uint8{255, 0}, dataSet.Rows[1].Data())
	assert.Equal(t, []int16{-300, 300}, dataSet.Rows[2].Data())
	assert.Equal(t, []uint16{65535, 1}, dataSet.Rows[3].Data())
	assert.Equal(t, []int32{-70000, 70000}, dataSet.Rows[4].Data())
	assert.Equal(t, []uint32{math.MaxUint32, 7}, dataSet.Rows[5].Data())
	assert.Equal(t, []float32{0.5, -0.25}, dataSet.Rows[6].Data())

	probes := dataSet.Rows[7].(*ASCIIColumn)
	assert.Equal(t, []string{"AFFX-1", ""}, probes.Strings())
	assert.True(t, probes.Values[1].IsAbsent())
	labels := dataSet.Rows[8].(*WideColumn)
	assert.Equal(t, []string{"BioB", "Cre"}, labels.Strings())

	triplet, ok := dataSet.FindMetadataByName("affymetrix-dataset-note")
	require.True(t, ok)
	value, err := cmeta.Decode(triplet)
	require.NoError(t, err)
	assert.Equal(t, "mixed", value.String())

	pos, err := reader.Pos()
	require.NoError(t, err)
	assert.Equal(t, int64(dataSet.LastRowPosition), pos)
}

func TestDataSet_ColumnByName(t *testing.T) {
	fixture := ctest.DataSet{
		Name: "Outlier",
		Columns: []ctest.Column{
			{Name: "X", Type: ctest.TypeInt16, Width: 2},
			{Name: "Y", Type: ctest.TypeInt16, Width: 2},
		},
		Rows: [][]any{{1, 2}, {3, 4}},
	}
	dataSet, _ := decodeFixture(t, fixture)

	column, descriptor, ok := dataSet.ColumnByName("Y")
	require.True(t, ok)
	assert.Equal(t, ColumnTypeInt16, descriptor.Type)
	assert.Equal(t, []int16{2, 4}, column.Data())
	assert.Equal(t, []float64{2, 4}, column.(*NumericColumn[int16]).Float64s())

	_, _, ok = dataSet.ColumnByName("Z")
	assert.False(t, ok)
}

func TestDecodeSchema_PositionsAndEmptyArrays(t *testing.T) {
	fixture := ctest.DataSet{
		Name:            "Pixel",
		Columns:         []ctest.Column{{Name: "Pixel", Type: ctest.TypeInt16, Width: 2}},
		Rows:            [][]any{{10}, {20}},
		TrailingPadding: 16,
	}
	bs := ctest.EncodeDataSet(fixture, 1000)
	reader := cbytes.NewBytesReader(bs)

	dataSet, err := DecodeSchema(reader)
	require.NoError(t, err)
	pos, err := reader.Pos()
	require.NoError(t, err)
	assert.Equal(t, int64(dataSet.FirstRowPosition-1000), pos)
	assert.Equal(t, dataSet.FirstRowPosition+4+16, dataSet.LastRowPosition)
	assert.Equal(t, 0, dataSet.Rows[0].Len())

	require.NoError(t, dataSet.ReadRows(reader))
	assert.Equal(t, 2, dataSet.Rows[0].Len())
}

func TestReadRows_FixedStringsConsumeDeclaredWidth(t *testing.T) {
	// a 4 byte wide field holds the prefix only
	fixture := ctest.DataSet{
		Name: "Strings",
		Columns: []ctest.Column{
			{Name: "empty", Type: ctest.TypeASCIIString, Width: 4},
			{Name: "padded", Type: ctest.TypeASCIIString, Width: 20},
			{Name: "wide", Type: ctest.TypeWideString, Width: 10},
			{Name: "after", Type: ctest.TypeUint8, Width: 1},
		},
		Rows: [][]any{
			{"", "", "", 1},
			{"", "abc", "xyz", 2},
		},
	}
	dataSet, _ := decodeFixture(t, fixture)

	empty := dataSet.Rows[0].(*ASCIIColumn)
	assert.True(t, empty.Values[0].IsAbsent())
	assert.True(t, empty.Values[1].IsAbsent())
	padded := dataSet.Rows[1].(*ASCIIColumn)
	assert.True(t, padded.Values[0].IsAbsent())
	assert.Equal(t, "abc", padded.Values[1].String())
	wide := dataSet.Rows[2].(*WideColumn)
	assert.Equal(t, "xyz", wide.Values[1].String())
	assert.Equal(t, []uint8{1, 2}, dataSet.Rows[3].Data())
}

func TestReadRows_TruncatedDiscardsEverything(t *testing.T) {
	fixture := ctest.DataSet{
		Name: "Intensity",
		Columns: []ctest.Column{
			{Name: "a", Type: ctest.TypeFloat32, Width: 4},
			{Name: "b", Type: ctest.TypeInt32, Width: 4},
		},
		Rows: [][]any{{1.0, 1}, {2.0, 2}, {3.0, 3}},
	}
	bs := ctest.EncodeDataSet(fixture, 0)
	reader := cbytes.NewBytesReader(bs[:len(bs)-2])

	dataSet, err := DecodeSchema(reader)
	require.NoError(t, err)
	err = dataSet.ReadRows(reader)
	assert.ErrorAs(t, err, &cbytes.TruncatedStreamError{})
	for _, column := range dataSet.Rows {
		assert.Equal(t, 0, column.Len())
	}

	_, err = Decode(cbytes.NewBytesReader(bs[:len(bs)-2]))
	assert.Error(t, err)
}

func TestReadRows_RereadReplacesRows(t *testing.T) {
	fixture := ctest.DataSet{
		Name:    "Pixel",
		Columns: []ctest.Column{{Name: "Pixel", Type: ctest.TypeInt16, Width: 2}},
		Rows:    [][]any{{9}, {16}},
	}
	reader := cbytes.NewBytesReader(ctest.EncodeDataSet(fixture, 0))
	dataSet, err := DecodeSchema(reader)
	require.NoError(t, err)
	require.NoError(t, dataSet.ReadRows(reader))

	require.NoError(t, reader.SeekAbsolute(int64(dataSet.FirstRowPosition)))
	require.NoError(t, dataSet.ReadRows(reader))
	assert.Equal(t, []int16{9, 16}, dataSet.Rows[0].Data())
}

func TestDecodeSchema_UnsupportedColumnType(t *testing.T) {
	fixture := ctest.DataSet{
		Name:    "Broken",
		Columns: []ctest.Column{{Name: "double", Type: 9, Width: 8}},
	}
	_, err := DecodeSchema(cbytes.NewBytesReader(ctest.EncodeDataSet(fixture, 0)))
	unsupported := UnsupportedColumnTypeError{}
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, UnsupportedColumnTypeError{Column: "double", TypeCode: 9}, unsupported)
}

func TestDecodeSchema_Limits(t *testing.T) {
	fixture := ctest.DataSet{
		Name:    "Big",
		Columns: []ctest.Column{{Name: "a", Type: ctest.TypeUint8, Width: 1}},
		Rows:    [][]any{{1}, {2}, {3}},
	}
	bs := ctest.EncodeDataSet(fixture, 0)

	reader := cbytes.NewBytesReader(bs)
	reader.Limits.MaxRows = 2
	_, err := DecodeSchema(reader)
	exceeded := cbytes.LimitExceededError{}
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "row count", exceeded.Field)

	reader = cbytes.NewBytesReader(bs)
	reader.Limits.MaxCount = 1
	_, err = DecodeSchema(reader)
	assert.NoError(t, err)
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "Float32", ColumnTypeFloat32.String())
	assert.Equal(t, "FixedWideString", ColumnTypeWideString.String())
	assert.Equal(t, "ColumnType(12)", ColumnType(12).String())
	assert.False(t, ColumnType(9).IsValid())
	assert.Equal(t, 2, ColumnTypeUInt16.Size())
	assert.Equal(t, 0, ColumnTypeASCIIString.Size())
	assert.True(t, ColumnTypeWideString.IsString())

	text, err := ColumnTypeInt8.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Int8", string(text))
}

func TestNewColumn_CapacityIsOnlyAHint(t *testing.T) {
	column, err := NewColumn(ColumnDescriptor{Name: cstring.NewWide("x"), Type: ColumnTypeUInt32}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, column.Len())
	assert.Equal(t, ColumnTypeUInt32, column.Type())
}
