package cheader

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/internal/ctest"
)

func TestDecodeFileHeader(t *testing.T) {
	reader := cbytes.NewBytesReader(ctest.EncodeFileHeader(3, 0x1234))

	header, err := DecodeFileHeader(reader)
	require.NoError(t, err)
	assert.Equal(
		t,
		FileHeader{
			MagicNumber:        59,
			Version:            1,
			DataGroupCount:     3,
			FirstGroupPosition: 0x1234,
		},
		*header,
	)
}

func TestDecodeFileHeader_BadMagic(t *testing.T) {
	bs := ctest.EncodeFileHeader(1, 10)
	bs[0] = 0x3C
	reader := cbytes.NewBytesReader(bs)

	_, err := DecodeFileHeader(reader)
	badMagic := BadMagicError{}
	require.ErrorAs(t, err, &badMagic)
	assert.Equal(t, uint8(60), badMagic.Actual)

	pos, err := reader.Pos()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pos)
}

func TestDecodeFileHeader_UnsupportedVersion(t *testing.T) {
	bs := ctest.EncodeFileHeader(1, 10)
	bs[1] = 2

	_, err := DecodeFileHeader(cbytes.NewBytesReader(bs))
	unsupported := UnsupportedVersionError{}
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, uint8(2), unsupported.Actual)
}

func TestDecodeFileHeader_Truncated(t *testing.T) {
	bs := ctest.EncodeFileHeader(1, 10)
	_, err := DecodeFileHeader(cbytes.NewBytesReader(bs[:FileHeaderSize-1]))
	assert.ErrorAs(t, err, &cbytes.TruncatedStreamError{})

	_, err = DecodeFileHeader(cbytes.NewBytesReader(ctest.EncodeFileHeader(-1, 10)))
	assert.ErrorAs(t, err, &cbytes.LimitExceededError{})
}

func lineageFixture() ctest.DataHeader {
	return ctest.DataHeader{
		DataTypeID:   "affymetrix-calvin-intensity",
		UniqueFileID: "0000065535-1152122048-0000005616-0000031915-0000026913",
		DateTime:     "2006-07-05T17:54:08Z",
		Locale:       "en-US",
		Params: []ctest.Param{
			{Name: "affymetrix-algorithm-name", Value: []byte("Feature Extraction"), MimeType: ctest.MimeASCII},
		},
		Parents: []ctest.DataHeader{
			{
				DataTypeID: "affymetrix-calvin-scan-acquisition",
				Params: []ctest.Param{
					{Name: "affymetrix-scanner-id", Value: ctest.PlainTextValue("S-01"), MimeType: ctest.MimePlain},
				},
			},
			{
				DataTypeID: "affymetrix-calvin-array",
				Params: []ctest.Param{
					{Name: "affymetrix-cel-rows", Value: ctest.Int32Value(2560), MimeType: ctest.MimeInt32},
					{Name: "affymetrix-scanner-id", Value: ctest.PlainTextValue("shadowed"), MimeType: ctest.MimePlain},
				},
			},
		},
	}
}

func TestDecodeDataHeader_Lineage(t *testing.T) {
	bs := ctest.EncodeDataHeader(lineageFixture())
	reader := cbytes.NewBytesReader(bs)

	header, err := DecodeDataHeader(reader)
	require.NoError(t, err)

	pos, err := reader.Pos()
	require.NoError(t, err)
	assert.Equal(t, int64(len(bs)), pos)

	assert.Equal(t, "affymetrix-calvin-intensity", header.DataTypeID.String())
	assert.Equal(t, "2006-07-05T17:54:08Z", header.DateTime.String())
	assert.Equal(t, "en-US", header.Locale.String())
	assert.Len(t, header.ParentHeaders, 2)
	for _, parent := range header.ParentHeaders {
		assert.Empty(t, parent.ParentHeaders)
		assert.True(t, parent.UniqueFileID.IsAbsent())
	}
	assert.Equal(t, 2, header.Depth())

	triplet, ok := header.FindMetadataByName("affymetrix-cel-rows")
	require.True(t, ok)
	value, err := cmeta.Decode(triplet)
	require.NoError(t, err)
	assert.Equal(t, int32(2560), value.Data)

	// the first parent wins over the second
	triplet, ok = header.FindMetadataByName("affymetrix-scanner-id")
	require.True(t, ok)
	value, err = cmeta.Decode(triplet)
	require.NoError(t, err)
	assert.Equal(t, "S-01", value.String())

	_, ok = header.FindMetadataByName("affymetrix-missing")
	assert.False(t, ok)
}

func TestDataHeader_FlattenIsDepthFirst(t *testing.T) {
	fixture := ctest.DataHeader{
		DataTypeID: "root",
		Parents: []ctest.DataHeader{
			{DataTypeID: "a", Parents: []ctest.DataHeader{{DataTypeID: "a1"}, {DataTypeID: "a2"}}},
			{DataTypeID: "b", Parents: []ctest.DataHeader{{DataTypeID: "b1"}}},
		},
	}
	header, err := DecodeDataHeader(cbytes.NewBytesReader(ctest.EncodeDataHeader(fixture)))
	require.NoError(t, err)

	assert.Equal(
		t,
		[]string{"root", "a", "a1", "a2", "b", "b1"},
		lo.Map(header.Flatten(), func(header *DataHeader, _ int) string {
			return header.DataTypeID.String()
		}),
	)
	assert.Equal(t, 3, header.Depth())

	parent, ok := header.FindParentByDataTypeID("b1")
	require.True(t, ok)
	assert.Equal(t, "b1", parent.DataTypeID.String())
	_, ok = header.FindParentByDataTypeID("root")
	assert.False(t, ok)
}

func TestDecodeDataHeader_DepthLimit(t *testing.T) {
	fixture := ctest.DataHeader{DataTypeID: "leaf"}
	for i := 0; i < 5; i++ {
		fixture = ctest.DataHeader{DataTypeID: "node", Parents: []ctest.DataHeader{fixture}}
	}
	bs := ctest.EncodeDataHeader(fixture)

	header, err := DecodeDataHeader(cbytes.NewBytesReader(bs))
	require.NoError(t, err)
	assert.Equal(t, 6, header.Depth())

	reader := cbytes.NewBytesReader(bs)
	reader.Limits.MaxHeaderDepth = 5
	_, err = DecodeDataHeader(reader)
	exceeded := cbytes.LimitExceededError{}
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "header depth", exceeded.Field)
}

func TestDecodeDataHeader_Truncated(t *testing.T) {
	bs := ctest.EncodeDataHeader(lineageFixture())
	for _, cut := range []int{0, 3, len(bs) / 2, len(bs) - 1} {
		_, err := DecodeDataHeader(cbytes.NewBytesReader(bs[:cut]))
		assert.ErrorAs(t, err, &cbytes.TruncatedStreamError{}, "cut at %d", cut)
	}
}

func TestDecodeDataHeader_NegativeParentCount(t *testing.T) {
	bs := ctest.EncodeDataHeader(ctest.DataHeader{DataTypeID: "x"})
	bs = ctest.AppendInt32(bs[:len(bs)-4], -2)
	_, err := DecodeDataHeader(cbytes.NewBytesReader(bs))
	assert.ErrorAs(t, err, &cbytes.LimitExceededError{})
}
