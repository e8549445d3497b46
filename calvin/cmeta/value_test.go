package cmeta

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cstring"
	"affy-calvin/internal/ctest"
)

func newTriplet(name string, value []byte, mimeType string) Triplet {
	return Triplet{
		Name:     cstring.NewWide(name),
		Value:    cstring.ASCII{Value: value, Present: len(value) > 0},
		MimeType: cstring.NewWide(mimeType),
	}
}

func TestClassifyMimeType(t *testing.T) {
	expected := map[string]MimeKind{
		ctest.MimeFloat:  MimeKindFloat32,
		ctest.MimePlain:  MimeKindPlainText,
		ctest.MimeASCII:  MimeKindASCIIText,
		ctest.MimeInt8:   MimeKindInt8,
		ctest.MimeInt16:  MimeKindInt16,
		ctest.MimeInt32:  MimeKindInt32,
		ctest.MimeUint8:  MimeKindUInt8,
		ctest.MimeUint16: MimeKindUInt16,
		ctest.MimeUint32: MimeKindUInt32,
	}
	for mimeType, kind := range expected {
		actual, err := ClassifyMimeType(newTriplet("x", nil, mimeType))
		require.NoError(t, err, mimeType)
		assert.Equal(t, kind, actual, mimeType)
	}
}

func TestClassifyMimeType_UnknownFallsBack(t *testing.T) {
	kind, err := ClassifyMimeType(newTriplet("x", nil, "application/x-unknown"))
	assert.Equal(t, MimeKindFloat32, kind)
	unknown := UnknownMimeTypeError{}
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "application/x-unknown", unknown.MimeType)

	// matching is exact
	_, err = ClassifyMimeType(newTriplet("x", nil, "TEXT/PLAIN"))
	assert.Error(t, err)
}

func TestDecodeValue_Int8IsMostSignificantByte(t *testing.T) {
	for _, expected := range []int8{-128, -1, 0, 1, 127} {
		raw := ctest.Int8Value(expected)
		raw[1], raw[2], raw[3] = 0xAA, 0xBB, 0xCC
		value, err := DecodeValue(newTriplet("x", raw, ctest.MimeInt8), MimeKindInt8)
		require.NoError(t, err)
		assert.Equal(t, expected, value.Data)
	}
}

func TestDecodeValue_Scalars(t *testing.T) {
	type testCase struct {
		raw      []byte
		kind     MimeKind
		expected any
		text     string
	}
	testCases := []testCase{
		{ctest.Uint8Value(200), MimeKindUInt8, uint8(200), "200"},
		{ctest.Int16Value(-300), MimeKindInt16, int16(-300), "-300"},
		{ctest.Uint16Value(60000), MimeKindUInt16, uint16(60000), "60000"},
		{ctest.Int32Value(-70000), MimeKindInt32, int32(-70000), "-70000"},
		{ctest.Uint32Value(math.MaxUint32), MimeKindUInt32, uint32(math.MaxUint32), "4294967295"},
		{ctest.Float32Value(0.25), MimeKindFloat32, float32(0.25), "0.250000"},
	}
	for _, testCase := range testCases {
		value, err := DecodeValue(newTriplet("x", testCase.raw, ""), testCase.kind)
		require.NoError(t, err, testCase.kind)
		assert.Equal(t, testCase.kind, value.Kind)
		assert.Equal(t, testCase.expected, value.Data)
		assert.Equal(t, testCase.text, value.String())
	}
}

func TestDecodeValue_Text(t *testing.T) {
	plain := append(ctest.PlainTextValue("Hyb 45°"), 0, 0, 0, 0)
	value, err := DecodeValue(newTriplet("x", plain, ctest.MimePlain), MimeKindPlainText)
	require.NoError(t, err)
	assert.Equal(t, "Hyb 45°", value.String())

	ascii, err := DecodeValue(newTriplet("x", []byte("GeneChip\x00\x00"), ctest.MimeASCII), MimeKindASCIIText)
	require.NoError(t, err)
	text, ok := ascii.Text()
	assert.True(t, ok)
	assert.Equal(t, "GeneChip", text)

	empty, err := DecodeValue(newTriplet("x", nil, ctest.MimePlain), MimeKindPlainText)
	require.NoError(t, err)
	assert.Equal(t, "", empty.String())
}

func TestDecodeValue_Short(t *testing.T) {
	_, err := DecodeValue(newTriplet("x", []byte{1, 2}, ctest.MimeInt32), MimeKindInt32)
	short := ShortValueError{}
	require.ErrorAs(t, err, &short)
	assert.Equal(t, ShortValueError{Kind: MimeKindInt32, Length: 2}, short)
}

func TestDecode_UnknownStillYieldsValue(t *testing.T) {
	value, err := Decode(newTriplet("x", ctest.Float32Value(-1.5), "text/x-mystery"))
	assert.ErrorAs(t, err, &UnknownMimeTypeError{})
	assert.Equal(t, float32(-1.5), value.Data)
	assert.Equal(t, "-1.500000", value.String())
}

func TestValue_Accessors(t *testing.T) {
	value := Value{Kind: MimeKindUInt16, Data: uint16(7)}
	i, ok := value.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)
	f, ok := value.Float64()
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
	_, ok = value.Text()
	assert.False(t, ok)
	assert.True(t, MimeKindPlainText.IsText())
	assert.False(t, MimeKindUInt16.IsText())
}

func TestDecodeBlock(t *testing.T) {
	params := []ctest.Param{
		{Name: "affymetrix-cel-rows", Value: ctest.Int32Value(2560), MimeType: ctest.MimeInt32},
		{Name: "affymetrix-scanner-id", Value: ctest.PlainTextValue("S-01"), MimeType: ctest.MimePlain},
		{Name: "affymetrix-cel-rows", Value: ctest.Int32Value(1), MimeType: ctest.MimeInt32},
	}
	bs := ctest.AppendParams(nil, params)
	reader := cbytes.NewBytesReader(bs)

	triplets, err := DecodeBlock(reader)
	require.NoError(t, err)
	assert.Equal(
		t,
		lo.Map(params, func(param ctest.Param, _ int) string { return param.Name }),
		lo.Map(triplets, func(triplet Triplet, _ int) string { return triplet.Name.String() }),
	)

	found, ok := FindByName(triplets, "affymetrix-cel-rows")
	require.True(t, ok)
	value, err := Decode(found)
	require.NoError(t, err)
	assert.Equal(t, int32(2560), value.Data)

	_, ok = FindByName(triplets, "missing")
	assert.False(t, ok)
}

func TestDecodeBlock_Errors(t *testing.T) {
	bs := ctest.AppendParams(nil, []ctest.Param{{Name: "n", Value: []byte{1}, MimeType: ctest.MimeASCII}})
	_, err := DecodeBlock(cbytes.NewBytesReader(bs[:len(bs)-3]))
	assert.ErrorAs(t, err, &cbytes.TruncatedStreamError{})

	_, err = DecodeBlock(cbytes.NewBytesReader(ctest.AppendInt32(nil, -1)))
	assert.ErrorAs(t, err, &cbytes.LimitExceededError{})

	reader := cbytes.NewBytesReader(ctest.AppendInt32(nil, 5))
	reader.Limits.MaxCount = 4
	_, err = DecodeBlock(reader)
	assert.ErrorAs(t, err, &cbytes.LimitExceededError{})
}
