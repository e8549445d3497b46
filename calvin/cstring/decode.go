package cstring

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
)

func DecodeASCII(reader *cbytes.Reader) (ASCII, error) {
	length, err := reader.ReadInt32()
	if err != nil {
		return ASCII{}, errors.Wrap(err, "DecodeASCII error: read length")
	}
	if length <= 0 {
		return ASCII{}, nil
	}
	value, err := reader.ReadBytes(int(length))
	if err != nil {
		return ASCII{}, errors.Wrapf(err, "DecodeASCII error: read %d bytes", length)
	}
	return ASCII{Value: value, Present: true}, nil
}

func DecodeWide(reader *cbytes.Reader) (Wide, error) {
	length, err := reader.ReadInt32()
	if err != nil {
		return Wide{}, errors.Wrap(err, "DecodeWide error: read length")
	}
	if length <= 0 {
		return Wide{}, nil
	}
	units, err := readUnits(reader, int(length))
	if err != nil {
		return Wide{}, errors.Wrapf(err, "DecodeWide error: read %d code units", length)
	}
	return Wide{Units: units, Present: true}, nil
}

func readUnits(reader *cbytes.Reader, n int) ([]uint16, error) {
	bs, err := reader.ReadBytes(n * WideUnitSize)
	if err != nil {
		return nil, err
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(bs[i*WideUnitSize:])
	}
	return units, nil
}

// DecodeASCIIFixed decodes a narrow string stored in a field of width bytes
// after the length prefix. The payload is cut to the field and the remainder
// of the field is skipped, so exactly prefix + width bytes are consumed. A
// non-positive width decodes as absent without reading any payload; a
// negative one also steps back so the field still spans prefix + width
// bytes.
func DecodeASCIIFixed(reader *cbytes.Reader, width int) (ASCII, error) {
	length, err := reader.ReadInt32()
	if err != nil {
		return ASCII{}, errors.Wrap(err, "DecodeASCIIFixed error: read length")
	}
	if width <= 0 {
		return ASCII{}, skip(reader, width, "DecodeASCIIFixed")
	}
	if length <= 0 {
		return ASCII{}, skip(reader, width, "DecodeASCIIFixed")
	}
	n := min(int(length), width)
	value, err := reader.ReadBytes(n)
	if err != nil {
		return ASCII{}, errors.Wrapf(err, "DecodeASCIIFixed error: read %d bytes", n)
	}
	if err := skip(reader, width-n, "DecodeASCIIFixed"); err != nil {
		return ASCII{}, err
	}
	return ASCII{Value: value, Present: true}, nil
}

// DecodeWideFixed is DecodeASCIIFixed for 2-byte code units. width is in
// bytes.
func DecodeWideFixed(reader *cbytes.Reader, width int) (Wide, error) {
	length, err := reader.ReadInt32()
	if err != nil {
		return Wide{}, errors.Wrap(err, "DecodeWideFixed error: read length")
	}
	if width <= 0 {
		return Wide{}, skip(reader, width, "DecodeWideFixed")
	}
	if length <= 0 {
		return Wide{}, skip(reader, width, "DecodeWideFixed")
	}
	n := min(int(length), width/WideUnitSize)
	if n == 0 {
		return Wide{}, skip(reader, width, "DecodeWideFixed")
	}
	units, err := readUnits(reader, n)
	if err != nil {
		return Wide{}, errors.Wrapf(err, "DecodeWideFixed error: read %d code units", n)
	}
	if err := skip(reader, width-n*WideUnitSize, "DecodeWideFixed"); err != nil {
		return Wide{}, err
	}
	return Wide{Units: units, Present: true}, nil
}

// skip moves past n bytes of padding, or back over -n bytes when n is
// negative.
func skip(reader *cbytes.Reader, n int, caller string) error {
	if err := reader.SeekRelative(int64(n)); err != nil {
		return errors.Wrapf(err, "%s error: skip %d padding bytes", caller, n)
	}
	return nil
}
