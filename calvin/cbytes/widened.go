package cbytes

import (
	"encoding/binary"
	"math"
)

// Scalar metadata values are stored in a 4-byte big-endian field even when the
// logical type is narrower. 8-bit values live in the most significant byte and
// 16-bit values in the two most significant bytes; the rest is ignored.
const WidenedSize = 4

func widened(bs []byte) (uint32, error) {
	if len(bs) < WidenedSize {
		return 0, TruncatedStreamError{Wanted: WidenedSize, Got: len(bs)}
	}
	return binary.BigEndian.Uint32(bs[:WidenedSize]), nil
}

func DecodeWidenedInt8(bs []byte) (int8, error) {
	value, err := widened(bs)
	return int8(value >> 24), err
}

func DecodeWidenedUint8(bs []byte) (uint8, error) {
	value, err := widened(bs)
	return uint8(value >> 24), err
}

func DecodeWidenedInt16(bs []byte) (int16, error) {
	value, err := widened(bs)
	return int16(value >> 16), err
}

func DecodeWidenedUint16(bs []byte) (uint16, error) {
	value, err := widened(bs)
	return uint16(value >> 16), err
}

func DecodeWidenedInt32(bs []byte) (int32, error) {
	value, err := widened(bs)
	return int32(value), err
}

func DecodeWidenedUint32(bs []byte) (uint32, error) {
	return widened(bs)
}

func DecodeWidenedFloat32(bs []byte) (float32, error) {
	value, err := widened(bs)
	return math.Float32frombits(value), err
}
