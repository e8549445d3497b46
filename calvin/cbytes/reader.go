package cbytes

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

func NewReader(source Source) *Reader {
	return &Reader{
		source: source,
		Limits: DefaultLimits(),
	}
}

func NewBytesReader(bs []byte) *Reader {
	return NewReader(bytes.NewReader(bs))
}

// ReadBytes reads exactly n bytes. Fewer bytes available is a
// TruncatedStreamError, never a partial result. Lengths above ReadChunkSize
// grow the buffer only as bytes arrive, so a declared length costs nothing
// the source cannot back.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, LimitExceededError{Field: "byte length", Count: int64(n)}
	}
	// reading zero bytes at the end of the source is not an error
	if n == 0 {
		return []byte{}, nil
	}
	if n > ReadChunkSize {
		return r.readLarge(n)
	}
	bs := make([]byte, n)
	got, err := io.ReadFull(r.source, bs)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, TruncatedStreamError{Wanted: n, Got: got}
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadBytes error")
	}
	return bs, nil
}

func (r *Reader) readLarge(n int) ([]byte, error) {
	buf := bytes.Buffer{}
	buf.Grow(ReadChunkSize)
	got, err := io.CopyN(&buf, r.source, int64(n))
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, TruncatedStreamError{Wanted: n, Got: int(got)}
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadBytes error")
	}
	return buf.Bytes(), nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	bs, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	value, err := r.ReadUint8()
	return int8(value), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	bs, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(bs), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	value, err := r.ReadUint16()
	return int16(value), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	bs, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(bs), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	value, err := r.ReadUint32()
	return int32(value), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	bits, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// SeekRelative moves the cursor by offset bytes, backwards when negative.
func (r *Reader) SeekRelative(offset int64) error {
	if offset == 0 {
		return nil
	}
	_, err := r.source.Seek(offset, io.SeekCurrent)
	if err != nil {
		return errors.Wrapf(err, "SeekRelative error: offset %d", offset)
	}
	return nil
}

func (r *Reader) SeekAbsolute(offset int64) error {
	if offset < 0 {
		return InvalidSeekError{Offset: offset, Whence: io.SeekStart}
	}
	_, err := r.source.Seek(offset, io.SeekStart)
	if err != nil {
		return errors.Wrapf(err, "SeekAbsolute error: offset %d", offset)
	}
	return nil
}

func (r *Reader) Pos() (int64, error) {
	pos, err := r.source.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.Wrap(err, "Pos error")
	}
	return pos, nil
}

// CheckCount validates a declared element count against the configured limit
// before the caller allocates for it.
func (r *Reader) CheckCount(field string, count int64) error {
	if count < 0 {
		return LimitExceededError{Field: field, Count: count}
	}
	if r.Limits.MaxCount > 0 && count > int64(r.Limits.MaxCount) {
		return LimitExceededError{Field: field, Count: count, Limit: int64(r.Limits.MaxCount)}
	}
	return nil
}

func (r *Reader) CheckRows(count uint32) error {
	if r.Limits.MaxRows > 0 && count > r.Limits.MaxRows {
		return LimitExceededError{Field: "row count", Count: int64(count), Limit: int64(r.Limits.MaxRows)}
	}
	return nil
}
