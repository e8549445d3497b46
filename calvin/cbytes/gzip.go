package cbytes

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

var GzipMagicBytes = []byte{0x1f, 0x8b}

// gzipSource gives a gzip stream the seek semantics of the uncompressed
// file. Forward seeks inflate and discard; backward seeks restart from the
// beginning of the compressed source.
type gzipSource struct {
	compressed io.ReadSeeker
	inflater   *gzip.Reader
	pos        int64
	// set when a seek went past the end of the uncompressed data
	pastEnd bool
}

func IsGzip(bs []byte) bool {
	return len(bs) >= len(GzipMagicBytes) && bytes.Equal(bs[:len(GzipMagicBytes)], GzipMagicBytes)
}

func NewGzipReader(compressed io.ReadSeeker) (*Reader, error) {
	inflater, err := gzip.NewReader(compressed)
	if err != nil {
		return nil, errors.Wrap(err, "NewGzipReader error")
	}
	source := &gzipSource{
		compressed: compressed,
		inflater:   inflater,
	}
	return NewReader(source), nil
}

func (r *gzipSource) Read(p []byte) (int, error) {
	if r.pastEnd {
		return 0, io.EOF
	}
	n, err := r.inflater.Read(p)
	r.pos += int64(n)
	return n, err
}

func (r *gzipSource) Seek(offset int64, whence int) (int64, error) {
	target := int64(0)
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	default:
		return r.pos, InvalidSeekError{Offset: offset, Whence: whence}
	}
	if target < 0 {
		return r.pos, InvalidSeekError{Offset: offset, Whence: whence}
	}
	if target == r.pos {
		return r.pos, nil
	}
	if target < r.pos {
		if err := r.rewind(); err != nil {
			return r.pos, err
		}
	}

	skipped, err := io.CopyN(io.Discard, r.inflater, target-r.pos)
	r.pos += skipped
	if err == io.EOF {
		r.pastEnd = true
		r.pos = target
		return r.pos, nil
	}
	if err != nil {
		return r.pos, errors.Wrap(err, "gzipSource.Seek error")
	}
	return r.pos, nil
}

func (r *gzipSource) rewind() error {
	if _, err := r.compressed.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "gzipSource.rewind error")
	}
	if err := r.inflater.Reset(r.compressed); err != nil {
		return errors.Wrap(err, "gzipSource.rewind error")
	}
	r.pos = 0
	r.pastEnd = false
	return nil
}
