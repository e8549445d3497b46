package calvin

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cgroup"
	"affy-calvin/calvin/cheader"
	"affy-calvin/calvin/cset"
)

// Decode walks the whole file and keeps every part of it.
func Decode(reader *cbytes.Reader, cfg Config) (*File, error) {
	file := File{}
	visitor := Visitor{
		OnHeader: func(fileHeader *cheader.FileHeader, dataHeader *cheader.DataHeader) error {
			file.FileHeader = *fileHeader
			file.DataHeader = *dataHeader
			file.DataGroups = make([]DataGroup, 0, min(fileHeader.DataGroupCount, cbytes.PreallocCeiling))
			return nil
		},
		OnGroup: func(_ int, group *cgroup.Group) error {
			file.DataGroups = append(file.DataGroups, DataGroup{Group: *group})
			return nil
		},
		OnDataSet: func(_ *cgroup.Group, dataSet *cset.DataSet) error {
			last := &file.DataGroups[len(file.DataGroups)-1]
			last.DataSets = append(last.DataSets, dataSet)
			return nil
		},
	}
	if err := Walk(reader, cfg, visitor); err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}
	return &file, nil
}

// IsCalvinFile reports whether bs starts with the Calvin magic number and
// version.
func IsCalvinFile(bs []byte) bool {
	return len(bs) >= 2 && bs[0] == cheader.MagicNumber && bs[1] == cheader.Version
}

// NewReader wraps source in a plain reader, or in a decompressing one when
// it starts with the gzip magic bytes.
func NewReader(source io.ReadSeeker) (*cbytes.Reader, error) {
	magic := make([]byte, len(cbytes.GzipMagicBytes))
	n, err := io.ReadFull(source, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.Wrap(err, "NewReader error: sniff")
	}
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "NewReader error: rewind")
	}
	if cbytes.IsGzip(magic[:n]) {
		reader, err := cbytes.NewGzipReader(source)
		if err != nil {
			return nil, errors.Wrap(err, "NewReader error")
		}
		return reader, nil
	}
	return cbytes.NewReader(source), nil
}

func DecodeBytes(bs []byte, cfg Config) (*File, error) {
	reader, err := NewReader(bytes.NewReader(bs))
	if err != nil {
		return nil, err
	}
	return Decode(reader, cfg)
}

// Open decodes a plain or gzip compressed file from disk.
func Open(path string, cfg Config) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Open error")
	}
	defer f.Close()

	reader, err := NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, `Open error: "%s"`, path)
	}
	file, err := Decode(reader, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, `Open error: "%s"`, path)
	}
	return file, nil
}
