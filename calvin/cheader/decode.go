package cheader

import (
	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cstring"
)

func createMagicNumberReadFunction(reader *cbytes.Reader) cbytes.ReadFunction {
	return func() (any, error) {
		magicNumber, err := reader.ReadUint8()
		if err != nil {
			return nil, err
		}
		if magicNumber != MagicNumber {
			return nil, BadMagicError{Actual: magicNumber}
		}
		return magicNumber, nil
	}
}

func createVersionReadFunction(reader *cbytes.Reader) cbytes.ReadFunction {
	return func() (any, error) {
		version, err := reader.ReadUint8()
		if err != nil {
			return nil, err
		}
		if version != Version {
			return nil, UnsupportedVersionError{Actual: version}
		}
		return version, nil
	}
}

// DecodeFileHeader stops right after the first byte when the magic number is
// wrong.
func DecodeFileHeader(reader *cbytes.Reader) (*FileHeader, error) {
	instructions := []cbytes.Instruction{
		{Key: "magic_number", ReadFunction: createMagicNumberReadFunction(reader)},
		{Key: "version", ReadFunction: createVersionReadFunction(reader)},
		{Key: "data_group_count", ReadFunction: cbytes.CreateInt32ReadFunction(reader)},
		{Key: "first_group_position", ReadFunction: cbytes.CreateUint32ReadFunction(reader)},
	}
	header, err := cbytes.ExecuteInstructions[FileHeader](instructions)
	if err != nil {
		return nil, errors.Wrap(err, "DecodeFileHeader error")
	}
	if err := reader.CheckCount("data group count", int64(header.DataGroupCount)); err != nil {
		return nil, errors.Wrap(err, "DecodeFileHeader error")
	}
	return header, nil
}

// DecodeDataHeader reads one data header and, recursively, its parents.
// Recursion stops with a LimitExceededError past reader.Limits.HeaderDepth.
func DecodeDataHeader(reader *cbytes.Reader) (*DataHeader, error) {
	return decodeDataHeader(reader, 1)
}

func decodeDataHeader(reader *cbytes.Reader, depth int) (*DataHeader, error) {
	if limit := reader.Limits.HeaderDepth(); depth > limit {
		err := cbytes.LimitExceededError{Field: "header depth", Count: int64(depth), Limit: int64(limit)}
		return nil, errors.Wrap(err, "DecodeDataHeader error")
	}

	header := DataHeader{}
	var err error
	if header.DataTypeID, err = cstring.DecodeASCII(reader); err != nil {
		return nil, errors.Wrap(err, "DecodeDataHeader error: data type id")
	}
	if header.UniqueFileID, err = cstring.DecodeASCII(reader); err != nil {
		return nil, errors.Wrap(err, "DecodeDataHeader error: unique file id")
	}
	if header.DateTime, err = cstring.DecodeWide(reader); err != nil {
		return nil, errors.Wrap(err, "DecodeDataHeader error: date time")
	}
	if header.Locale, err = cstring.DecodeWide(reader); err != nil {
		return nil, errors.Wrap(err, "DecodeDataHeader error: locale")
	}
	if header.Metadata, err = cmeta.DecodeBlock(reader); err != nil {
		return nil, errors.Wrapf(err, `DecodeDataHeader error: metadata of "%s"`, header.DataTypeID)
	}

	parentCount, err := reader.ReadInt32()
	if err != nil {
		return nil, errors.Wrap(err, "DecodeDataHeader error: read parent count")
	}
	if err := reader.CheckCount("parent header count", int64(parentCount)); err != nil {
		return nil, errors.Wrap(err, "DecodeDataHeader error")
	}
	header.ParentHeaders = make([]DataHeader, 0, min(int64(parentCount), cbytes.PreallocCeiling))
	for i := int32(0); i < parentCount; i++ {
		parent, err := decodeDataHeader(reader, depth+1)
		if err != nil {
			return nil, errors.Wrapf(err, "DecodeDataHeader error: parent %d at depth %d", i, depth)
		}
		header.ParentHeaders = append(header.ParentHeaders, *parent)
	}
	return &header, nil
}
