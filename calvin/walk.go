package calvin

import (
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cgroup"
	"affy-calvin/calvin/cheader"
	"affy-calvin/calvin/cset"
)

type (
	// Visitor receives each part of a file as soon as it is decoded. Nil
	// callbacks are skipped; an error from any callback aborts the walk.
	Visitor struct {
		OnHeader  func(fileHeader *cheader.FileHeader, dataHeader *cheader.DataHeader) error
		OnGroup   func(index int, group *cgroup.Group) error
		OnDataSet func(group *cgroup.Group, dataSet *cset.DataSet) error
	}
)

// Walk decodes the file header, the data header and then every group by
// following the stored group and dataset offsets. After each dataset the
// reader jumps to its last row position, skipping any trailing padding.
// The walk ends after the declared number of groups or at the first error.
func Walk(reader *cbytes.Reader, cfg Config, visitor Visitor) error {
	reader.Limits = cfg.Limits
	logger := cfg.logger()

	fileHeader, err := cheader.DecodeFileHeader(reader)
	if err != nil {
		return errors.Wrap(err, "Walk error")
	}
	dataHeader, err := cheader.DecodeDataHeader(reader)
	if err != nil {
		return errors.Wrap(err, "Walk error")
	}
	level.Debug(logger).Log(
		"msg", "decoded headers",
		"data_type_id", dataHeader.DataTypeID.String(),
		"groups", fileHeader.DataGroupCount,
		"lineage_depth", dataHeader.Depth(),
	)
	if visitor.OnHeader != nil {
		if err := visitor.OnHeader(fileHeader, dataHeader); err != nil {
			return errors.Wrap(err, "Walk error: header visitor")
		}
	}

	position := fileHeader.FirstGroupPosition
	for i := 0; i < int(fileHeader.DataGroupCount); i++ {
		if position == cgroup.NoNextGroup {
			return errors.Wrap(
				BrokenGroupChainError{Index: i, Declared: fileHeader.DataGroupCount},
				"Walk error",
			)
		}
		group, err := walkGroup(reader, position, i, visitor)
		if err != nil {
			return errors.Wrapf(err, "Walk error: group %d at %d", i, position)
		}
		level.Debug(logger).Log(
			"msg", "decoded group",
			"index", i,
			"name", group.Name.String(),
			"data_sets", group.DataSetCount,
		)
		position = group.NextGroupPosition
	}
	return nil
}

func walkGroup(reader *cbytes.Reader, position uint32, index int, visitor Visitor) (*cgroup.Group, error) {
	if err := reader.SeekAbsolute(int64(position)); err != nil {
		return nil, err
	}
	group, err := cgroup.Decode(reader)
	if err != nil {
		return nil, err
	}
	if visitor.OnGroup != nil {
		if err := visitor.OnGroup(index, group); err != nil {
			return nil, errors.Wrap(err, "group visitor")
		}
	}

	if err := reader.SeekAbsolute(int64(group.FirstDataSetPosition)); err != nil {
		return nil, err
	}
	for j := int32(0); j < group.DataSetCount; j++ {
		dataSet, err := cset.DecodeSchema(reader)
		if err != nil {
			return nil, errors.Wrapf(err, `data set %d of "%s"`, j, group.Name)
		}
		if err := dataSet.ReadRows(reader); err != nil {
			return nil, errors.Wrapf(err, `data set %d of "%s"`, j, group.Name)
		}
		if err := reader.SeekAbsolute(int64(dataSet.LastRowPosition)); err != nil {
			return nil, errors.Wrapf(err, `data set %d of "%s"`, j, group.Name)
		}
		if visitor.OnDataSet != nil {
			if err := visitor.OnDataSet(group, dataSet); err != nil {
				return nil, errors.Wrap(err, "data set visitor")
			}
		}
	}
	return group, nil
}
