package cset

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cstring"
)

func DecodeColumnDescriptor(reader *cbytes.Reader) (*ColumnDescriptor, error) {
	name, err := cstring.DecodeWide(reader)
	if err != nil {
		return nil, errors.Wrap(err, "DecodeColumnDescriptor error: name")
	}
	typeCode, err := reader.ReadUint8()
	if err != nil {
		return nil, errors.Wrapf(err, `DecodeColumnDescriptor error: type of "%s"`, name)
	}
	width, err := reader.ReadInt32()
	if err != nil {
		return nil, errors.Wrapf(err, `DecodeColumnDescriptor error: width of "%s"`, name)
	}
	return &ColumnDescriptor{
		Name:  name,
		Type:  ColumnType(typeCode),
		Width: width,
	}, nil
}

// DecodeSchema reads everything of a dataset up to its first row and builds
// one empty typed array per column.
func DecodeSchema(reader *cbytes.Reader) (*DataSet, error) {
	instructions := []cbytes.Instruction{
		{Key: "first_row_position", ReadFunction: cbytes.CreateUint32ReadFunction(reader)},
		{Key: "last_row_position", ReadFunction: cbytes.CreateUint32ReadFunction(reader)},
	}
	dataSet, err := cbytes.ExecuteInstructions[DataSet](instructions)
	if err != nil {
		return nil, errors.Wrap(err, "DecodeSchema error")
	}
	if dataSet.Name, err = cstring.DecodeWide(reader); err != nil {
		return nil, errors.Wrap(err, "DecodeSchema error: name")
	}
	if dataSet.Metadata, err = cmeta.DecodeBlock(reader); err != nil {
		return nil, errors.Wrapf(err, `DecodeSchema error: metadata of "%s"`, dataSet.Name)
	}

	columnCount, err := reader.ReadUint32()
	if err != nil {
		return nil, errors.Wrapf(err, `DecodeSchema error: column count of "%s"`, dataSet.Name)
	}
	if err := reader.CheckCount("column count", int64(columnCount)); err != nil {
		return nil, errors.Wrapf(err, `DecodeSchema error: "%s"`, dataSet.Name)
	}
	dataSet.Columns = make([]ColumnDescriptor, 0, min(int64(columnCount), cbytes.PreallocCeiling))
	for i := uint32(0); i < columnCount; i++ {
		descriptor, err := DecodeColumnDescriptor(reader)
		if err != nil {
			return nil, errors.Wrapf(err, `DecodeSchema error: column %d of "%s"`, i, dataSet.Name)
		}
		dataSet.Columns = append(dataSet.Columns, *descriptor)
	}

	if dataSet.RowCount, err = reader.ReadUint32(); err != nil {
		return nil, errors.Wrapf(err, `DecodeSchema error: row count of "%s"`, dataSet.Name)
	}
	if err := reader.CheckRows(dataSet.RowCount); err != nil {
		return nil, errors.Wrapf(err, `DecodeSchema error: "%s"`, dataSet.Name)
	}

	capacity := int(min(int64(dataSet.RowCount), cbytes.PreallocCeiling))
	dataSet.Rows = make([]Column, 0, len(dataSet.Columns))
	for _, descriptor := range dataSet.Columns {
		column, err := NewColumn(descriptor, capacity)
		if err != nil {
			return nil, errors.Wrapf(err, `DecodeSchema error: "%s"`, dataSet.Name)
		}
		dataSet.Rows = append(dataSet.Rows, column)
	}
	return dataSet, nil
}

// ReadRows decodes RowCount rows, columns inner, into the arrays built by
// DecodeSchema. Rows left by an earlier call are dropped first. On any
// failure every array is emptied; nothing partial is kept.
func (r *DataSet) ReadRows(reader *cbytes.Reader) error {
	if r.hasRows() {
		r.discardRows()
	}
	for row := uint32(0); row < r.RowCount; row++ {
		for i, column := range r.Rows {
			if err := column.decodeCell(reader); err != nil {
				r.discardRows()
				return errors.Wrapf(
					err, `ReadRows error: "%s" row %d column "%s"`,
					r.Name, row, r.Columns[i].Name,
				)
			}
		}
	}
	return nil
}

func (r *DataSet) hasRows() bool {
	for _, column := range r.Rows {
		if column.Len() > 0 {
			return true
		}
	}
	return false
}

func (r *DataSet) discardRows() {
	for _, column := range r.Rows {
		column.reset()
	}
}

// Decode reads the schema and then the rows of one dataset. The reader is
// left after the last decoded row, which is not necessarily
// LastRowPosition.
func Decode(reader *cbytes.Reader) (*DataSet, error) {
	dataSet, err := DecodeSchema(reader)
	if err != nil {
		return nil, err
	}
	if err := dataSet.ReadRows(reader); err != nil {
		return nil, err
	}
	return dataSet, nil
}

func (r *DataSet) FindMetadataByName(name string) (cmeta.Triplet, bool) {
	return cmeta.FindByName(r.Metadata, name)
}

// ColumnByName returns the first column with the given name and its
// descriptor.
func (r *DataSet) ColumnByName(name string) (Column, ColumnDescriptor, bool) {
	for i, descriptor := range r.Columns {
		if descriptor.Name.Equal(name) && i < len(r.Rows) {
			return r.Rows[i], descriptor, true
		}
	}
	return nil, ColumnDescriptor{}, false
}

func (r *DataSet) ColumnNames() []string {
	return lo.Map(r.Columns, func(descriptor ColumnDescriptor, _ int) string {
		return descriptor.Name.String()
	})
}
