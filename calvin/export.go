package calvin

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"affy-calvin/calvin/cheader"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cset"
	"affy-calvin/calvin/cstring"
)

const (
	KeyFileHeader = "FileHeader"
	KeyDataHeader = "DataHeader"
	KeyDataGroup  = "DataGroup"
)

// ToLinkedHashMap shapes a decoded file for JSON consumers, keeping storage
// order everywhere. In reduced mode metadata is name -> stringified value;
// otherwise name -> {"Value": typed value, "Type": mime type}.
func ToLinkedHashMap(file *File, cfg Config) (*orderedmap.OrderedMap, error) {
	exporter := exporter{
		reduced: cfg.Reduced,
		logger:  cfg.logger(),
	}
	lhm := orderedmap.New()
	lhm.Set(KeyFileHeader, exporter.fileHeader(file.FileHeader))

	dataHeader, err := exporter.dataHeader(&file.DataHeader)
	if err != nil {
		return nil, errors.Wrap(err, "ToLinkedHashMap error")
	}
	lhm.Set(KeyDataHeader, dataHeader)

	groups := orderedmap.New()
	for i := range file.DataGroups {
		group, err := exporter.dataGroup(&file.DataGroups[i])
		if err != nil {
			return nil, errors.Wrapf(err, "ToLinkedHashMap error: group %d", i)
		}
		setFirst(groups, file.DataGroups[i].Name(), group)
	}
	lhm.Set(KeyDataGroup, groups)
	return lhm, nil
}

type exporter struct {
	reduced bool
	logger  log.Logger
}

func (r exporter) fileHeader(header cheader.FileHeader) *orderedmap.OrderedMap {
	lhm := orderedmap.New()
	lhm.Set("MagicNumber", header.MagicNumber)
	lhm.Set("Version", header.Version)
	lhm.Set("NumberDataGroups", header.DataGroupCount)
	lhm.Set("FirstGroupPosition", header.FirstGroupPosition)
	return lhm
}

func (r exporter) dataHeader(header *cheader.DataHeader) (*orderedmap.OrderedMap, error) {
	metadata, err := r.metadata(header.Metadata)
	if err != nil {
		return nil, err
	}
	parents := make([]*orderedmap.OrderedMap, 0, len(header.ParentHeaders))
	for i := range header.ParentHeaders {
		parent, err := r.dataHeader(&header.ParentHeaders[i])
		if err != nil {
			return nil, errors.Wrapf(err, "parent header %d", i)
		}
		parents = append(parents, parent)
	}

	lhm := orderedmap.New()
	lhm.Set("DataTypeID", header.DataTypeID.String())
	lhm.Set("UniqueFileID", header.UniqueFileID.String())
	lhm.Set("DateTime", header.DateTime.String())
	lhm.Set("Locale", header.Locale.String())
	lhm.Set("NumberOfNameValueType", len(header.Metadata))
	lhm.Set("NVTList", metadata)
	lhm.Set("NumberOfParentHeaders", len(header.ParentHeaders))
	lhm.Set("ParentHeaders", parents)
	return lhm, nil
}

func (r exporter) metadata(triplets []cmeta.Triplet) (*orderedmap.OrderedMap, error) {
	lhm := orderedmap.New()
	for _, triplet := range triplets {
		value, err := cmeta.Decode(triplet)
		if errors.As(err, &cmeta.UnknownMimeTypeError{}) {
			level.Warn(r.logger).Log(
				"msg", "unknown metadata type",
				"name", triplet.Name.String(),
				"err", err,
			)
		} else if err != nil {
			return nil, err
		}

		if r.reduced {
			setFirst(lhm, triplet.Name.String(), value.String())
			continue
		}
		entry := orderedmap.New()
		entry.Set("Value", value.Data)
		entry.Set("Type", triplet.MimeType.String())
		setFirst(lhm, triplet.Name.String(), entry)
	}
	return lhm, nil
}

func (r exporter) dataGroup(group *DataGroup) (*orderedmap.OrderedMap, error) {
	dataSets := orderedmap.New()
	for _, dataSet := range group.DataSets {
		lhm, err := r.dataSet(dataSet)
		if err != nil {
			return nil, errors.Wrapf(err, `data set "%s"`, dataSet.Name)
		}
		setFirst(dataSets, dataSet.Name.String(), lhm)
	}

	lhm := orderedmap.New()
	lhm.Set("Name", group.Name())
	lhm.Set("Datasets", dataSets)
	return lhm, nil
}

func (r exporter) dataSet(dataSet *cset.DataSet) (*orderedmap.OrderedMap, error) {
	metadata, err := r.metadata(dataSet.Metadata)
	if err != nil {
		return nil, err
	}
	columns := orderedmap.New()
	for i, column := range dataSet.Rows {
		setFirst(columns, dataSet.Columns[i].Name.String(), ColumnData(column))
	}

	lhm := orderedmap.New()
	lhm.Set("Name", dataSet.Name.String())
	lhm.Set("NVTList", metadata)
	lhm.Set("DataColumns", columns)
	if !r.reduced {
		descriptors := orderedmap.New()
		descriptors.Set("Name", dataSet.ColumnNames())
		descriptors.Set("ValueType", lo.Map(dataSet.Columns, func(descriptor cset.ColumnDescriptor, _ int) string {
			return descriptor.Type.String()
		}))
		descriptors.Set("Size", lo.Map(dataSet.Columns, func(descriptor cset.ColumnDescriptor, _ int) int32 {
			return descriptor.Width
		}))
		lhm.Set("DataColumnNTS", descriptors)
	}
	return lhm, nil
}

// ColumnData returns a JSON friendly copy of a column: numbers stay numbers
// (uint8 included) and strings are transcoded, absent ones as "".
func ColumnData(column cset.Column) any {
	switch values := column.Data().(type) {
	case []uint8:
		return lo.Map(values, func(value uint8, _ int) uint16 {
			return uint16(value)
		})
	case []cstring.ASCII:
		return lo.Map(values, func(value cstring.ASCII, _ int) string {
			return value.String()
		})
	case []cstring.Wide:
		return lo.Map(values, func(value cstring.Wide, _ int) string {
			return value.String()
		})
	default:
		return values
	}
}

// setFirst keeps the first value for a repeated key, matching lookup
// semantics.
func setFirst(lhm *orderedmap.OrderedMap, key string, value any) {
	if _, ok := lhm.Get(key); ok {
		return
	}
	lhm.Set(key, value)
}
