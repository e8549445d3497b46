package cel

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"affy-calvin/calvin"
	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cset"
)

func IsMultiChannel(file *calvin.File) bool {
	return file.DataHeader.DataTypeID.String() == MultiChannelDataTypeID
}

// ChannelCount counts the groups holding an intensity dataset.
func ChannelCount(file *calvin.File) int {
	channels := lo.Filter(file.DataGroups, func(group calvin.DataGroup, _ int) bool {
		_, ok := group.FindDataSet(DataSetIntensity)
		return ok
	})
	return len(channels)
}

func channel(file *calvin.File, index int) (*calvin.DataGroup, error) {
	if index < 0 || index >= len(file.DataGroups) {
		return nil, ChannelNotFoundError{Index: index, Count: len(file.DataGroups)}
	}
	return &file.DataGroups[index], nil
}

func ChannelName(file *calvin.File, index int) (string, error) {
	group, err := channel(file, index)
	if err != nil {
		return "", errors.Wrap(err, "ChannelName error")
	}
	return group.Name(), nil
}

func ChannelNames(file *calvin.File) []string {
	return lo.Map(file.DataGroups, func(group calvin.DataGroup, _ int) string {
		return group.Name()
	})
}

func dataSet(file *calvin.File, index int, name string) (*cset.DataSet, error) {
	group, err := channel(file, index)
	if err != nil {
		return nil, err
	}
	found, ok := group.FindDataSet(name)
	if !ok || len(found.Rows) == 0 {
		return nil, DataSetNotFoundError{Channel: group.Name(), DataSet: name}
	}
	return found, nil
}

func float32Column(file *calvin.File, index int, name string) ([]float64, error) {
	found, err := dataSet(file, index, name)
	if err != nil {
		return nil, err
	}
	column, ok := found.Rows[0].(*cset.NumericColumn[float32])
	if !ok {
		return nil, errors.Errorf(`data set "%s" column 0 is %s, not Float32`, name, found.Rows[0].Type())
	}
	return column.Float64s(), nil
}

func Intensities(file *calvin.File, index int) ([]float64, error) {
	values, err := float32Column(file, index, DataSetIntensity)
	if err != nil {
		return nil, errors.Wrap(err, "Intensities error")
	}
	return values, nil
}

func StdDev(file *calvin.File, index int) ([]float64, error) {
	values, err := float32Column(file, index, DataSetStdDev)
	if err != nil {
		return nil, errors.Wrap(err, "StdDev error")
	}
	return values, nil
}

func Pixels(file *calvin.File, index int) ([]float64, error) {
	found, err := dataSet(file, index, DataSetPixel)
	if err != nil {
		return nil, errors.Wrap(err, "Pixels error")
	}
	column, ok := found.Rows[0].(*cset.NumericColumn[int16])
	if !ok {
		return nil, errors.Errorf("Pixels error: column 0 is %s, not Int16", found.Rows[0].Type())
	}
	return column.Float64s(), nil
}

func points(file *calvin.File, index int, name string) ([]Point, error) {
	found, err := dataSet(file, index, name)
	if err != nil {
		return nil, err
	}
	if len(found.Rows) < 2 {
		return nil, errors.Errorf(`data set "%s" needs two columns; got %d`, name, len(found.Rows))
	}
	xs, okX := cset.Values[int16](found.Rows[0])
	ys, okY := cset.Values[int16](found.Rows[1])
	if !okX || !okY {
		return nil, errors.Errorf(`data set "%s" coordinates are not Int16`, name)
	}
	return lo.Map(lo.Zip2(xs, ys), func(pair lo.Tuple2[int16, int16], _ int) Point {
		return Point{X: pair.A, Y: pair.B}
	}), nil
}

func Outliers(file *calvin.File, index int) ([]Point, error) {
	outliers, err := points(file, index, DataSetOutlier)
	if err != nil {
		return nil, errors.Wrap(err, "Outliers error")
	}
	return outliers, nil
}

func Masks(file *calvin.File, index int) ([]Point, error) {
	masks, err := points(file, index, DataSetMask)
	if err != nil {
		return nil, errors.Wrap(err, "Masks error")
	}
	return masks, nil
}

// GetDimensions looks the array size up in the data header lineage.
func GetDimensions(file *calvin.File) (Dimensions, error) {
	rows, err := dimension(file, KeyRows)
	if err != nil {
		return Dimensions{}, errors.Wrap(err, "GetDimensions error")
	}
	cols, err := dimension(file, KeyCols)
	if err != nil {
		return Dimensions{}, errors.Wrap(err, "GetDimensions error")
	}
	return Dimensions{Rows: rows, Cols: cols}, nil
}

func dimension(file *calvin.File, key string) (int, error) {
	triplet, ok := file.DataHeader.FindMetadataByName(key)
	if !ok {
		return 0, MissingDimensionError{Key: key}
	}
	value, err := cmeta.Decode(triplet)
	if err != nil {
		return 0, err
	}
	n, ok := value.Int64()
	if !ok {
		return 0, errors.Errorf(`dimension "%s" is %s, not an integer`, key, value.Kind)
	}
	return int(n), nil
}

// ApplyMasks sets values[x + rows*y] to NaN for every point and returns how
// many points fell inside values.
func ApplyMasks(values []float64, rows int, points []Point) int {
	applied := 0
	for _, point := range points {
		index := int(point.X) + rows*int(point.Y)
		if index < 0 || index >= len(values) {
			continue
		}
		values[index] = math.NaN()
		applied++
	}
	return applied
}
