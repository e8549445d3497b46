// Package cel reads multichannel CEL files, a Calvin file whose groups are
// channels. Channel i is the i-th group in chain order; its datasets hold
// intensities, standard deviations, pixel counts, outliers and masks.
package cel

import (
	"fmt"
)

type (
	// Point is a feature position on the array; X runs along rows.
	Point struct {
		X int16 `json:"x"`
		Y int16 `json:"y"`
	}
	Dimensions struct {
		Rows int `json:"rows"`
		Cols int `json:"cols"`
	}
)

const (
	MultiChannelDataTypeID = "affymetrix-calvin-multi-intensity"

	DataSetIntensity = "Intensity"
	DataSetStdDev    = "StdDev"
	DataSetPixel     = "Pixel"
	DataSetOutlier   = "Outlier"
	DataSetMask      = "Mask"

	KeyRows = "affymetrix-cel-rows"
	KeyCols = "affymetrix-cel-cols"
)

type (
	ChannelNotFoundError struct {
		Index int
		Count int
	}
	DataSetNotFoundError struct {
		Channel string
		DataSet string
	}
	MissingDimensionError struct {
		Key string
	}
)

func (r ChannelNotFoundError) Error() string {
	return fmt.Sprintf("channel %d not found; file has %d groups", r.Index, r.Count)
}

func (r DataSetNotFoundError) Error() string {
	return fmt.Sprintf(`data set "%s" not found in channel "%s"`, r.DataSet, r.Channel)
}

func (r MissingDimensionError) Error() string {
	return fmt.Sprintf(`dimension "%s" not found in header lineage`, r.Key)
}

func (r Dimensions) Size() int {
	return r.Rows * r.Cols
}
