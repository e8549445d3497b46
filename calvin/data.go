// Package calvin reads Affymetrix Generic (Calvin) files: a file header, a
// data header with its lineage of parent headers, and a chain of data groups
// holding typed datasets.
package calvin

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/samber/lo"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cgroup"
	"affy-calvin/calvin/cheader"
	"affy-calvin/calvin/cset"
)

type (
	File struct {
		FileHeader cheader.FileHeader `json:"file_header"`
		DataHeader cheader.DataHeader `json:"data_header"`
		// DataGroups are in chain order, not storage order.
		DataGroups []DataGroup `json:"data_groups"`
	}
	DataGroup struct {
		Group    cgroup.Group    `json:"group"`
		DataSets []*cset.DataSet `json:"data_sets"`
	}
	Config struct {
		Limits cbytes.Limits `yaml:"limits"`
		// Reduced renders metadata as stringified values only when exporting.
		Reduced bool       `yaml:"reduced"`
		Logger  log.Logger `yaml:"-"`
	}
)

type (
	// BrokenGroupChainError reports a group pointer of zero while the file
	// header still promises more groups.
	BrokenGroupChainError struct {
		Index    int
		Declared int32
	}
)

func (r BrokenGroupChainError) Error() string {
	return fmt.Sprintf("group chain ends before group %d of %d", r.Index, r.Declared)
}

func DefaultConfig() Config {
	return Config{
		Limits:  cbytes.DefaultLimits(),
		Reduced: true,
		Logger:  log.NewNopLogger(),
	}
}

func (r Config) logger() log.Logger {
	if r.Logger == nil {
		return log.NewNopLogger()
	}
	return r.Logger
}

func (r *File) FindGroup(name string) (*DataGroup, bool) {
	for i := range r.DataGroups {
		if r.DataGroups[i].Group.Name.Equal(name) {
			return &r.DataGroups[i], true
		}
	}
	return nil, false
}

func (r *DataGroup) FindDataSet(name string) (*cset.DataSet, bool) {
	return lo.Find(r.DataSets, func(dataSet *cset.DataSet) bool {
		return dataSet.Name.Equal(name)
	})
}

func (r *DataGroup) Name() string {
	return r.Group.Name.String()
}
