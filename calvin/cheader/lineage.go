package cheader

import (
	"github.com/samber/lo"

	"affy-calvin/calvin/cmeta"
	"affy-calvin/ds"
)

// Flatten lists the header and its lineage in depth-first pre-order: a header
// comes before its parents and parents keep their declared order.
func (r *DataHeader) Flatten() []*DataHeader {
	headers := make([]*DataHeader, 0)
	stack := ds.NewStack[*DataHeader]()
	stack.Push(r)
	for stack.Len() > 0 {
		header, _ := stack.Pop()
		headers = append(headers, header)
		for i := len(header.ParentHeaders) - 1; i >= 0; i-- {
			stack.Push(&header.ParentHeaders[i])
		}
	}
	return headers
}

// FindMetadataByName searches the header's own metadata, then every parent
// depth-first in declared order. The first match in that walk wins.
func (r *DataHeader) FindMetadataByName(name string) (cmeta.Triplet, bool) {
	for _, header := range r.Flatten() {
		if triplet, ok := cmeta.FindByName(header.Metadata, name); ok {
			return triplet, true
		}
	}
	return cmeta.Triplet{}, false
}

// Depth is 1 for a header without parents.
func (r *DataHeader) Depth() int {
	if len(r.ParentHeaders) == 0 {
		return 1
	}
	return 1 + lo.Max(
		lo.Map(r.ParentHeaders, func(parent DataHeader, _ int) int {
			return parent.Depth()
		}),
	)
}

func (r *DataHeader) FindParentByDataTypeID(dataTypeID string) (*DataHeader, bool) {
	return lo.Find(r.Flatten()[1:], func(header *DataHeader) bool {
		return header.DataTypeID.String() == dataTypeID
	})
}
