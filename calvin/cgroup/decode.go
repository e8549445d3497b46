// Package cgroup decodes data group headers. Groups are chained through
// absolute file offsets; the order they are stored in means nothing.
package cgroup

import (
	"github.com/pkg/errors"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cstring"
)

type (
	Group struct {
		NextGroupPosition    uint32       `json:"next_group_position"`
		FirstDataSetPosition uint32       `json:"first_data_set_position"`
		DataSetCount         int32        `json:"data_set_count"`
		Name                 cstring.Wide `json:"name"`
	}
)

// NoNextGroup is stored in NextGroupPosition by the last group of a chain.
const NoNextGroup = uint32(0)

func Decode(reader *cbytes.Reader) (*Group, error) {
	instructions := []cbytes.Instruction{
		{Key: "next_group_position", ReadFunction: cbytes.CreateUint32ReadFunction(reader)},
		{Key: "first_data_set_position", ReadFunction: cbytes.CreateUint32ReadFunction(reader)},
		{Key: "data_set_count", ReadFunction: cbytes.CreateInt32ReadFunction(reader)},
	}
	group, err := cbytes.ExecuteInstructions[Group](instructions)
	if err != nil {
		return nil, errors.Wrap(err, "cgroup.Decode error")
	}
	if err := reader.CheckCount("data set count", int64(group.DataSetCount)); err != nil {
		return nil, errors.Wrap(err, "cgroup.Decode error")
	}
	if group.Name, err = cstring.DecodeWide(reader); err != nil {
		return nil, errors.Wrap(err, "cgroup.Decode error: name")
	}
	return group, nil
}

func (r Group) HasNext() bool {
	return r.NextGroupPosition != NoNextGroup
}
