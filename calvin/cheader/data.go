// Package cheader decodes the Calvin file header and the recursive data header
// with its lineage of parent headers.
package cheader

import (
	"fmt"

	"affy-calvin/calvin/cmeta"
	"affy-calvin/calvin/cstring"
)

type (
	FileHeader struct {
		MagicNumber        uint8  `json:"magic_number"`
		Version            uint8  `json:"version"`
		DataGroupCount     int32  `json:"data_group_count"`
		FirstGroupPosition uint32 `json:"first_group_position"`
	}
	// DataHeader owns its metadata and the whole subtree of parent headers
	// below it.
	DataHeader struct {
		DataTypeID    cstring.ASCII   `json:"data_type_id"`
		UniqueFileID  cstring.ASCII   `json:"unique_file_id"`
		DateTime      cstring.Wide    `json:"date_time"`
		Locale        cstring.Wide    `json:"locale"`
		Metadata      []cmeta.Triplet `json:"metadata"`
		ParentHeaders []DataHeader    `json:"parent_headers"`
	}
)

const (
	MagicNumber = uint8(59)
	Version     = uint8(1)
	// FileHeaderSize is magic, version, group count and first group offset.
	FileHeaderSize = 1 + 1 + 4 + 4
)

type (
	BadMagicError struct {
		Actual uint8
	}
	UnsupportedVersionError struct {
		Actual uint8
	}
)

func (r BadMagicError) Error() string {
	return fmt.Sprintf("invalid magic number: expected %d, got %d", MagicNumber, r.Actual)
}

func (r UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported version: expected %d, got %d", Version, r.Actual)
}
