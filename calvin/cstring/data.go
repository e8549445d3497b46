// Package cstring decodes the two Calvin string encodings: narrow strings of
// raw 8-bit bytes and wide strings of big-endian 16-bit code units, each with
// an int32 length prefix and a fixed-width variant used in dataset rows.
package cstring

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

type (
	// ASCII is a narrow string. Bytes are kept verbatim; a non-positive length
	// prefix decodes to an absent value (Present is false, Value is nil).
	ASCII struct {
		Value   []byte `json:"value,omitempty"`
		Present bool   `json:"present"`
	}
	// Wide is a wide string kept as host-order 16-bit code units.
	Wide struct {
		Units   []uint16 `json:"units,omitempty"`
		Present bool     `json:"present"`
	}
)

const (
	LengthPrefixSize = 4
	WideUnitSize     = 2
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func NewASCII(s string) ASCII {
	if len(s) == 0 {
		return ASCII{}
	}
	return ASCII{Value: []byte(s), Present: true}
}

func NewWide(s string) Wide {
	if len(s) == 0 {
		return Wide{}
	}
	return Wide{Units: utf16.Encode([]rune(s)), Present: true}
}

func (r ASCII) IsAbsent() bool {
	return !r.Present
}

func (r ASCII) Len() int {
	return len(r.Value)
}

func (r ASCII) String() string {
	return string(r.Value)
}

func (r Wide) IsAbsent() bool {
	return !r.Present
}

func (r Wide) Len() int {
	return len(r.Units)
}

// Bytes returns the code units in their on-disk big-endian layout.
func (r Wide) Bytes() []byte {
	bs := make([]byte, 0, len(r.Units)*WideUnitSize)
	for _, unit := range r.Units {
		bs = append(bs, byte(unit>>8), byte(unit))
	}
	return bs
}

// String transcodes the code units to UTF-8. Unpaired surrogates become
// U+FFFD.
func (r Wide) String() string {
	if r.IsAbsent() {
		return ""
	}
	decoded, err := utf16BE.NewDecoder().Bytes(r.Bytes())
	if err != nil {
		return string(utf16.Decode(r.Units))
	}
	return string(decoded)
}

func (r Wide) Equal(s string) bool {
	return r.String() == s
}
