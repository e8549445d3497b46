// Package cmeta decodes name/value/type metadata triplets and interprets their
// raw payloads according to the MIME-style type tag.
package cmeta

import (
	"fmt"

	"affy-calvin/calvin/cstring"
)

type (
	// Triplet is one metadata record. Value is opaque until it is decoded with
	// the kind its MimeType names.
	Triplet struct {
		Name     cstring.Wide  `json:"name"`
		Value    cstring.ASCII `json:"value"`
		MimeType cstring.Wide  `json:"mime_type"`
	}
	MimeKind string
	// Value is a decoded metadata payload. Data holds a string for the text
	// kinds and the matching Go scalar (int8, uint8, int16, uint16, int32,
	// uint32, float32) otherwise.
	Value struct {
		Kind MimeKind `json:"kind"`
		Data any      `json:"data"`
	}
)

const (
	MimeKindFloat32   = MimeKind("float32")
	MimeKindPlainText = MimeKind("plain_text")
	MimeKindASCIIText = MimeKind("ascii_text")
	MimeKindInt8      = MimeKind("int8")
	MimeKindUInt8     = MimeKind("uint8")
	MimeKindInt16     = MimeKind("int16")
	MimeKindUInt16    = MimeKind("uint16")
	MimeKindInt32     = MimeKind("int32")
	MimeKindUInt32    = MimeKind("uint32")
)

const (
	MimeTypeFloat32   = "text/x-calvin-float"
	MimeTypePlainText = "text/plain"
	MimeTypeASCIIText = "text/ascii"
	MimeTypeInt8      = "text/x-calvin-integer-8"
	MimeTypeInt16     = "text/x-calvin-integer-16"
	MimeTypeInt32     = "text/x-calvin-integer-32"
	MimeTypeUInt8     = "text/x-calvin-unsigned-integer-8"
	MimeTypeUInt16    = "text/x-calvin-unsigned-integer-16"
	MimeTypeUInt32    = "text/x-calvin-unsigned-integer-32"
)

var (
	mimeKinds = map[string]MimeKind{
		MimeTypeFloat32:   MimeKindFloat32,
		MimeTypePlainText: MimeKindPlainText,
		MimeTypeASCIIText: MimeKindASCIIText,
		MimeTypeInt8:      MimeKindInt8,
		MimeTypeInt16:     MimeKindInt16,
		MimeTypeInt32:     MimeKindInt32,
		MimeTypeUInt8:     MimeKindUInt8,
		MimeTypeUInt16:    MimeKindUInt16,
		MimeTypeUInt32:    MimeKindUInt32,
	}
)

type (
	// UnknownMimeTypeError is not fatal: ClassifyMimeType still returns the
	// Float32 fallback alongside it.
	UnknownMimeTypeError struct {
		MimeType string
	}
	ShortValueError struct {
		Kind   MimeKind
		Length int
	}
)

func (r UnknownMimeTypeError) Error() string {
	return fmt.Sprintf(`unknown MIME type "%s"; falling back to %s`, r.MimeType, MimeKindFloat32)
}

func (r ShortValueError) Error() string {
	return fmt.Sprintf("value of kind %s needs 4 bytes; got %d", r.Kind, r.Length)
}

func (r MimeKind) IsText() bool {
	return r == MimeKindPlainText || r == MimeKindASCIIText
}
