// Package cbytes is the seekable byte source every Calvin block is decoded from.
//
// All multi-byte values in a Calvin file are big-endian; the reader normalizes
// them regardless of the host byte order.
package cbytes

import (
	"fmt"
	"io"
)

type (
	// Source is what a Reader pulls bytes from: a plain file, an in-memory
	// buffer or a decompressing stream that emulates seeking.
	Source interface {
		io.Reader
		io.Seeker
	}
	// Reader is the single cursor of one parse. It is not safe for concurrent
	// use and must not be shared between parses.
	Reader struct {
		source Source
		Limits Limits
	}
	// Limits caps declared counts before anything is allocated for them.
	// A zero value means unbounded, except MaxHeaderDepth which falls back to
	// DefaultMaxHeaderDepth.
	Limits struct {
		MaxHeaderDepth int    `yaml:"max_header_depth" json:"max_header_depth"`
		MaxCount       int    `yaml:"max_count" json:"max_count"`
		MaxRows        uint32 `yaml:"max_rows" json:"max_rows"`
	}
	Instruction struct {
		Key          string
		ReadFunction ReadFunction
	}
	ReadFunction func() (any, error)
)

const (
	DefaultMaxHeaderDepth = 100
	// PreallocCeiling caps capacity reserved up front for a declared count;
	// slices grow past it only as elements are actually decoded.
	PreallocCeiling = 4096
	// ReadChunkSize is the most ReadBytes allocates ahead of data it has read.
	ReadChunkSize = 64 << 10
)

type (
	TruncatedStreamError struct {
		Wanted int
		Got    int
	}
	InvalidSeekError struct {
		Offset int64
		Whence int
	}
	LimitExceededError struct {
		Field string
		Count int64
		Limit int64
	}
)

func (r TruncatedStreamError) Error() string {
	return fmt.Sprintf("truncated stream: wanted %d bytes; got %d", r.Wanted, r.Got)
}

func (r InvalidSeekError) Error() string {
	return fmt.Sprintf("invalid seek to offset %d (whence %d)", r.Offset, r.Whence)
}

func (r LimitExceededError) Error() string {
	if r.Count < 0 {
		return fmt.Sprintf(`negative count %d for "%s"`, r.Count, r.Field)
	}
	return fmt.Sprintf(`count %d for "%s" exceeds limit %d`, r.Count, r.Field, r.Limit)
}

func DefaultLimits() Limits {
	return Limits{
		MaxHeaderDepth: DefaultMaxHeaderDepth,
	}
}

func (r Limits) HeaderDepth() int {
	if r.MaxHeaderDepth <= 0 {
		return DefaultMaxHeaderDepth
	}
	return r.MaxHeaderDepth
}
