package exports

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRange means the Range header could not be parsed.
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnsatisfiable means the range lies outside the file.
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// ByteRange is one resolved byte range within a file of known size.
type ByteRange struct {
	Start int64
	End   int64 // inclusive
	Size  int64
}

func (r ByteRange) ContentLength() int64 {
	return r.End - r.Start + 1
}

func (r ByteRange) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Size)
}

// ParseRange resolves a single-range Range header against size.
// Multi-range requests are rejected; players send one range at a time.
func ParseRange(header string, size int64) (ByteRange, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, ErrInvalidRange
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return ByteRange{}, ErrInvalidRange
	}
	dash := strings.Index(spec, "-")
	if dash < 0 {
		return ByteRange{}, ErrInvalidRange
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	var start, end int64
	switch {
	case startStr == "" && endStr == "":
		return ByteRange{}, ErrInvalidRange
	case startStr == "":
		// Suffix range: the last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return ByteRange{}, ErrInvalidRange
		}
		if n > size {
			n = size
		}
		start, end = size-n, size-1
	default:
		var err error
		start, err = strconv.ParseInt(startStr, 10, 64)
		if err != nil || start < 0 {
			return ByteRange{}, ErrInvalidRange
		}
		if endStr == "" {
			end = size - 1
		} else {
			end, err = strconv.ParseInt(endStr, 10, 64)
			if err != nil || end < start {
				return ByteRange{}, ErrInvalidRange
			}
			if end >= size {
				end = size - 1
			}
		}
	}
	if start >= size {
		return ByteRange{}, ErrUnsatisfiable
	}
	return ByteRange{Start: start, End: end, Size: size}, nil
}
