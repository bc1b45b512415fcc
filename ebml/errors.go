package ebml

import (
	"fmt"
	"strings"
)

// An UnmatchedCloseError describes an EndTag that does not close the
// innermost open tag. ExpectedID is nil when no tag was open.
type UnmatchedCloseError struct {
	TagID      uint64
	ExpectedID *uint64
}

func (e *UnmatchedCloseError) Error() string {
	if e.ExpectedID == nil {
		return fmt.Sprintf("ebml: closing tag 0x%x with no open tag", e.TagID)
	}
	return fmt.Sprintf("ebml: closing tag 0x%x, expected 0x%x", e.TagID, *e.ExpectedID)
}

// A SizeError describes a tag whose size cannot be encoded as a vint.
type SizeError struct {
	TagID uint64
	Size  uint64
	Err   error
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("ebml: tag 0x%x size %d: %v", e.TagID, e.Size, e.Err)
}

func (e *SizeError) Unwrap() error { return e.Err }

// A WriteError wraps a failed write or flush of the destination.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "ebml: write failed: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }

// An UnclosedTagsError lists the tags still open when a TagWriter is closed,
// innermost first.
type UnclosedTagsError struct {
	IDs []uint64
}

func (e *UnclosedTagsError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("0x%x", id)
	}
	return "ebml: unclosed tags " + strings.Join(ids, ", ")
}
