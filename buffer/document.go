// Package buffer models source files as line-addressable documents.
//
// Documents serve two roles: the file being edited, and throwaway scratch
// buffers used to parse other workspace files during a lookup. A scratch
// document is owned by exactly one lookup and must be released on every exit
// path; Release is idempotent so a single defer covers all branches.
package buffer

import (
	"os"
	"strings"

	"github.com/codetrellis/implgen/errors"
)

// Document is a line-addressable view of a source file
type Document struct {
	path     string
	lines    []string
	released bool
}

// Load reads a file fully into a new document.
// Returns ErrFileNotFound if the file is unreadable and ErrEmptyBuffer if it
// is zero-length; callers treat the empty case as degraded, not fatal.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrFileNotFound, "%s", path)
		}
		return nil, errors.Wrapf(errors.ErrResourceUnavailable, "read %s: %v", path, err)
	}

	if len(content) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyBuffer, "%s", path)
	}

	return &Document{
		path:  path,
		lines: strings.Split(string(content), "\n"),
	}, nil
}

// FromLines creates an in-memory document, detached from any file
func FromLines(lines []string) *Document {
	copied := make([]string, len(lines))
	copy(copied, lines)
	return &Document{lines: copied}
}

// Path returns the file the document was loaded from, or "" for in-memory documents
func (d *Document) Path() string {
	return d.path
}

// LineCount returns the number of lines in the document
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Lines returns a copy of the document's lines
func (d *Document) Lines() []string {
	copied := make([]string, len(d.lines))
	copy(copied, d.lines)
	return copied
}

// Line returns a single zero-based line, or "" when out of range
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Bytes returns the document content as a byte slice for parsing
func (d *Document) Bytes() []byte {
	return []byte(strings.Join(d.lines, "\n"))
}

// InsertLines inserts lines immediately after the zero-based line afterLine.
// afterLine == -1 inserts at the top of the document.
func (d *Document) InsertLines(afterLine int, lines []string) error {
	if d.released {
		return errors.Wrap(errors.ErrResourceUnavailable, "document already released")
	}
	if afterLine < -1 || afterLine >= len(d.lines) {
		return errors.Newf("insert position %d out of range (document has %d lines)", afterLine, len(d.lines))
	}

	at := afterLine + 1
	updated := make([]string, 0, len(d.lines)+len(lines))
	updated = append(updated, d.lines[:at]...)
	updated = append(updated, lines...)
	updated = append(updated, d.lines[at:]...)
	d.lines = updated
	return nil
}

// WriteBack persists the document to the file it was loaded from
func (d *Document) WriteBack() error {
	if d.path == "" {
		return errors.New("document has no backing file")
	}
	if d.released {
		return errors.Wrap(errors.ErrResourceUnavailable, "document already released")
	}
	if err := os.WriteFile(d.path, d.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", d.path)
	}
	return nil
}

// Release frees the document's content. Safe to call more than once and on
// every exit path; subsequent mutation attempts fail rather than corrupt state.
func (d *Document) Release() {
	if d == nil || d.released {
		return
	}
	d.lines = nil
	d.released = true
}

// Released reports whether the document has been released
func (d *Document) Released() bool {
	return d.released
}
