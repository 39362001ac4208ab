// Package output renders result sequences as streaming JSON or
// tab-separated text without materializing the whole sequence in memory.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ArrayWriter emits a JSON array one element at a time: the opening
// bracket up front, comma separators between elements as the sequence
// advances, and the closing bracket on Close. A very large collection
// therefore streams with one element in memory at a time.
//
// Output framing, byte for byte: "[\n", each element indented and
// newline-terminated, ",\n" between elements, "]\n" at the end. An empty
// sequence produces exactly "[\n]\n".
type ArrayWriter struct {
	w      io.Writer
	opened bool
	count  int
}

// NewArrayWriter creates an array writer over w. Nothing is written
// until the first Write or Close.
func NewArrayWriter(w io.Writer) *ArrayWriter {
	return &ArrayWriter{w: w}
}

// Write serializes one element into the array.
func (a *ArrayWriter) Write(v any) error {
	if err := a.open(); err != nil {
		return err
	}
	if a.count > 0 {
		if _, err := io.WriteString(a.w, ",\n"); err != nil {
			return err
		}
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal array element: %w", err)
	}
	if _, err := a.w.Write(append(b, '\n')); err != nil {
		return err
	}

	a.count++
	return nil
}

// Close terminates the array. It must be called exactly once, after the
// sequence is exhausted.
func (a *ArrayWriter) Close() error {
	if err := a.open(); err != nil {
		return err
	}
	_, err := io.WriteString(a.w, "]\n")
	return err
}

func (a *ArrayWriter) open() error {
	if a.opened {
		return nil
	}
	if _, err := io.WriteString(a.w, "[\n"); err != nil {
		return err
	}
	a.opened = true
	return nil
}

// Table writes tab-separated rows with a leading header row.
type Table struct {
	w io.Writer
}

// NewTable creates a table over w and writes the header row.
func NewTable(w io.Writer, headers ...string) (*Table, error) {
	t := &Table{w: w}
	if err := t.Row(headers...); err != nil {
		return nil, err
	}
	return t, nil
}

// Row writes one tab-separated row.
func (t *Table) Row(cells ...string) error {
	_, err := fmt.Fprintln(t.w, strings.Join(cells, "\t"))
	return err
}
