// Package presentation renders service results for the CLI, either as
// indented JSON or as terminal tables.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DefaultMaxCellWidth bounds table cells, measured in terminal columns.
const DefaultMaxCellWidth = 40

// Formatter handles output formatting
type Formatter struct {
	writer       io.Writer
	json         bool
	maxCellWidth int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithJSON switches every method to JSON output.
func WithJSON(enabled bool) Option {
	return func(f *Formatter) { f.json = enabled }
}

// WithMaxCellWidth overrides DefaultMaxCellWidth.
func WithMaxCellWidth(width int) Option {
	return func(f *Formatter) { f.maxCellWidth = width }
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, opts ...Option) *Formatter {
	f := &Formatter{
		writer:       writer,
		maxCellWidth: DefaultMaxCellWidth,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DisableColor forces plain output for the whole process.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// JSON reports whether the formatter emits JSON.
func (f *Formatter) JSON() bool { return f.json }

// Value writes v as indented JSON.
func (f *Formatter) Value(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Created reports a newly issued code.
func (f *Formatter) Created(key, code string) error {
	if f.json {
		return f.Value(map[string]string{key: code})
	}
	_, err := fmt.Fprintln(f.writer, code)
	return err
}

// Done reports a mutation that returns nothing.
func (f *Formatter) Done(msg string) error {
	if f.json {
		return f.Value(map[string]bool{"ok": true})
	}
	_, err := fmt.Fprintln(f.writer, successStyle.Render(msg))
	return err
}

func (f *Formatter) println(s string) error {
	_, err := fmt.Fprintln(f.writer, s)
	return err
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
