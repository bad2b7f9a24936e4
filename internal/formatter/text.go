package formatter

import (
	"fmt"
	"io"
)

// TextFormatter writes the migration preview as plain text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every migration preceded by its table and file name
func (f *TextFormatter) Format(files []File) error {
	for _, file := range files {
		_, _ = fmt.Fprintf(f.writer, "Table name: %s  Migration File: %s\n\n", file.Table, file.Name)
		_, _ = io.WriteString(f.writer, file.Content)
		if _, err := io.WriteString(f.writer, "\n\n\n"); err != nil {
			return err
		}
	}
	return nil
}
