package formatter

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter writes the migration preview as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the migrations in markdown format
func (f *MarkdownFormatter) Format(files []File) error {
	_, _ = fmt.Fprintln(f.writer, "# Migrations")
	_, _ = fmt.Fprintln(f.writer)

	if len(files) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Creation order")
		_, _ = fmt.Fprintln(f.writer)
		for i, file := range files {
			_, _ = fmt.Fprintf(f.writer, "%d. %s\n", i+1, file.Table)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	for _, file := range files {
		if err := f.formatFile(file); err != nil {
			return err
		}
	}
	return nil
}

func (f *MarkdownFormatter) formatFile(file File) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", file.Table)
	_, _ = fmt.Fprintf(f.writer, "`%s`\n\n", file.Name)
	_, _ = fmt.Fprintln(f.writer, "```php")
	_, _ = io.WriteString(f.writer, strings.TrimRight(file.Content, "\n"))
	_, err := fmt.Fprint(f.writer, "\n```\n\n")
	return err
}
