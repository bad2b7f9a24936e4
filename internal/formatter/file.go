package formatter

import (
	"fmt"
	"time"

	"github.com/tordrt/migrationgen/internal/migration"
)

// File is a rendered migration and its default file name.
type File struct {
	Table   string
	Name    string
	Content string
}

// FileName returns the migration file name for a table, e.g.
// 2024_05_01_000003_create_users_table.php
func FileName(date time.Time, seq int, table string) string {
	return fmt.Sprintf("%s_%06d_create_%s_table.php", date.Format("2006_01_02"), seq, table)
}

// Files renders units in order. Sequence numbers start at zero.
func Files(units []*migration.Unit, opts PHPOptions, now time.Time) []File {
	files := make([]File, 0, len(units))
	for i, u := range units {
		files = append(files, File{
			Table:   u.Table,
			Name:    FileName(now, i, u.Table),
			Content: Render(u, opts),
		})
	}
	return files
}
