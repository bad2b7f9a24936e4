package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tordrt/migrationgen/internal/migration"
)

var testDate = time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC)

func TestFileName(t *testing.T) {
	assert.Equal(t, "2024_05_01_000000_create_users_table.php", FileName(testDate, 0, "users"))
	assert.Equal(t, "2024_05_01_000012_create_role_user_table.php", FileName(testDate, 12, "role_user"))
}

func TestFiles(t *testing.T) {
	units := []*migration.Unit{
		{Table: "users", Class: "CreateUsersTable"},
		{Table: "posts", Class: "CreatePostsTable"},
	}

	files := Files(units, PHPOptions{}, testDate)
	require.Len(t, files, 2)
	assert.Equal(t, "users", files[0].Table)
	assert.Equal(t, "2024_05_01_000000_create_users_table.php", files[0].Name)
	assert.Equal(t, "2024_05_01_000001_create_posts_table.php", files[1].Name)
	assert.Contains(t, files[1].Content, "class CreatePostsTable extends Migration")
}

func TestTextFormatter(t *testing.T) {
	files := []File{
		{Table: "users", Name: "2024_05_01_000000_create_users_table.php", Content: "<?php users\n"},
		{Table: "posts", Name: "2024_05_01_000001_create_posts_table.php", Content: "<?php posts\n"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(files))

	want := "Table name: users  Migration File: 2024_05_01_000000_create_users_table.php\n\n" +
		"<?php users\n\n\n\n" +
		"Table name: posts  Migration File: 2024_05_01_000001_create_posts_table.php\n\n" +
		"<?php posts\n\n\n\n"
	assert.Equal(t, want, buf.String())
}

func TestMarkdownFormatter(t *testing.T) {
	files := []File{
		{Table: "users", Name: "2024_05_01_000000_create_users_table.php", Content: "<?php\n\nclass CreateUsersTable\n"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(files))

	out := buf.String()
	assert.Contains(t, out, "# Migrations\n")
	assert.Contains(t, out, "1. users\n")
	assert.Contains(t, out, "## users\n\n`2024_05_01_000000_create_users_table.php`\n\n```php\n<?php\n\nclass CreateUsersTable\n```\n")
}

func TestMarkdownFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(nil))
	assert.Equal(t, "# Migrations\n\n", buf.String())
}
