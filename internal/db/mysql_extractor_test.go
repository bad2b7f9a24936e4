package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tordrt/migrationgen/internal/schema"
)

var (
	columnHeaders     = []string{"column_name", "column_type", "is_nullable", "column_default", "extra", "column_comment"}
	indexHeaders      = []string{"index_name", "non_unique", "column_name", "index_type"}
	foreignKeyHeaders = []string{"constraint_name", "column_name", "referenced_table_name", "referenced_column_name", "update_rule", "delete_rule"}
)

func newMockExtractor(t *testing.T) (*MySQLExtractor, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewMySQLExtractor(NewMySQLClientWithDB(sqlDB), "app"), mock
}

func expectTables(mock sqlmock.Sqlmock, rows ...[2]string) {
	r := sqlmock.NewRows([]string{"table_name", "engine"})
	for _, row := range rows {
		r.AddRow(row[0], row[1])
	}
	mock.ExpectQuery("FROM information_schema.tables").WithArgs("app").WillReturnRows(r)
}

func TestMySQLExtractor_ExtractSchema(t *testing.T) {
	e, mock := newMockExtractor(t)

	expectTables(mock, [2]string{"posts", "MyISAM"}, [2]string{"users", "InnoDB"})

	mock.ExpectQuery("FROM information_schema.columns").WithArgs("app", "posts").WillReturnRows(
		sqlmock.NewRows(columnHeaders).
			AddRow("id", "bigint(20) unsigned", "NO", nil, "auto_increment", "").
			AddRow("user_id", "bigint(20) unsigned", "NO", nil, "", "").
			AddRow("title", "varchar(100)", "YES", "untitled", "", "Post title").
			AddRow("status", "enum('draft','published')", "NO", "draft", "", "").
			AddRow("published", "tinyint(1)", "NO", "0", "", "").
			AddRow("price", "decimal(8,2) unsigned", "YES", "NULL", "", "").
			AddRow("ratio", "double(10,4)", "YES", nil, "", "").
			AddRow("updated_at", "timestamp", "NO", "CURRENT_TIMESTAMP", "DEFAULT_GENERATED on update CURRENT_TIMESTAMP", "").
			AddRow("touched_at", "timestamp", "YES", nil, "on update CURRENT_TIMESTAMP", ""),
	)
	mock.ExpectQuery("FROM information_schema.statistics").WithArgs("app", "posts").WillReturnRows(
		sqlmock.NewRows(indexHeaders).
			AddRow("PRIMARY", 0, "id", "BTREE").
			AddRow("posts_body_fulltext", 1, "title", "FULLTEXT").
			AddRow("posts_status_title_index", 1, "status", "BTREE").
			AddRow("posts_status_title_index", 1, "title", "BTREE").
			AddRow("posts_user_id_foreign", 1, "user_id", "BTREE"),
	)
	mock.ExpectQuery("FROM information_schema.key_column_usage").WithArgs("app", "posts").WillReturnRows(
		sqlmock.NewRows(foreignKeyHeaders).
			AddRow("posts_user_id_foreign", "user_id", "users", "id", "CASCADE", "SET NULL"),
	)

	mock.ExpectQuery("FROM information_schema.columns").WithArgs("app", "users").WillReturnRows(
		sqlmock.NewRows(columnHeaders).
			AddRow("id", "bigint unsigned", "NO", nil, "auto_increment", ""),
	)
	mock.ExpectQuery("FROM information_schema.statistics").WithArgs("app", "users").WillReturnRows(
		sqlmock.NewRows(indexHeaders).AddRow("PRIMARY", 0, "id", "BTREE"),
	)
	mock.ExpectQuery("FROM information_schema.key_column_usage").WithArgs("app", "users").WillReturnRows(
		sqlmock.NewRows(foreignKeyHeaders),
	)

	s, err := e.ExtractSchema(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "app", s.Name)
	require.Len(t, s.Tables, 2)

	posts := s.Tables[0]
	assert.Equal(t, "posts", posts.Name)
	assert.Equal(t, "MyISAM", posts.Engine)
	assert.Equal(t, "InnoDB", s.Tables[1].Engine)

	col := func(name string) *schema.Column {
		c, ok := posts.Column(name)
		require.True(t, ok, "column %s", name)
		require.NoError(t, c.Err)
		return c
	}

	id := col("id")
	assert.Equal(t, "BIGINT", id.Type)
	assert.True(t, id.Unsigned)
	assert.False(t, id.Nullable)
	assert.Nil(t, id.Default)

	title := col("title")
	assert.Equal(t, "VARCHAR", title.Type)
	assert.Equal(t, 100, title.Length)
	assert.True(t, title.Nullable)
	assert.Equal(t, "Post title", title.Comment)
	require.NotNil(t, title.Default)
	assert.Equal(t, "untitled", *title.Default)

	status := col("status")
	assert.Equal(t, "ENUM", status.Type)
	assert.Equal(t, []string{"draft", "published"}, status.EnumValues)

	published := col("published")
	assert.Equal(t, "TINYINT", published.Type)
	assert.Equal(t, 1, published.Precision)

	price := col("price")
	assert.Equal(t, "DECIMAL", price.Type)
	assert.Equal(t, 8, price.Precision)
	assert.Equal(t, 2, price.Scale)
	assert.True(t, price.Unsigned)
	assert.True(t, price.DefaultIsNull)
	assert.Nil(t, price.Default)

	ratio := col("ratio")
	assert.Equal(t, "DOUBLE", ratio.Type)
	assert.Equal(t, 10, ratio.Length)
	assert.Equal(t, 4, ratio.Precision)

	updated := col("updated_at")
	require.NotNil(t, updated.Default)
	assert.Equal(t, "CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP", *updated.Default)

	touched := col("touched_at")
	require.NotNil(t, touched.Default)
	assert.Equal(t, "NULL ON UPDATE CURRENT_TIMESTAMP", *touched.Default)

	assert.Equal(t, []schema.Index{
		{Name: "PRIMARY", Kind: schema.IndexPrimary, Columns: []string{"id"}},
		{Name: "posts_status_title_index", Kind: schema.IndexPlain, Columns: []string{"status", "title"}},
		{Name: "posts_user_id_foreign", Kind: schema.IndexPlain, Columns: []string{"user_id"}},
	}, posts.Indexes)

	assert.Equal(t, []schema.ForeignKey{{
		Name:             "posts_user_id_foreign",
		Column:           "user_id",
		IndexName:        "posts_user_id_foreign",
		ReferencedTable:  "users",
		ReferencedColumn: "id",
		OnUpdate:         "CASCADE",
		OnDelete:         "SET NULL",
	}}, posts.ForeignKeys)
}

func TestMySQLExtractor_PrimaryKeyForeignKey(t *testing.T) {
	e, mock := newMockExtractor(t)

	expectTables(mock, [2]string{"profiles", "InnoDB"})
	mock.ExpectQuery("FROM information_schema.columns").WithArgs("app", "profiles").WillReturnRows(
		sqlmock.NewRows(columnHeaders).AddRow("user_id", "bigint unsigned", "NO", nil, "", ""),
	)
	mock.ExpectQuery("FROM information_schema.statistics").WithArgs("app", "profiles").WillReturnRows(
		sqlmock.NewRows(indexHeaders).AddRow("PRIMARY", 0, "user_id", "BTREE"),
	)
	mock.ExpectQuery("FROM information_schema.key_column_usage").WithArgs("app", "profiles").WillReturnRows(
		sqlmock.NewRows(foreignKeyHeaders).AddRow("profiles_user_id_foreign", "user_id", "users", "id", "RESTRICT", "RESTRICT"),
	)

	s, err := e.ExtractSchema(context.Background(), []string{"profiles"})
	require.NoError(t, err)
	require.Len(t, s.Tables[0].ForeignKeys, 1)
	assert.Equal(t, schema.PrimaryIndexName, s.Tables[0].ForeignKeys[0].IndexName)
}

func TestMySQLExtractor_UnparsableColumnIsKept(t *testing.T) {
	e, mock := newMockExtractor(t)

	expectTables(mock, [2]string{"things", "InnoDB"})
	mock.ExpectQuery("FROM information_schema.columns").WithArgs("app", "things").WillReturnRows(
		sqlmock.NewRows(columnHeaders).
			AddRow("broken", "", "NO", nil, "", "").
			AddRow("name", "varchar(20)", "NO", "", "", ""),
	)
	mock.ExpectQuery("FROM information_schema.statistics").WithArgs("app", "things").WillReturnRows(sqlmock.NewRows(indexHeaders))
	mock.ExpectQuery("FROM information_schema.key_column_usage").WithArgs("app", "things").WillReturnRows(sqlmock.NewRows(foreignKeyHeaders))

	s, err := e.ExtractSchema(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, s.Tables[0].Columns, 2)
	assert.Error(t, s.Tables[0].Columns[0].Err)

	name := s.Tables[0].Columns[1]
	assert.NoError(t, name.Err)
	require.NotNil(t, name.Default, "DEFAULT '' is a default")
	assert.Equal(t, "", *name.Default)
	assert.False(t, name.DefaultIsNull)
}

func TestMySQLExtractor_UnknownTable(t *testing.T) {
	e, mock := newMockExtractor(t)
	expectTables(mock, [2]string{"users", "InnoDB"})

	_, err := e.ExtractSchema(context.Background(), []string{"missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table missing not found")
}

func TestParseDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{"tcp", "root:secret@tcp(localhost:3306)/app", "app", false},
		{"with params", "root@tcp(db:3306)/shop?parseTime=true", "shop", false},
		{"no database", "root@tcp(localhost:3306)/", "", true},
		{"invalid", "not a dsn", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatabaseName(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
