package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tordrt/migrationgen/internal/schema"
)

const blogHCL = `
schema "blog" {}

table "users" {
  schema = schema.blog
  column "id" {
    type           = bigint
    unsigned       = true
    auto_increment = true
  }
  column "email" {
    type = varchar(191)
  }
  column "bio" {
    type = text
    null = true
  }
  column "is_admin" {
    type    = bool
    default = 0
  }
  column "updated_at" {
    type      = timestamp
    null      = true
    default   = sql("CURRENT_TIMESTAMP")
    on_update = sql("CURRENT_TIMESTAMP")
  }
  primary_key {
    columns = [column.id]
  }
  index "users_email_unique" {
    unique  = true
    columns = [column.email]
  }
  index "users_bio_fulltext" {
    type    = FULLTEXT
    columns = [column.bio]
  }
}

table "posts" {
  schema = schema.blog
  column "id" {
    type     = bigint
    unsigned = true
  }
  column "user_id" {
    type     = bigint
    unsigned = true
  }
  column "status" {
    type    = enum("draft", "published")
    comment = "Workflow state"
  }
  column "price" {
    type = decimal(8,2)
    null = true
  }
  primary_key {
    columns = [column.id]
  }
  index "posts_user_id_foreign" {
    columns = [column.user_id]
  }
  foreign_key "posts_user_id_foreign" {
    columns     = [column.user_id]
    ref_columns = [table.users.column.id]
    on_update   = NO_ACTION
    on_delete   = CASCADE
  }
}
`

func TestLoadHCL(t *testing.T) {
	catalog, err := LoadHCL([]byte(blogHCL))
	require.NoError(t, err)
	require.Len(t, catalog.Schemas, 1)

	s := catalog.Schemas[0]
	assert.Equal(t, "blog", s.Name)

	users, ok := s.Table("users")
	require.True(t, ok)

	id, ok := users.Column("id")
	require.True(t, ok)
	require.NoError(t, id.Err)
	assert.Equal(t, "BIGINT", id.Type)
	assert.True(t, id.Unsigned)
	assert.False(t, id.Nullable)

	email, _ := users.Column("email")
	assert.Equal(t, "VARCHAR", email.Type)
	assert.Equal(t, 191, email.Length)

	admin, _ := users.Column("is_admin")
	require.NoError(t, admin.Err)
	require.NotNil(t, admin.Default)
	assert.Equal(t, "0", *admin.Default)

	updated, _ := users.Column("updated_at")
	assert.True(t, updated.Nullable)
	require.NotNil(t, updated.Default)
	assert.Equal(t, "CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP", *updated.Default)

	pk, ok := users.PrimaryColumn()
	assert.True(t, ok)
	assert.Equal(t, "id", pk)
	assert.Equal(t, []schema.Index{
		{Name: schema.PrimaryIndexName, Kind: schema.IndexPrimary, Columns: []string{"id"}},
		{Name: "users_email_unique", Kind: schema.IndexUnique, Columns: []string{"email"}},
	}, users.Indexes)

	posts, ok := s.Table("posts")
	require.True(t, ok)

	status, _ := posts.Column("status")
	assert.Equal(t, "ENUM", status.Type)
	assert.Equal(t, []string{"draft", "published"}, status.EnumValues)
	assert.Equal(t, "Workflow state", status.Comment)

	price, _ := posts.Column("price")
	assert.Equal(t, "DECIMAL", price.Type)
	assert.Equal(t, 8, price.Precision)
	assert.Equal(t, 2, price.Scale)

	require.Len(t, posts.ForeignKeys, 1)
	assert.Equal(t, schema.ForeignKey{
		Name:             "posts_user_id_foreign",
		Column:           "user_id",
		IndexName:        "posts_user_id_foreign",
		ReferencedTable:  "users",
		ReferencedColumn: "id",
		OnUpdate:         "NO ACTION",
		OnDelete:         "CASCADE",
	}, posts.ForeignKeys[0])
}

func TestLoadHCL_Invalid(t *testing.T) {
	_, err := LoadHCL([]byte(`table "users" {`))
	assert.Error(t, err)
}
