//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// The database behind MYSQL_TEST_URL is expected to hold a users, posts and
// comments schema where posts and comments reference users.
func TestMySQLExtraction(t *testing.T) {
	ctx := context.Background()

	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "root:testpassword@tcp(localhost:3306)/testdb"
	}

	client, err := NewMySQLClient(ctx, connString)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	schemaName, err := ParseDatabaseName(connString)
	require.NoError(t, err)

	s, err := NewMySQLExtractor(client, schemaName).ExtractSchema(ctx, nil)
	require.NoError(t, err)

	verifyTablesExist(t, s, []string{"comments", "posts", "users"})
	verifyPrimaryKey(t, s, "users", "id")
	verifyForeignKey(t, s, "posts", "user_id", "users")
	verifyForeignKey(t, s, "comments", "user_id", "users")
}
