//go:build integration
// +build integration

package db

import (
	"testing"

	"github.com/tordrt/migrationgen/internal/schema"
)

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, s *schema.Schema, expectedTables []string) {
	t.Helper()

	if len(s.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(s.Tables))
	}

	for _, tableName := range expectedTables {
		if _, ok := s.Table(tableName); !ok {
			t.Errorf("Expected table %s not found in schema", tableName)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected single-column primary key
func verifyPrimaryKey(t *testing.T, s *schema.Schema, tableName, column string) {
	t.Helper()

	table := mustTable(t, s, tableName)
	if got, ok := table.PrimaryColumn(); !ok || got != column {
		t.Errorf("Expected primary key %s on %s, got %q", column, tableName, got)
	}
}

// verifyForeignKey checks that a foreign key exists and is backed by an index
func verifyForeignKey(t *testing.T, s *schema.Schema, tableName, column, targetTable string) {
	t.Helper()

	table := mustTable(t, s, tableName)
	for _, fk := range table.ForeignKeys {
		if fk.Column == column && fk.ReferencedTable == targetTable {
			if fk.IndexName == "" {
				t.Errorf("Foreign key %s.%s has no backing index", tableName, column)
			}
			return
		}
	}

	t.Errorf("Expected foreign key from %s.%s to %s not found", tableName, column, targetTable)
}

// verifyIndex checks that an index exists with the expected kind and columns
func verifyIndex(t *testing.T, s *schema.Schema, tableName string, kind schema.IndexKind, expectedColumns []string) {
	t.Helper()

	table := mustTable(t, s, tableName)
	for _, idx := range table.Indexes {
		if idx.Kind != kind || len(idx.Columns) != len(expectedColumns) {
			continue
		}
		match := true
		for i, col := range expectedColumns {
			if idx.Columns[i] != col {
				match = false
				break
			}
		}
		if match {
			return
		}
	}

	t.Errorf("Expected %s index on %s%v not found", kind, tableName, expectedColumns)
}

func mustTable(t *testing.T, s *schema.Schema, tableName string) *schema.Table {
	t.Helper()

	table, ok := s.Table(tableName)
	if !ok {
		t.Fatalf("Table %s not found", tableName)
	}
	return table
}
