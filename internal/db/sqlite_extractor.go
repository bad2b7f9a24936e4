package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tordrt/migrationgen/internal/schema"
)

// SQLiteExtractor handles schema extraction from SQLite. Column types are
// read as declared, so the database is expected to use MySQL type names.
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	available, err := e.getTableNames(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get table names")
	}

	tableNames, err := selectTables(available, tables)
	if err != nil {
		return nil, err
	}

	extracted := make([]schema.Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract table %s", tableName)
		}
		extracted = append(extracted, *table)
	}

	return &schema.Schema{Name: "main", Tables: extracted}, nil
}

// getTableNames lists the user tables of the database
func (e *SQLiteExtractor) getTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// extractTable extracts all information for a single table
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	columns, pk, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract columns")
	}
	table.Columns = columns

	if len(pk) > 0 {
		table.Indexes = append(table.Indexes, schema.Index{
			Name:    schema.PrimaryIndexName,
			Kind:    schema.IndexPrimary,
			Columns: pk,
		})
	}

	indexes, err := e.extractIndexes(ctx, tableName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract indexes")
	}
	table.Indexes = append(table.Indexes, indexes...)

	foreignKeys, err := e.extractForeignKeys(ctx, table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract foreign keys")
	}
	table.ForeignKeys = foreignKeys

	return table, nil
}

// extractColumns extracts column information and the primary key columns
// in key order
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	pkOrder := make(map[int]string)

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}

		col := schema.NewColumn(name, "")
		col.Nullable = notNull == 0
		if err := ParseColumnType(&col, colType); err != nil {
			col.Err = err
		}
		if defaultValue.Valid {
			setDefault(&col, defaultValue.String)
		}

		if pk > 0 {
			pkOrder[pk] = name
		}

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var pk []string
	for i := 1; i <= len(pkOrder); i++ {
		pk = append(pk, pkOrder[i])
	}

	return columns, pk, nil
}

// extractIndexes extracts secondary index information
func (e *SQLiteExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	type listed struct {
		name   string
		unique bool
	}
	var list []listed

	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			_ = rows.Close()
			return nil, err
		}

		// The primary key is read from table_info
		if origin == "pk" {
			continue
		}
		list = append(list, listed{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// index_list reports the most recent index first
	var indexes []schema.Index
	for i := len(list) - 1; i >= 0; i-- {
		columns, err := e.indexColumns(ctx, list[i].name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}

		kind := schema.IndexPlain
		if list[i].unique {
			kind = schema.IndexUnique
		}
		indexes = append(indexes, schema.Index{Name: list[i].name, Kind: kind, Columns: columns})
	}

	return indexes, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(indexName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}

		// Expression key parts have no column name
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}

// extractForeignKeys extracts foreign keys with their rules. SQLite does not
// keep constraint names, so keys are named <table>_<column>_foreign.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, table *schema.Table) ([]schema.ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table.Name))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	var keys []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			_ = rows.Close()
			return nil, err
		}

		// Composite keys are reduced to their first column
		if seq != 0 {
			continue
		}

		name := table.Name + "_" + fromCol + "_foreign"
		keys = append(keys, schema.ForeignKey{
			Name:             name,
			Column:           fromCol,
			IndexName:        backingIndex(table, fromCol, name),
			ReferencedTable:  targetTable,
			ReferencedColumn: toCol.String,
			OnUpdate:         onUpdate,
			OnDelete:         onDelete,
		})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// A reference without columns targets the primary key of the other table
	for i := range keys {
		if keys[i].ReferencedColumn != "" {
			continue
		}
		_, pk, err := e.extractColumns(ctx, keys[i].ReferencedTable)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read primary key of %s", keys[i].ReferencedTable)
		}
		if len(pk) > 0 {
			keys[i].ReferencedColumn = pk[0]
		}
	}

	return keys, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
