package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tordrt/migrationgen/internal/schema"
)

const onUpdateCurrentTimestamp = "on update current_timestamp"

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the schema
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	engines, err := e.getTables(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get table names")
	}

	tableNames, err := selectTables(engines.names, tables)
	if err != nil {
		return nil, err
	}

	extracted := make([]schema.Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract table %s", tableName)
		}
		table.Engine = engines.engine[tableName]
		extracted = append(extracted, *table)
	}

	return &schema.Schema{Name: e.schemaName, Tables: extracted}, nil
}

type tableList struct {
	names  []string
	engine map[string]string
}

// getTables lists the base tables of the schema with their storage engine
func (e *MySQLExtractor) getTables(ctx context.Context) (*tableList, error) {
	query := `
		SELECT table_name, COALESCE(engine, '')
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := &tableList{engine: make(map[string]string)}
	for rows.Next() {
		var name, engine string
		if err := rows.Scan(&name, &engine); err != nil {
			return nil, err
		}
		list.names = append(list.names, name)
		list.engine[name] = engine
	}

	return list, rows.Err()
}

// extractTable extracts all information for a single table
func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract columns")
	}
	table.Columns = columns

	indexes, err := e.extractIndexes(ctx, tableName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract indexes")
	}
	table.Indexes = indexes

	// Foreign keys come last: their backing index is looked up among the indexes.
	foreignKeys, err := e.extractForeignKeys(ctx, table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract foreign keys")
	}
	table.ForeignKeys = foreignKeys

	return table, nil
}

// extractColumns extracts column information for a table
func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			column_name,
			column_type,
			is_nullable,
			column_default,
			extra,
			column_comment
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, columnType, nullable, extra, comment string
		var defaultVal sql.NullString

		if err := rows.Scan(&name, &columnType, &nullable, &defaultVal, &extra, &comment); err != nil {
			return nil, err
		}

		col := schema.NewColumn(name, "")
		col.Nullable = nullable == "YES"
		col.Comment = comment
		if err := ParseColumnType(&col, columnType); err != nil {
			col.Err = err
		}

		onUpdate := strings.Contains(strings.ToLower(extra), onUpdateCurrentTimestamp)
		switch {
		case defaultVal.Valid && onUpdate:
			setDefault(&col, defaultVal.String+" ON UPDATE CURRENT_TIMESTAMP")
		case defaultVal.Valid:
			setDefault(&col, defaultVal.String)
		case onUpdate:
			setDefault(&col, "NULL ON UPDATE CURRENT_TIMESTAMP")
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractIndexes extracts index information, the primary key included
func (e *MySQLExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			index_name,
			non_unique,
			column_name,
			index_type
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ?
		ORDER BY index_name = 'PRIMARY' DESC, index_name, seq_in_index
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var name, indexType string
		var nonUnique int
		var column sql.NullString

		if err := rows.Scan(&name, &nonUnique, &column, &indexType); err != nil {
			return nil, err
		}

		// Full-text and spatial indexes have no Blueprint shorthand; functional key parts have no column.
		if indexType == "FULLTEXT" || indexType == "SPATIAL" || !column.Valid {
			continue
		}

		if n := len(indexes); n > 0 && indexes[n-1].Name == name {
			indexes[n-1].Columns = append(indexes[n-1].Columns, column.String)
			continue
		}

		kind := schema.IndexPlain
		switch {
		case name == schema.PrimaryIndexName:
			kind = schema.IndexPrimary
		case nonUnique == 0:
			kind = schema.IndexUnique
		}
		indexes = append(indexes, schema.Index{Name: name, Kind: kind, Columns: []string{column.String}})
	}

	return indexes, rows.Err()
}

// extractForeignKeys extracts the foreign keys of a table with their rules.
// Composite keys are reduced to their first column.
func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, table *schema.Table) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
			AND rc.table_name = kcu.table_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
			AND kcu.ordinal_position = 1
		ORDER BY kcu.constraint_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, table.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
			return nil, err
		}
		fk.IndexName = backingIndex(table, fk.Column, fk.Name)
		keys = append(keys, fk)
	}

	return keys, rows.Err()
}

// selectTables returns the requested tables in the order given, or every
// available table when none are requested.
func selectTables(available, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return available, nil
	}

	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	for _, name := range requested {
		if !known[name] {
			return nil, errors.Newf("table %s not found", name)
		}
	}
	return requested, nil
}
