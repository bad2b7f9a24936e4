package db

import (
	"strconv"
	"strings"

	"ariga.io/atlas/sql/mysql"
	atlas "ariga.io/atlas/sql/schema"
	"github.com/cockroachdb/errors"
	"github.com/tordrt/migrationgen/internal/schema"
)

// integerTypes carry their display width as precision, so TINYINT(1)
// is recognized as a boolean.
var integerTypes = map[string]bool{
	"TINYINT":   true,
	"SMALLINT":  true,
	"MEDIUMINT": true,
	"INT":       true,
	"INTEGER":   true,
	"BIGINT":    true,
}

// ParseColumnType decodes a MySQL column type such as "int(10) unsigned",
// "varchar(100)" or "enum('draft','published')" into col.
func ParseColumnType(col *schema.Column, raw string) error {
	t, err := mysql.ParseType(raw)
	if err != nil {
		return errors.Wrapf(err, "failed to parse column type %q", raw)
	}
	return applyType(col, raw, t)
}

// applyType fills the type attributes of col from an Atlas type. raw is
// the textual type when the source has one; it is derived from t otherwise.
func applyType(col *schema.Column, raw string, t atlas.Type) error {
	if raw == "" {
		if t == nil {
			return errors.Newf("column %s has no type", col.Name)
		}
		formatted, err := mysql.FormatType(t)
		if err != nil {
			return errors.Wrap(err, "failed to format column type")
		}
		raw = formatted
	}

	col.Type = baseType(raw)
	args := typeArgs(raw)
	if strings.Contains(strings.ToLower(raw), "unsigned") {
		col.Unsigned = true
	}

	switch t := t.(type) {
	case *atlas.BoolType:
		if col.Type == "TINYINT" {
			col.Precision = 1
		}
	case *atlas.IntegerType:
		col.Unsigned = col.Unsigned || t.Unsigned
		if integerTypes[col.Type] && len(args) > 0 {
			col.Precision = args[0]
		}
	case *atlas.StringType:
		if t.Size > 0 {
			col.Length = t.Size
		}
	case *atlas.DecimalType:
		col.Precision, col.Scale = t.Precision, t.Scale
	case *atlas.FloatType:
		// DOUBLE(M,D) keeps M as length and D as precision.
		if len(args) == 2 {
			col.Length, col.Precision = args[0], args[1]
		}
	case *atlas.EnumType:
		col.EnumValues = append([]string(nil), t.Values...)
	}
	return nil
}

// baseType returns the upper-case type name without arguments or attributes.
func baseType(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexAny(name, "( "); i >= 0 {
		name = name[:i]
	}
	return strings.ToUpper(name)
}

// typeArgs returns the numeric arguments of a type, e.g. [10 4] for
// double(10,4). Non-numeric arguments yield nil.
func typeArgs(raw string) []int {
	open := strings.IndexByte(raw, '(')
	end := strings.IndexByte(raw, ')')
	if open < 0 || end < open {
		return nil
	}

	var args []int
	for _, part := range strings.Split(raw[open+1:end], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil
		}
		args = append(args, n)
	}
	return args
}

// setDefault records a column default. A literal NULL marks an explicit
// DEFAULT NULL.
func setDefault(col *schema.Column, v string) {
	if strings.EqualFold(strings.TrimSpace(v), "NULL") {
		col.DefaultIsNull = true
		return
	}
	col.Default = &v
}

// backingIndex returns the name of the index that backs a foreign key on
// column: PRIMARY when the column leads the primary key, otherwise the first
// index led by the column, falling back to the constraint name.
func backingIndex(t *schema.Table, column, constraint string) string {
	if idx, ok := t.PrimaryIndex(); ok && len(idx.Columns) > 0 && idx.Columns[0] == column {
		return schema.PrimaryIndexName
	}
	for _, idx := range t.Indexes {
		if idx.Kind != schema.IndexPrimary && len(idx.Columns) > 0 && idx.Columns[0] == column {
			return idx.Name
		}
	}
	return constraint
}
