package compiler

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tordrt/migrationgen/internal/migration"
	"github.com/tordrt/migrationgen/internal/schema"
)

// Column names with a dedicated helper or shorthand.
const (
	columnCreatedAt     = "created_at"
	columnUpdatedAt     = "updated_at"
	columnDeletedAt     = "deleted_at"
	columnID            = "id"
	columnRememberToken = "remember_token"

	rememberTokenLength = 100
)

// tableContext carries what column compilation needs to know about the
// surrounding table.
type tableContext struct {
	table       *schema.Table
	primary     string
	hasPrimary  bool
	timestamps  bool
	softDeletes bool
}

func newTableContext(t *schema.Table) *tableContext {
	tc := &tableContext{table: t}
	tc.primary, tc.hasPrimary = t.PrimaryColumn()

	var created, updated bool
	for _, col := range t.Columns {
		switch col.Name {
		case columnCreatedAt:
			created = true
		case columnUpdatedAt:
			updated = true
		}
	}
	tc.timestamps = created && updated
	return tc
}

// column compiles one column. It returns a nil statement for columns folded
// into a helper, and an error for columns that must be left out.
func (tc *tableContext) column(col *schema.Column) (migration.Statement, error) {
	if col.Err != nil {
		return nil, errors.Wrap(col.Err, "failed to introspect column")
	}
	if col.Name == "" {
		return nil, ErrMissingName
	}

	if (col.Name == columnCreatedAt || col.Name == columnUpdatedAt) && tc.timestamps {
		return nil, nil
	}
	if col.Name == columnDeletedAt {
		tc.softDeletes = true
		return nil, nil
	}

	if col.Type == "" {
		return nil, ErrMissingType
	}

	declared := strings.ToUpper(col.Type)
	isPrimary := tc.hasPrimary && col.Name == tc.primary
	tag := resolveTag(col, declared, isPrimary)

	method, ok := lookupMethod(tag)
	if !ok || method == "" {
		return nil, &droppedTypeError{tag: declared}
	}

	if col.Name == columnRememberToken && method == methodString && col.Length == rememberTokenLength {
		return migration.Helper{Method: migration.HelperRememberToken}, nil
	}
	if col.Name == columnID && method == methodBigIncrements {
		return migration.Helper{Method: migration.HelperID}, nil
	}

	stmt := migration.Column{
		Method: method,
		Name:   col.Name,
		Args:   typeArgs(method, col),
	}

	if col.Unsigned && plainIntegers[declared] && (method == methodInteger || method == methodUnsignedInt) {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "unsigned"})
	}
	if col.Nullable && !isPrimary {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "nullable"})
	}
	if def, ok := defaultValue(col, declared, method); ok {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "default", Args: []migration.Value{def}})
	}
	if col.Comment != "" {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "comment", Args: []migration.Value{migration.String(col.Comment)}})
	}
	if isPrimary && (method == methodString || method == methodUUID) {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "primary"})
	}
	if tc.singleColumnIndex(schema.IndexUnique, col.Name) {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "unique"})
	}
	if tc.singleColumnIndex(schema.IndexPlain, col.Name) && !tc.table.HasForeignKey(col.Name) {
		stmt.Modifiers = append(stmt.Modifiers, migration.Call{Method: "index"})
	}

	return stmt, nil
}

// resolveTag applies boolean inference, primary key remapping and the
// unsigned variant selection to the declared tag.
func resolveTag(col *schema.Column, declared string, isPrimary bool) string {
	tag := declared
	if tag == "TINYINT" && col.Precision == 1 {
		tag = tagBoolean
	}

	if isPrimary {
		switch tag {
		case "BIGINT":
			tag = tagBigIncrements
		case "MEDIUMINT":
			tag = tagMediumIncrements
		case "VARCHAR":
		case "CHAR":
			if col.Length == 36 {
				tag = tagUUID
			}
		default:
			tag = tagIncrements
		}
	}

	if col.Unsigned && unsignedVariants[tag] {
		tag = "u" + tag
	}
	return tag
}

func typeArgs(method string, col *schema.Column) []migration.Value {
	switch method {
	case methodChar:
		if col.Length > schema.Unset {
			return []migration.Value{migration.Int(col.Length)}
		}
	case methodDecimal:
		if col.Precision > schema.Unset && col.Scale > schema.Unset {
			return []migration.Value{migration.Int(col.Precision), migration.Int(col.Scale)}
		}
	case methodDouble:
		if col.Precision > schema.Unset && col.Length > schema.Unset {
			return []migration.Value{migration.Int(col.Length), migration.Int(col.Precision)}
		}
	case methodEnum:
		return []migration.Value{migration.Strings(append([]string(nil), col.EnumValues...))}
	case methodString:
		if col.Length > schema.Unset && col.Length != defaultStringLength {
			return []migration.Value{migration.Int(col.Length)}
		}
	}
	return nil
}

func defaultValue(col *schema.Column, declared, method string) (migration.Value, bool) {
	if col.Default == nil || col.DefaultIsNull {
		return nil, false
	}

	v := unquote(*col.Default)
	if currentTimestampDefaults[normalizeExpr(v)] {
		return migration.Raw(v), true
	}
	if method == methodBoolean {
		return migration.Bool(v == "1" || strings.EqualFold(v, "true")), true
	}
	if numericTags[declared] && v != "" {
		return migration.Number(v), true
	}
	return migration.String(v), true
}

// unquote strips the quotes around a string literal default.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s
	}
	inner := s[1 : len(s)-1]
	inner = strings.ReplaceAll(inner, string([]byte{q, q}), string(q))
	return strings.ReplaceAll(inner, "\\"+string(q), string(q))
}

// normalizeExpr upper-cases an expression and drops empty call parentheses,
// so current_timestamp() matches CURRENT_TIMESTAMP.
func normalizeExpr(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "()", "")
}

func (tc *tableContext) singleColumnIndex(kind schema.IndexKind, column string) bool {
	for _, idx := range tc.table.Indexes {
		if idx.Kind == kind && len(idx.Columns) == 1 && idx.Columns[0] == column {
			return true
		}
	}
	return false
}
