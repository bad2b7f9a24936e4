package compiler

import (
	"strings"

	"github.com/tordrt/migrationgen/internal/migration"
	"github.com/tordrt/migrationgen/internal/schema"
)

// Referential actions as reported by the database.
const (
	ruleCascade  = "CASCADE"
	ruleRestrict = "RESTRICT"
	ruleNoAction = "NO ACTION"
	ruleSetNull  = "SET NULL"
)

type ruleMethods struct {
	cascade, restrict, setNull, generic string
}

var (
	deleteMethods = ruleMethods{"cascadeOnDelete", "restrictOnDelete", "nullOnDelete", "onDelete"}
	updateMethods = ruleMethods{"cascadeOnUpdate", "restrictOnUpdate", "nullOnUpdate", "onUpdate"}
)

func foreignKey(table string, fk schema.ForeignKey) migration.ForeignKey {
	indexName := fk.IndexName
	if indexName == schema.PrimaryIndexName {
		indexName = table + "_" + fk.Column
	}

	return migration.ForeignKey{
		Column:           fk.Column,
		IndexName:        indexName,
		ReferencedTable:  fk.ReferencedTable,
		ReferencedColumn: fk.ReferencedColumn,
		OnUpdate:         ruleCall(fk.OnUpdate, updateMethods),
		OnDelete:         ruleCall(fk.OnDelete, deleteMethods),
	}
}

// ruleCall translates a referential action into its Blueprint shorthand,
// falling back to onDelete('<rule>') / onUpdate('<rule>') for anything else.
func ruleCall(rule string, m ruleMethods) migration.Call {
	normalized := strings.ToUpper(strings.TrimSpace(rule))
	if normalized == "" {
		normalized = ruleRestrict
	}

	switch normalized {
	case ruleCascade:
		return migration.Call{Method: m.cascade}
	case ruleRestrict, ruleNoAction:
		return migration.Call{Method: m.restrict}
	case ruleSetNull:
		return migration.Call{Method: m.setNull}
	}
	return migration.Call{
		Method: m.generic,
		Args:   []migration.Value{migration.String(strings.ToLower(strings.TrimSpace(rule)))},
	}
}
