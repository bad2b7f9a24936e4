package db

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tordrt/migrationgen/internal/schema"
	"gopkg.in/yaml.v3"
)

// catalogDocument is the YAML form of a catalog. Column types are MySQL
// column types as information_schema reports them, e.g. "int(10) unsigned".
type catalogDocument struct {
	Schemas []schemaDocument `yaml:"schemas"`
}

type schemaDocument struct {
	Name   string          `yaml:"name"`
	Tables []tableDocument `yaml:"tables"`
}

type tableDocument struct {
	Name        string               `yaml:"name"`
	Engine      string               `yaml:"engine,omitempty"`
	Columns     []columnDocument     `yaml:"columns"`
	Indexes     []indexDocument      `yaml:"indexes,omitempty"`
	ForeignKeys []foreignKeyDocument `yaml:"foreign_keys,omitempty"`
}

type columnDocument struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Nullable bool    `yaml:"nullable,omitempty"`
	Default  *string `yaml:"default,omitempty"`
	Comment  string  `yaml:"comment,omitempty"`
}

type indexDocument struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Columns []string `yaml:"columns"`
}

type foreignKeyDocument struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	Index      string `yaml:"index,omitempty"`
	References struct {
		Table  string `yaml:"table"`
		Column string `yaml:"column"`
	} `yaml:"references"`
	OnUpdate string `yaml:"on_update,omitempty"`
	OnDelete string `yaml:"on_delete,omitempty"`
}

// LoadYAMLFile reads a catalog document from disk.
func LoadYAMLFile(path string) (*schema.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return LoadYAML(data)
}

// LoadYAML decodes a catalog document. Columns whose type is missing or
// cannot be parsed are kept with their error recorded.
func LoadYAML(data []byte) (*schema.Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode YAML catalog")
	}

	catalog := &schema.Catalog{}
	for _, sd := range doc.Schemas {
		s := schema.Schema{Name: sd.Name}
		for _, td := range sd.Tables {
			table, err := td.toTable()
			if err != nil {
				return nil, errors.Wrapf(err, "schema %s", sd.Name)
			}
			s.Tables = append(s.Tables, table)
		}
		catalog.Schemas = append(catalog.Schemas, s)
	}
	return catalog, nil
}

func (td tableDocument) toTable() (schema.Table, error) {
	table := schema.Table{Name: td.Name, Engine: td.Engine}

	for _, cd := range td.Columns {
		col := schema.NewColumn(cd.Name, "")
		col.Nullable = cd.Nullable
		col.Comment = cd.Comment
		if err := ParseColumnType(&col, cd.Type); err != nil {
			col.Err = err
		}
		if cd.Default != nil {
			setDefault(&col, *cd.Default)
		}
		table.Columns = append(table.Columns, col)
	}

	for _, id := range td.Indexes {
		kind := schema.IndexKind(id.Kind)
		switch kind {
		case schema.IndexPrimary:
			id.Name = schema.PrimaryIndexName
		case schema.IndexUnique, schema.IndexPlain:
		case "":
			kind = schema.IndexPlain
		default:
			return table, errors.Newf("table %s: index %s has unknown kind %q", td.Name, id.Name, id.Kind)
		}
		table.Indexes = append(table.Indexes, schema.Index{Name: id.Name, Kind: kind, Columns: id.Columns})
	}

	for _, fd := range td.ForeignKeys {
		fk := schema.ForeignKey{
			Name:             fd.Name,
			Column:           fd.Column,
			IndexName:        fd.Index,
			ReferencedTable:  fd.References.Table,
			ReferencedColumn: fd.References.Column,
			OnUpdate:         fd.OnUpdate,
			OnDelete:         fd.OnDelete,
		}
		if fk.IndexName == "" {
			fk.IndexName = backingIndex(&table, fk.Column, fk.Name)
		}
		table.ForeignKeys = append(table.ForeignKeys, fk)
	}
	return table, nil
}
