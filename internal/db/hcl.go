package db

import (
	"os"
	"strings"

	"ariga.io/atlas/sql/mysql"
	atlas "ariga.io/atlas/sql/schema"
	"github.com/cockroachdb/errors"
	"github.com/tordrt/migrationgen/internal/schema"
)

// LoadHCLFile reads an Atlas HCL schema file written for MySQL.
func LoadHCLFile(path string) (*schema.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return LoadHCL(data)
}

// LoadHCL evaluates an Atlas HCL document and converts every schema it
// declares into the catalog model.
func LoadHCL(data []byte) (*schema.Catalog, error) {
	var realm atlas.Realm
	if err := mysql.EvalHCLBytes(data, &realm, nil); err != nil {
		return nil, errors.Wrap(err, "failed to evaluate HCL schema")
	}

	catalog := &schema.Catalog{}
	for _, s := range realm.Schemas {
		converted := schema.Schema{Name: s.Name}
		for _, t := range s.Tables {
			converted.Tables = append(converted.Tables, convertTable(t))
		}
		catalog.Schemas = append(catalog.Schemas, converted)
	}
	return catalog, nil
}

func convertTable(t *atlas.Table) schema.Table {
	table := schema.Table{Name: t.Name}

	if engine, ok := attr[*mysql.Engine](t.Attrs); ok {
		table.Engine = engine.V
	}

	for _, c := range t.Columns {
		table.Columns = append(table.Columns, convertColumn(c))
	}

	if pk := t.PrimaryKey; pk != nil {
		table.Indexes = append(table.Indexes, schema.Index{
			Name:    schema.PrimaryIndexName,
			Kind:    schema.IndexPrimary,
			Columns: partColumns(pk.Parts),
		})
	}
	for _, idx := range t.Indexes {
		if it, ok := attr[*mysql.IndexType](idx.Attrs); ok && (strings.EqualFold(it.T, "FULLTEXT") || strings.EqualFold(it.T, "SPATIAL")) {
			continue
		}
		columns := partColumns(idx.Parts)
		if len(columns) == 0 {
			continue
		}
		kind := schema.IndexPlain
		if idx.Unique {
			kind = schema.IndexUnique
		}
		table.Indexes = append(table.Indexes, schema.Index{Name: idx.Name, Kind: kind, Columns: columns})
	}

	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 0 || len(fk.RefColumns) == 0 || fk.RefTable == nil {
			continue
		}
		table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
			Name:             fk.Symbol,
			Column:           fk.Columns[0].Name,
			IndexName:        backingIndex(&table, fk.Columns[0].Name, fk.Symbol),
			ReferencedTable:  fk.RefTable.Name,
			ReferencedColumn: fk.RefColumns[0].Name,
			OnUpdate:         string(fk.OnUpdate),
			OnDelete:         string(fk.OnDelete),
		})
	}
	return table
}

func convertColumn(c *atlas.Column) schema.Column {
	col := schema.NewColumn(c.Name, "")
	if c.Type == nil {
		col.Err = errors.Newf("column %s has no type", c.Name)
		return col
	}
	col.Nullable = c.Type.Null
	if err := applyType(&col, c.Type.Raw, c.Type.Type); err != nil {
		col.Err = err
	}

	if comment, ok := attr[*atlas.Comment](c.Attrs); ok {
		col.Comment = comment.Text
	}

	var def string
	switch x := c.Default.(type) {
	case *atlas.Literal:
		def = x.V
	case *atlas.RawExpr:
		def = x.X
	}
	if onUpdate, ok := attr[*mysql.OnUpdate](c.Attrs); ok {
		if def == "" {
			def = "NULL"
		}
		def += " ON UPDATE " + strings.ToUpper(onUpdate.A)
	}
	if def != "" {
		setDefault(&col, def)
	}
	return col
}

func partColumns(parts []*atlas.IndexPart) []string {
	var columns []string
	for _, p := range parts {
		// Expression parts have no Blueprint form
		if p.C == nil {
			return nil
		}
		columns = append(columns, p.C.Name)
	}
	return columns
}

// attr returns the first attribute of type T.
func attr[T atlas.Attr](attrs []atlas.Attr) (T, bool) {
	for _, a := range attrs {
		if v, ok := a.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
