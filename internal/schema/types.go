package schema

// Unset marks a length, precision or scale that the source did not provide.
const Unset = -1

// Catalog is the set of named schemas handed over by a source
type Catalog struct {
	Schemas []Schema
}

// Schema represents a complete database schema
type Schema struct {
	Name   string
	Tables []Table
}

// Table represents a database table
type Table struct {
	Name        string
	Engine      string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
}

// Column represents a table column
type Column struct {
	Name string
	// Type is the upper-case native type tag, e.g. BIGINT or VARCHAR.
	Type      string
	Nullable  bool
	Length    int
	Precision int
	Scale     int
	// Default is nil when the column has no default. DefaultIsNull marks
	// an explicit DEFAULT NULL.
	Default       *string
	DefaultIsNull bool
	Unsigned      bool
	Comment       string
	EnumValues    []string

	// Err records a failure to introspect this column. Consumers skip
	// columns carrying an error.
	Err error
}

// IndexKind is the kind of an index
type IndexKind string

const (
	IndexPrimary IndexKind = "primary"
	IndexUnique  IndexKind = "unique"
	IndexPlain   IndexKind = "index"
)

// PrimaryIndexName is the name MySQL gives every primary key.
const PrimaryIndexName = "PRIMARY"

// Index represents a database index
type Index struct {
	Name    string
	Kind    IndexKind
	Columns []string
}

// ForeignKey represents a single-column foreign key relationship
type ForeignKey struct {
	Name             string
	Column           string
	IndexName        string
	ReferencedTable  string
	ReferencedColumn string
	OnUpdate         string
	OnDelete         string
}

// NewColumn returns a column with all numeric attributes unset.
func NewColumn(name, typ string) Column {
	return Column{
		Name:      name,
		Type:      typ,
		Length:    Unset,
		Precision: Unset,
		Scale:     Unset,
	}
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// PrimaryIndex returns the primary index of the table, if any.
func (t *Table) PrimaryIndex() (*Index, bool) {
	for i := range t.Indexes {
		if t.Indexes[i].Kind == IndexPrimary {
			return &t.Indexes[i], true
		}
	}
	return nil, false
}

// PrimaryColumn returns the name of the primary key column when the
// primary index covers exactly one column.
func (t *Table) PrimaryColumn() (string, bool) {
	idx, ok := t.PrimaryIndex()
	if !ok || len(idx.Columns) != 1 {
		return "", false
	}
	return idx.Columns[0], true
}

// HasForeignKey reports whether the column owns a named foreign key.
func (t *Table) HasForeignKey(column string) bool {
	for _, fk := range t.ForeignKeys {
		if fk.Name != "" && fk.IndexName != "" && fk.Column == column {
			return true
		}
	}
	return false
}

// NonEmpty returns the schemas that contain at least one table.
func (c *Catalog) NonEmpty() []Schema {
	var out []Schema
	for _, s := range c.Schemas {
		if len(s.Tables) > 0 {
			out = append(out, s)
		}
	}
	return out
}
