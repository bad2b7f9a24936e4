// Package migration holds the syntax tree of a generated migration: one Unit
// per table, made of ordered statements inside a create block and optional
// alter blocks for deferred foreign keys. Rendering lives in the formatter.
package migration

// Unit is the compiled migration for a single table.
type Unit struct {
	Table string
	// Class is the migration class name, e.g. CreateUsersTable.
	Class string
	// Create holds the statements of the Schema::create block, in order.
	Create []Statement
	// Alters are Schema::table blocks appended after the create block.
	Alters []AlterBlock
}

// AlterBlock adds deferred foreign keys to an already created table.
type AlterBlock struct {
	Table       string
	ForeignKeys []ForeignKey
}

// Statement is a single statement inside a Blueprint callback.
type Statement interface {
	statement()
}

// Engine sets the storage engine: $table->engine = '<Name>';
type Engine struct {
	Name string
}

// Column declares a column: $table-><Method>('<Name>', <Args>...)<Modifiers>;
type Column struct {
	Method    string
	Name      string
	Args      []Value
	Modifiers []Call
}

// Helper is an argument-less shorthand such as id() or timestamps().
type Helper struct {
	Method string
}

// Index declares a multi-column index: $table-><Kind>([<Columns>]);
type Index struct {
	Method  string
	Columns []string
}

// ForeignKey declares a foreign key constraint.
type ForeignKey struct {
	Column string
	// IndexName is the name of the index backing the key. It is only
	// rendered when named foreign keys are requested.
	IndexName        string
	ReferencedTable  string
	ReferencedColumn string
	OnUpdate         Call
	OnDelete         Call
}

// Call is a chained method call: -><Method>(<Args>...)
type Call struct {
	Method string
	Args   []Value
}

func (Engine) statement()     {}
func (Column) statement()     {}
func (Helper) statement()     {}
func (Index) statement()      {}
func (ForeignKey) statement() {}

// Shorthand helper methods.
const (
	HelperID            = "id"
	HelperRememberToken = "rememberToken"
	HelperTimestamps    = "timestamps"
	HelperSoftDeletes   = "softDeletes"
)

// UsesRaw reports whether any column default is a raw expression.
func (u *Unit) UsesRaw() bool {
	for _, s := range u.Create {
		c, ok := s.(Column)
		if !ok {
			continue
		}
		for _, m := range c.Modifiers {
			for _, a := range m.Args {
				if _, ok := a.(Raw); ok {
					return true
				}
			}
		}
	}
	return false
}
