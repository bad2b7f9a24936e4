// Package compiler turns tables of a schema into Laravel migration units.
//
// Tables are compiled in the order given by the dependency waves. A foreign
// key whose referenced table has already been compiled (the table itself
// included) is declared inline; otherwise it is queued and declared in an
// alter block of the referenced table's migration once that table is compiled.
package compiler

import (
	"sort"
	"strings"

	"github.com/shopmonkeyus/go-common/logger"
	"github.com/tordrt/migrationgen/internal/migration"
	"github.com/tordrt/migrationgen/internal/resolver"
	"github.com/tordrt/migrationgen/internal/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultEngine is the engine tables get when no engine directive is emitted.
const DefaultEngine = "InnoDB"

// Options configures the compiler.
type Options struct {
	// DefaultEngine is the implicit storage engine. Defaults to InnoDB.
	DefaultEngine string
	// WarnDroppedTypes logs columns dropped for lack of a Blueprint type
	// as warnings instead of debug messages.
	WarnDroppedTypes bool
	Logger           logger.Logger
}

// Compiler compiles schemas into migration units. A Compiler holds no state
// between runs and can be reused.
type Compiler struct {
	engine      string
	warnDropped bool
	logger      logger.Logger
}

// Result is the output of one compilation run.
type Result struct {
	Waves [][]string
	// Units are ordered by creation order.
	Units      []*migration.Unit
	Skipped    []ColumnError
	Dropped    []DroppedColumn
	Unresolved []UnresolvedForeignKey
}

// New creates a compiler.
func New(opts Options) *Compiler {
	c := &Compiler{
		engine:      opts.DefaultEngine,
		warnDropped: opts.WarnDroppedTypes,
		logger:      opts.Logger,
	}
	if c.engine == "" {
		c.engine = DefaultEngine
	}
	if c.logger == nil {
		c.logger = logger.NewConsoleLogger()
	}
	c.logger = c.logger.WithPrefix("[compiler]")
	return c
}

// Run resolves the creation order of the schema tables and compiles them.
// A circular foreign-key reference aborts the run without output.
func (c *Compiler) Run(s *schema.Schema) (*Result, error) {
	waves, err := resolver.Resolve(s.Tables)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolved %d tables into %d waves", len(s.Tables), len(waves))
	return c.Compile(s, waves), nil
}

// Compile compiles the tables named in waves, in order. Names without a
// matching table are ignored.
func (c *Compiler) Compile(s *schema.Schema, waves [][]string) *Result {
	r := &run{
		Compiler:  c,
		processed: make(map[string]bool),
		deferred:  make(map[string][]pendingKey),
		result:    &Result{Waves: waves},
	}

	for _, name := range resolver.Order(waves) {
		t, ok := s.Table(name)
		if !ok {
			continue
		}
		r.result.Units = append(r.result.Units, r.table(t))
	}

	r.unresolved()
	return r.result
}

// run is the state of a single compilation.
type run struct {
	*Compiler
	processed map[string]bool
	// deferred holds foreign keys keyed by the table they reference.
	deferred map[string][]pendingKey
	result   *Result
}

type pendingKey struct {
	owner string
	key   migration.ForeignKey
}

func (r *run) table(t *schema.Table) *migration.Unit {
	r.processed[t.Name] = true

	u := &migration.Unit{
		Table: t.Name,
		Class: ClassName(t.Name),
	}

	if t.Engine != "" && t.Engine != r.engine {
		u.Create = append(u.Create, migration.Engine{Name: t.Engine})
	}

	tc := newTableContext(t)
	for i := range t.Columns {
		stmt, err := tc.column(&t.Columns[i])
		if err != nil {
			r.columnError(t.Name, &t.Columns[i], err)
			continue
		}
		if stmt != nil {
			u.Create = append(u.Create, stmt)
		}
	}

	if tc.timestamps {
		u.Create = append(u.Create, migration.Helper{Method: migration.HelperTimestamps})
	}
	if tc.softDeletes {
		u.Create = append(u.Create, migration.Helper{Method: migration.HelperSoftDeletes})
	}

	u.Create = append(u.Create, compositeIndexes(t)...)

	for _, fk := range t.ForeignKeys {
		if fk.Name == "" || fk.IndexName == "" || fk.ReferencedTable == "" || fk.ReferencedColumn == "" {
			continue
		}
		key := foreignKey(t.Name, fk)
		if r.processed[fk.ReferencedTable] {
			u.Create = append(u.Create, key)
			continue
		}
		r.logger.Debug("deferring foreign key %s.%s until %s is created", t.Name, fk.Column, fk.ReferencedTable)
		r.deferred[fk.ReferencedTable] = append(r.deferred[fk.ReferencedTable], pendingKey{owner: t.Name, key: key})
	}

	u.Alters = alterBlocks(r.deferred[t.Name])
	delete(r.deferred, t.Name)

	return u
}

func (r *run) columnError(table string, col *schema.Column, err error) {
	var dropped *droppedTypeError
	if asDropped(err, &dropped) {
		r.result.Dropped = append(r.result.Dropped, DroppedColumn{Table: table, Column: col.Name, Type: dropped.tag})
		if r.warnDropped {
			r.logger.Warn("dropping column %s.%s: type %s has no migration equivalent", table, col.Name, dropped.tag)
		} else {
			r.logger.Debug("dropping column %s.%s: type %s has no migration equivalent", table, col.Name, dropped.tag)
		}
		return
	}
	r.result.Skipped = append(r.result.Skipped, ColumnError{Table: table, Column: col.Name, Err: err})
	r.logger.Warn("skipping column %s.%s: %s", table, col.Name, err)
}

// unresolved reports keys whose referenced table was never compiled.
func (r *run) unresolved() {
	refs := make([]string, 0, len(r.deferred))
	for ref := range r.deferred {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		for _, p := range r.deferred[ref] {
			r.result.Unresolved = append(r.result.Unresolved, UnresolvedForeignKey{
				Table:           p.owner,
				Column:          p.key.Column,
				ReferencedTable: ref,
			})
			r.logger.Warn("foreign key %s.%s references %s which is not part of the schema, it was not emitted", p.owner, p.key.Column, ref)
		}
	}
}

// alterBlocks groups consecutive keys of the same owning table into one block.
func alterBlocks(pending []pendingKey) []migration.AlterBlock {
	var blocks []migration.AlterBlock
	for _, p := range pending {
		if n := len(blocks); n > 0 && blocks[n-1].Table == p.owner {
			blocks[n-1].ForeignKeys = append(blocks[n-1].ForeignKeys, p.key)
			continue
		}
		blocks = append(blocks, migration.AlterBlock{
			Table:       p.owner,
			ForeignKeys: []migration.ForeignKey{p.key},
		})
	}
	return blocks
}

// compositeIndexes declares every index spanning more than one column,
// grouped primary, unique, then plain.
func compositeIndexes(t *schema.Table) []migration.Statement {
	var out []migration.Statement
	for _, kind := range []schema.IndexKind{schema.IndexPrimary, schema.IndexUnique, schema.IndexPlain} {
		for _, idx := range t.Indexes {
			if idx.Kind != kind || len(idx.Columns) < 2 {
				continue
			}
			out = append(out, migration.Index{
				Method:  string(kind),
				Columns: append([]string(nil), idx.Columns...),
			})
		}
	}
	return out
}

// ClassName returns the migration class for a table: users_roles -> CreateUsersRolesTable.
func ClassName(table string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString("Create")
	for _, part := range strings.Split(table, "_") {
		b.WriteString(caser.String(part))
	}
	b.WriteString("Table")
	return b.String()
}
