package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/migrationgen/internal/migration"
)

const (
	indentBody      = "        "
	indentStatement = "            "
	indentChain     = "                  "
)

// PHPOptions controls how migration units are rendered.
type PHPOptions struct {
	// NamedForeignKeys passes the backing index name as the second
	// argument of $table->foreign().
	NamedForeignKeys bool
}

// Render returns the PHP source of the migration class for u.
func Render(u *migration.Unit, opts PHPOptions) string {
	r := renderer{opts: opts}
	r.unit(u)
	return r.b.String()
}

type renderer struct {
	b    strings.Builder
	opts PHPOptions
}

func (r *renderer) unit(u *migration.Unit) {
	r.b.WriteString("<?php\n\n")
	r.b.WriteString("use Illuminate\\Database\\Migrations\\Migration;\n")
	r.b.WriteString("use Illuminate\\Database\\Schema\\Blueprint;\n")
	if u.UsesRaw() {
		r.b.WriteString("use Illuminate\\Support\\Facades\\DB;\n")
	}
	r.b.WriteString("use Illuminate\\Support\\Facades\\Schema;\n\n")

	_, _ = fmt.Fprintf(&r.b, "class %s extends Migration\n{\n", u.Class)
	r.docBlock("Run the migrations.")
	r.b.WriteString("    public function up()\n    {\n")

	_, _ = fmt.Fprintf(&r.b, "%sSchema::create(%s, function (Blueprint $table) {\n", indentBody, quote(u.Table))
	for _, s := range u.Create {
		r.statement(s)
	}
	r.b.WriteString(indentBody + "});\n")

	for _, block := range u.Alters {
		_, _ = fmt.Fprintf(&r.b, "\n%sSchema::table(%s, function (Blueprint $table) {\n", indentBody, quote(block.Table))
		for _, fk := range block.ForeignKeys {
			r.foreignKey(fk)
		}
		r.b.WriteString(indentBody + "});\n")
	}

	r.b.WriteString("    }\n\n")
	r.docBlock("Reverse the migrations.")
	r.b.WriteString("    public function down()\n    {\n")
	_, _ = fmt.Fprintf(&r.b, "%sSchema::dropIfExists(%s);\n", indentBody, quote(u.Table))
	r.b.WriteString("    }\n}\n")
}

func (r *renderer) docBlock(summary string) {
	_, _ = fmt.Fprintf(&r.b, "    /**\n     * %s\n     *\n     * @return void\n     */\n", summary)
}

func (r *renderer) statement(s migration.Statement) {
	switch s := s.(type) {
	case migration.Engine:
		_, _ = fmt.Fprintf(&r.b, "%s$table->engine = %s;\n", indentStatement, quote(s.Name))
	case migration.Helper:
		_, _ = fmt.Fprintf(&r.b, "%s$table->%s();\n", indentStatement, s.Method)
	case migration.Column:
		args := append([]migration.Value{migration.String(s.Name)}, s.Args...)
		_, _ = fmt.Fprintf(&r.b, "%s$table->%s(%s)", indentStatement, s.Method, values(args))
		for _, m := range s.Modifiers {
			r.b.WriteString(call(m))
		}
		r.b.WriteString(";\n")
	case migration.Index:
		_, _ = fmt.Fprintf(&r.b, "\n%s$table->%s(%s);\n", indentStatement, s.Method, value(migration.Strings(s.Columns)))
	case migration.ForeignKey:
		r.foreignKey(s)
	}
}

func (r *renderer) foreignKey(fk migration.ForeignKey) {
	args := []migration.Value{migration.String(fk.Column)}
	if r.opts.NamedForeignKeys && fk.IndexName != "" {
		args = append(args, migration.String(fk.IndexName))
	}
	_, _ = fmt.Fprintf(&r.b, "\n%s$table->foreign(%s)\n", indentStatement, values(args))
	_, _ = fmt.Fprintf(&r.b, "%s->references(%s)->on(%s)\n", indentChain, quote(fk.ReferencedColumn), quote(fk.ReferencedTable))
	_, _ = fmt.Fprintf(&r.b, "%s%s\n", indentChain, call(fk.OnUpdate))
	_, _ = fmt.Fprintf(&r.b, "%s%s;\n", indentChain, call(fk.OnDelete))
}

func call(c migration.Call) string {
	return "->" + c.Method + "(" + values(c.Args) + ")"
}

func values(vs []migration.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = value(v)
	}
	return strings.Join(parts, ", ")
}

func value(v migration.Value) string {
	switch v := v.(type) {
	case migration.Int:
		return strconv.Itoa(int(v))
	case migration.String:
		return quote(string(v))
	case migration.Bool:
		return strconv.FormatBool(bool(v))
	case migration.Number:
		return string(v)
	case migration.Strings:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case migration.Raw:
		return "DB::raw(" + quote(string(v)) + ")"
	}
	return ""
}

var phpEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\x00", `\0`)

// quote returns s as a single-quoted PHP string literal.
func quote(s string) string {
	return "'" + phpEscaper.Replace(s) + "'"
}
