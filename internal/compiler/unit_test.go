package compiler

import "github.com/tordrt/migrationgen/internal/migration"

func foreignKeys(u *migration.Unit) []migration.ForeignKey {
	var out []migration.ForeignKey
	for _, s := range u.Create {
		if fk, ok := s.(migration.ForeignKey); ok {
			out = append(out, fk)
		}
	}
	return out
}

func unitColumn(u *migration.Unit, name string) (migration.Column, bool) {
	for _, s := range u.Create {
		if c, ok := s.(migration.Column); ok && c.Name == name {
			return c, true
		}
	}
	return migration.Column{}, false
}

func hasHelper(u *migration.Unit, method string) bool {
	for _, s := range u.Create {
		if h, ok := s.(migration.Helper); ok && h.Method == method {
			return true
		}
	}
	return false
}

func modifier(c migration.Column, method string) (migration.Call, bool) {
	for _, m := range c.Modifiers {
		if m.Method == method {
			return m, true
		}
	}
	return migration.Call{}, false
}

func hasModifier(c migration.Column, method string) bool {
	_, ok := modifier(c, method)
	return ok
}
