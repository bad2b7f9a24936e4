package migration

// Value is an argument of a generated call.
type Value interface {
	value()
}

// Int is an integer literal.
type Int int

// String is a single-quoted string literal.
type String string

// Bool is a boolean literal.
type Bool bool

// Number is a numeric literal emitted verbatim, without quotes.
type Number string

// Strings is an array of string literals.
type Strings []string

// Raw is a raw SQL expression wrapped in DB::raw().
type Raw string

func (Int) value()     {}
func (String) value()  {}
func (Bool) value()    {}
func (Number) value()  {}
func (Strings) value() {}
func (Raw) value()     {}
