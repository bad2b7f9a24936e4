package compiler

// Blueprint method names the compiler treats specially.
const (
	methodBigIncrements = "bigIncrements"
	methodBoolean       = "boolean"
	methodChar          = "char"
	methodDecimal       = "decimal"
	methodDouble        = "double"
	methodEnum          = "enum"
	methodInteger       = "integer"
	methodString        = "string"
	methodUnsignedInt   = "unsignedInteger"
	methodUUID          = "uuid"
)

// Synthetic type tags produced by primary key and boolean inference.
const (
	tagBigIncrements    = "BIG_INCREMENTS"
	tagMediumIncrements = "MEDIUM_INCREMENTS"
	tagIncrements       = "INCREMENTS"
	tagBoolean          = "BOOLEAN"
	tagUUID             = "UUID"
)

// defaultStringLength is the width Blueprint::string() uses when none is given.
const defaultStringLength = 255

// typeMethods maps native type tags to Blueprint methods. A "u" prefix selects
// the unsigned variant. An empty method drops the column.
var typeMethods = map[string]string{
	tagBigIncrements:     "bigIncrements",
	tagMediumIncrements:  "mediumIncrements",
	tagIncrements:        "increments",
	"TINYINT":            "tinyInteger",
	"uTINYINT":           "unsignedTinyInteger",
	"SMALLINT":           "smallInteger",
	"uSMALLINT":          "unsignedSmallInteger",
	"MEDIUMINT":          "mediumInteger",
	"uMEDIUMINT":         "unsignedMediumInteger",
	"INT":                "integer",
	"uINT":               "unsignedInteger",
	"BIGINT":             "bigInteger",
	"uBIGINT":            "unsignedBigInteger",
	"FLOAT":              "float",
	"DOUBLE":             "double",
	"DECIMAL":            "decimal",
	"JSON":               "json",
	"CHAR":               "char",
	"VARCHAR":            "string",
	"BINARY":             "binary",
	"VARBINARY":          "",
	"TINYTEXT":           "text",
	"TEXT":               "text",
	"MEDIUMTEXT":         "mediumText",
	"LONGTEXT":           "longText",
	"TINYBLOB":           "binary",
	"BLOB":               "binary",
	"MEDIUMBLOB":         "binary",
	"LONGBLOB":           "binary",
	"DATETIME":           "dateTime",
	"DATETIME_F":         "dateTime",
	"DATE":               "date",
	"DATE_F":             "date",
	"TIME":               "time",
	"TIME_F":             "time",
	"TIMESTAMP":          "timestamp",
	"TIMESTAMP_F":        "timestamp",
	"YEAR":               "smallInteger",
	"GEOMETRY":           "",
	"POINT":              "",
	"LINESTRING":         "",
	"POLYGON":            "",
	"MULTIPOINT":         "",
	"MULTILINESTRING":    "",
	"MULTIPOLYGON":       "",
	"GEOMETRYCOLLECTION": "",
	"BIT":                "",
	"ENUM":               "enum",
	"SET":                "",
	tagBoolean:           "boolean",
	"BOOL":               "boolean",
	"FIXED":              "",
	"FLOAT4":             "",
	"FLOAT8":             "",
	"INT1":               "tinyInteger",
	"uINT1":              "unsignedTinyInteger",
	"INT2":               "smallInteger",
	"uINT2":              "unsignedSmallInteger",
	"INT3":               "mediumInteger",
	"uINT3":              "unsignedMediumInteger",
	"INT4":               "integer",
	"uINT4":              "unsignedInteger",
	"INT8":               "bigInteger",
	"uINT8":              "unsignedBigInteger",
	"INTEGER":            "integer",
	"uINTEGER":           "unsignedInteger",
	"LONGVARBINARY":      "",
	"LONGVARCHAR":        "",
	"LONG":               "",
	"MIDDLEINT":          "mediumInteger",
	"NUMERIC":            "decimal",
	"DEC":                "decimal",
	"CHARACTER":          "char",
	tagUUID:              "uuid",
}

// unsignedVariants are the tags that switch to their "u" entry when the
// column is unsigned.
var unsignedVariants = map[string]bool{
	"TINYINT":   true,
	"SMALLINT":  true,
	"MEDIUMINT": true,
	"INT":       true,
	"BIGINT":    true,
}

// plainIntegers additionally get ->unsigned() chained when unsigned.
// XXX: redundant next to unsignedInteger(); kept so output matches existing migrations.
var plainIntegers = map[string]bool{
	"INT":     true,
	"INTEGER": true,
	"INT4":    true,
}

// numericTags form the numeric type group; their defaults are emitted unquoted.
var numericTags = map[string]bool{
	"TINYINT":   true,
	"SMALLINT":  true,
	"MEDIUMINT": true,
	"MIDDLEINT": true,
	"INT":       true,
	"INTEGER":   true,
	"BIGINT":    true,
	"INT1":      true,
	"INT2":      true,
	"INT3":      true,
	"INT4":      true,
	"INT8":      true,
	"FLOAT":     true,
	"FLOAT4":    true,
	"FLOAT8":    true,
	"DOUBLE":    true,
	"REAL":      true,
	"DECIMAL":   true,
	"NUMERIC":   true,
	"DEC":       true,
	"FIXED":     true,
	"BIT":       true,
	"BOOL":      true,
	"BOOLEAN":   true,
}

// currentTimestampDefaults are emitted as DB::raw() expressions.
var currentTimestampDefaults = map[string]bool{
	"CURRENT_TIMESTAMP":                             true,
	"NULL ON UPDATE CURRENT_TIMESTAMP":              true,
	"CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP": true,
}

// lookupMethod returns the Blueprint method for a tag and whether the tag is known.
func lookupMethod(tag string) (string, bool) {
	m, ok := typeMethods[tag]
	return m, ok
}
