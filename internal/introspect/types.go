package introspect

import (
	"strings"
)

// typeNames maps source column types to catalog data type names.
var typeNames = map[string]string{
	"smallint":                    "INT32",
	"int2":                        "INT32",
	"tinyint":                     "INT32",
	"mediumint":                   "INT32",
	"int":                         "INT32",
	"int4":                        "INT32",
	"integer":                     "INT32",
	"serial":                      "INT32",
	"bigint":                      "INT64",
	"int8":                        "INT64",
	"bigserial":                   "INT64",
	"real":                        "FLOAT32",
	"float4":                      "FLOAT32",
	"float":                       "FLOAT32",
	"double":                      "FLOAT64",
	"double precision":            "FLOAT64",
	"float8":                      "FLOAT64",
	"char":                        "CHAR",
	"character":                   "CHAR",
	"bpchar":                      "CHAR",
	"nchar":                       "CHAR",
	"varchar":                     "VARCHAR",
	"character varying":           "VARCHAR",
	"nvarchar":                    "VARCHAR",
	"text":                        "VARCHAR",
	"tinytext":                    "VARCHAR",
	"mediumtext":                  "VARCHAR",
	"longtext":                    "VARCHAR",
	"clob":                        "VARCHAR",
	"numeric":                     "NUMERIC",
	"decimal":                     "NUMERIC",
	"date":                        "DATE",
	"time":                        "TIME",
	"time without time zone":      "TIME",
	"timetz":                      "TIMETZ",
	"time with time zone":         "TIMETZ",
	"timestamp":                   "TIMESTAMP",
	"timestamp without time zone": "TIMESTAMP",
	"datetime":                    "TIMESTAMP",
	"timestamptz":                 "TIMESTAMPTZ",
	"timestamp with time zone":    "TIMESTAMPTZ",
	"interval":                    "INTERVAL",
}

// unmapped lists types whose names would otherwise hit an affinity
// fallback (PostgreSQL geometric types).
var unmapped = map[string]bool{
	"point":   true,
	"line":    true,
	"lseg":    true,
	"box":     true,
	"path":    true,
	"polygon": true,
	"circle":  true,
}

// MapType returns the catalog data type name for a source column type,
// or "" when the type has no catalog counterpart. Length, precision and
// unsigned modifiers are ignored. Unknown types fall back to SQLite type
// affinity rules.
func MapType(sourceType string) string {
	t := strings.ToLower(strings.TrimSpace(sourceType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(t[i:], ')'); j >= 0 {
			rest = t[i+j+1:]
		}
		t = strings.TrimSpace(t[:i] + rest)
	}
	t = strings.TrimSpace(strings.TrimSuffix(t, " unsigned"))

	if strings.HasSuffix(t, "[]") || strings.HasSuffix(t, "range") || unmapped[t] {
		return ""
	}
	if name, ok := typeNames[t]; ok {
		return name
	}

	// Float names are matched first: "floating point" contains "int".
	switch {
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return "FLOAT64"
	case strings.Contains(t, "int"):
		return "INT64"
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), strings.Contains(t, "text"):
		return "VARCHAR"
	}
	return ""
}
