package catalog

// Entity table names. They key the object id counters and name the
// relational catalog tables.
const (
	TablesTable           = "tables"
	ColumnsTable          = "columns"
	ColumnStatisticsTable = "column_statistics"
	IndexesTable          = "indexes"
	DataTypesTable        = "datatypes"
)

// DefaultDataTypes returns the reference data types every backend is
// seeded with.
func DefaultDataTypes() []DataType {
	types := []struct {
		name      string
		pgType    int64
		pgName    string
		qualified string
	}{
		{"INT32", 23, "int4", "integer"},
		{"INT64", 20, "int8", "bigint"},
		{"FLOAT32", 700, "float4", "real"},
		{"FLOAT64", 701, "float8", "double precision"},
		{"CHAR", 1042, "bpchar", "char"},
		{"VARCHAR", 1043, "varchar", "varchar"},
		{"NUMERIC", 1700, "numeric", "numeric"},
		{"DATE", 1082, "date", "date"},
		{"TIME", 1083, "time", "time"},
		{"TIMETZ", 1266, "timetz", "time with time zone"},
		{"TIMESTAMP", 1114, "timestamp", "timestamp"},
		{"TIMESTAMPTZ", 1184, "timestamptz", "timestamp with time zone"},
		{"INTERVAL", 1186, "interval", "interval"},
	}

	out := make([]DataType, 0, len(types))
	for i, t := range types {
		out = append(out, DataType{
			Object: Object{
				ID:            ObjectID(i + 1),
				Name:          t.name,
				FormatVersion: FormatVersion,
				Generation:    Generation,
			},
			PgDataType:              t.pgType,
			PgDataTypeName:          t.pgName,
			PgDataTypeQualifiedName: t.qualified,
		})
	}
	return out
}
