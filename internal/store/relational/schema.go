package relational

import (
	"context"
	"fmt"
	"strings"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// Column lists of the catalog tables, in select order.
var (
	tableColumns = []string{
		catalog.FieldID, catalog.FieldName, catalog.FieldFormatVersion, catalog.FieldGeneration,
		catalog.FieldNamespace, catalog.FieldTuples,
	}
	columnColumns = []string{
		catalog.FieldID, catalog.FieldName, catalog.FieldFormatVersion, catalog.FieldGeneration,
		catalog.FieldTableID, catalog.FieldOrdinalPosition, catalog.FieldDataTypeID,
		catalog.FieldNullable, catalog.FieldDefaultExpression,
	}
	statisticColumns = []string{
		catalog.FieldTableID, catalog.FieldOrdinalPosition, catalog.FieldColumnStatistic,
	}
	indexColumns = []string{
		catalog.FieldID, catalog.FieldName, catalog.FieldFormatVersion, catalog.FieldGeneration,
		catalog.FieldTableID, catalog.FieldOwnerID, catalog.FieldAccessMethod,
		catalog.FieldIsUnique, catalog.FieldIsPrimary,
		catalog.FieldNumberOfColumns, catalog.FieldNumberOfKeyColumns,
		catalog.FieldKeys, catalog.FieldKeysID, catalog.FieldOptions,
	}
	dataTypeColumns = []string{
		catalog.FieldID, catalog.FieldName, catalog.FieldFormatVersion, catalog.FieldGeneration,
		catalog.FieldPgDataType, catalog.FieldPgDataTypeName, catalog.FieldPgDataTypeQualifiedName,
	}
)

// Columns holding serialized JSON text.
var (
	statisticJSONColumns = []string{catalog.FieldColumnStatistic}
	indexJSONColumns     = []string{catalog.FieldKeys, catalog.FieldKeysID, catalog.FieldOptions}
)

// ddl returns the CREATE TABLE statements of the catalog.
func ddl(d *Dialect) []string {
	object := func(id string) []string {
		return []string{
			fmt.Sprintf("%s %s", d.Quote(catalog.FieldID), id),
			fmt.Sprintf("%s %s NOT NULL UNIQUE", d.Quote(catalog.FieldName), d.textType),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldFormatVersion)),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldGeneration)),
		}
	}
	create := func(table string, defs ...string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", d.Quote(table), strings.Join(defs, ",\n\t"))
	}

	// Column names are unique per table only, so columns get their own
	// object definition.
	columnDefs := []string{
		fmt.Sprintf("%s %s", d.Quote(catalog.FieldID), d.identityType),
		fmt.Sprintf("%s %s NOT NULL", d.Quote(catalog.FieldName), d.textType),
		fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldFormatVersion)),
		fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldGeneration)),
		fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldTableID)),
		fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldOrdinalPosition)),
		fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldDataTypeID)),
		fmt.Sprintf("%s BOOLEAN", d.Quote(catalog.FieldNullable)),
		fmt.Sprintf("%s %s", d.Quote(catalog.FieldDefaultExpression), d.textType),
		fmt.Sprintf("UNIQUE (%s)", d.columnList([]string{catalog.FieldTableID, catalog.FieldOrdinalPosition})),
	}

	return []string{
		create(catalog.TablesTable, append(object(d.identityType),
			fmt.Sprintf("%s %s", d.Quote(catalog.FieldNamespace), d.textType),
			fmt.Sprintf("%s %s NOT NULL", d.Quote(catalog.FieldTuples), d.floatType),
		)...),
		create(catalog.ColumnsTable, columnDefs...),
		create(catalog.ColumnStatisticsTable,
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldTableID)),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldOrdinalPosition)),
			fmt.Sprintf("%s TEXT", d.Quote(catalog.FieldColumnStatistic)),
			fmt.Sprintf("PRIMARY KEY (%s)", d.columnList([]string{catalog.FieldTableID, catalog.FieldOrdinalPosition})),
		),
		create(catalog.IndexesTable, append(object(d.identityType),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldTableID)),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldOwnerID)),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldAccessMethod)),
			fmt.Sprintf("%s BOOLEAN NOT NULL", d.Quote(catalog.FieldIsUnique)),
			fmt.Sprintf("%s BOOLEAN NOT NULL", d.Quote(catalog.FieldIsPrimary)),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldNumberOfColumns)),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldNumberOfKeyColumns)),
			fmt.Sprintf("%s TEXT NOT NULL", d.Quote(catalog.FieldKeys)),
			fmt.Sprintf("%s TEXT NOT NULL", d.Quote(catalog.FieldKeysID)),
			fmt.Sprintf("%s TEXT NOT NULL", d.Quote(catalog.FieldOptions)),
		)...),
		create(catalog.DataTypesTable, append(object("BIGINT PRIMARY KEY"),
			fmt.Sprintf("%s BIGINT NOT NULL", d.Quote(catalog.FieldPgDataType)),
			fmt.Sprintf("%s %s NOT NULL", d.Quote(catalog.FieldPgDataTypeName), d.textType),
			fmt.Sprintf("%s %s NOT NULL", d.Quote(catalog.FieldPgDataTypeQualifiedName), d.textType),
		)...),
	}
}

// Bootstrap creates the catalog tables when missing and seeds the data
// types when the datatypes table is empty.
func Bootstrap(ctx context.Context, client Client) error {
	d := client.Dialect()
	for _, stmt := range ddl(d) {
		if err := client.ExecDirect(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create catalog table: %w", err)
		}
	}

	const countName, seedName = "datatypes_count", "datatypes_seed"
	if err := client.Prepare(ctx, countName, fmt.Sprintf("SELECT COUNT(*) FROM %s", d.Quote(catalog.DataTypesTable))); err != nil {
		return err
	}
	result, err := client.Query(ctx, countName)
	if err != nil {
		return fmt.Errorf("failed to count data types: %w", err)
	}
	if len(result.Rows) == 1 && !isZero(result.Rows[0][0]) {
		return nil
	}

	if err := client.Prepare(ctx, seedName, insertStatement(d, catalog.DataTypesTable, dataTypeColumns, false)); err != nil {
		return err
	}
	for _, dt := range catalog.DefaultDataTypes() {
		_, err := client.Exec(ctx, seedName,
			int64(dt.ID), dt.Name, dt.FormatVersion, dt.Generation,
			dt.PgDataType, dt.PgDataTypeName, dt.PgDataTypeQualifiedName)
		if err != nil {
			return fmt.Errorf("failed to seed data type %s: %w", dt.Name, err)
		}
	}
	return nil
}

func isZero(v any) bool {
	switch x := v.(type) {
	case int64:
		return x == 0
	case int32:
		return x == 0
	case int:
		return x == 0
	case []byte:
		return string(x) == "0"
	case string:
		return x == "0"
	}
	return false
}
