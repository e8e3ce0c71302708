package relational

import (
	"fmt"
	"strings"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// Statement names.
const (
	stmtTablesInsert       = "tables_insert"
	stmtTablesSelectByID   = "tables_select_by_id"
	stmtTablesSelectByName = "tables_select_by_name"
	stmtTablesSelectAll    = "tables_select_all"
	stmtTablesUpdateTuples = "tables_update_tuples"
	stmtTablesDelete       = "tables_delete"

	stmtColumnsInsert        = "columns_insert"
	stmtColumnsSelectByTable = "columns_select_by_table"
	stmtColumnsDeleteByTable = "columns_delete_by_table"

	stmtStatisticsUpsert        = "statistics_upsert"
	stmtStatisticsSelect        = "statistics_select"
	stmtStatisticsSelectByTable = "statistics_select_by_table"
	stmtStatisticsDelete        = "statistics_delete"
	stmtStatisticsDeleteByTable = "statistics_delete_by_table"

	stmtIndexesInsert       = "indexes_insert"
	stmtIndexesSelectByID   = "indexes_select_by_id"
	stmtIndexesSelectByName = "indexes_select_by_name"
	stmtIndexesSelectAll    = "indexes_select_all"
	stmtIndexesUpdate       = "indexes_update"
	stmtIndexesDelete       = "indexes_delete"

	stmtDataTypesSelectByID   = "datatypes_select_by_id"
	stmtDataTypesSelectByName = "datatypes_select_by_name"
	stmtDataTypesSelectAll    = "datatypes_select_all"
)

// statements returns every named statement of the catalog for d.
func statements(d *Dialect) map[string]string {
	id, name := d.Quote(catalog.FieldID), d.Quote(catalog.FieldName)
	tableID, ordinal := d.Quote(catalog.FieldTableID), d.Quote(catalog.FieldOrdinalPosition)

	tables := d.Quote(catalog.TablesTable)
	columns := d.Quote(catalog.ColumnsTable)
	statistics := d.Quote(catalog.ColumnStatisticsTable)
	indexes := d.Quote(catalog.IndexesTable)
	datatypes := d.Quote(catalog.DataTypesTable)

	selectFrom := func(table string, cols []string) string {
		return fmt.Sprintf("SELECT %s FROM %s", d.columnList(cols), table)
	}

	// Every index column but id and the stamps, then the id.
	updated := append([]string{catalog.FieldName}, indexColumns[4:]...)
	indexUpdate := make([]string, len(updated))
	for i, c := range updated {
		indexUpdate[i] = fmt.Sprintf("%s = $%d", d.Quote(c), i+1)
	}
	n := len(updated)

	return map[string]string{
		stmtTablesInsert:       insertStatement(d, catalog.TablesTable, tableColumns[1:], d.Returning()),
		stmtTablesSelectByID:   selectFrom(tables, tableColumns) + fmt.Sprintf(" WHERE %s = $1", id),
		stmtTablesSelectByName: selectFrom(tables, tableColumns) + fmt.Sprintf(" WHERE %s = $1", name),
		stmtTablesSelectAll:    selectFrom(tables, tableColumns) + fmt.Sprintf(" ORDER BY %s", id),
		stmtTablesUpdateTuples: fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2", tables, d.Quote(catalog.FieldTuples), id),
		stmtTablesDelete:       fmt.Sprintf("DELETE FROM %s WHERE %s = $1", tables, id),

		stmtColumnsInsert:        insertStatement(d, catalog.ColumnsTable, columnColumns[1:], d.Returning()),
		stmtColumnsSelectByTable: selectFrom(columns, columnColumns) + fmt.Sprintf(" WHERE %s = $1 ORDER BY %s", tableID, ordinal),
		stmtColumnsDeleteByTable: fmt.Sprintf("DELETE FROM %s WHERE %s = $1", columns, tableID),

		stmtStatisticsUpsert:        insertStatement(d, catalog.ColumnStatisticsTable, statisticColumns, false) + " " + d.upsertClause,
		stmtStatisticsSelect:        selectFrom(statistics, statisticColumns) + fmt.Sprintf(" WHERE %s = $1 AND %s = $2", tableID, ordinal),
		stmtStatisticsSelectByTable: selectFrom(statistics, statisticColumns) + fmt.Sprintf(" WHERE %s = $1 ORDER BY %s", tableID, ordinal),
		stmtStatisticsDelete:        fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2", statistics, tableID, ordinal),
		stmtStatisticsDeleteByTable: fmt.Sprintf("DELETE FROM %s WHERE %s = $1", statistics, tableID),

		stmtIndexesInsert:       insertStatement(d, catalog.IndexesTable, indexColumns[1:], d.Returning()),
		stmtIndexesSelectByID:   selectFrom(indexes, indexColumns) + fmt.Sprintf(" WHERE %s = $1", id),
		stmtIndexesSelectByName: selectFrom(indexes, indexColumns) + fmt.Sprintf(" WHERE %s = $1", name),
		stmtIndexesSelectAll:    selectFrom(indexes, indexColumns) + fmt.Sprintf(" ORDER BY %s", id),
		stmtIndexesUpdate:       fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", indexes, strings.Join(indexUpdate, ", "), id, n+1),
		stmtIndexesDelete:       fmt.Sprintf("DELETE FROM %s WHERE %s = $1", indexes, id),

		stmtDataTypesSelectByID:   selectFrom(datatypes, dataTypeColumns) + fmt.Sprintf(" WHERE %s = $1", id),
		stmtDataTypesSelectByName: selectFrom(datatypes, dataTypeColumns) + fmt.Sprintf(" WHERE %s = $1", name),
		stmtDataTypesSelectAll:    selectFrom(datatypes, dataTypeColumns) + fmt.Sprintf(" ORDER BY %s", id),
	}
}

// insertStatement renders an INSERT of cols into table, optionally
// returning the generated id.
func insertStatement(d *Dialect, table string, cols []string, returning bool) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Quote(table), d.columnList(cols), strings.Join(placeholders, ", "))
	if returning {
		stmt += " RETURNING " + d.Quote(catalog.FieldID)
	}
	return stmt
}
