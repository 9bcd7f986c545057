package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type mysqlDialect struct{}

func (d mysqlDialect) EscapeIdentifier(name string) string {
	return escapeBackticked(name)
}

func (d mysqlDialect) Placeholder(_ int) string {
	return "?"
}

func (d mysqlDialect) LoadColumns(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*ColumnInfo, []string, error) {
	return loadSchemaColumns(db, schemaName, tableName)
}

func (d mysqlDialect) ListTables(_ context.Context, db *sql.DB, schemaName string) ([]string, error) {
	return listSchemaTables(db, schemaName)
}

func (d mysqlDialect) InsertStatement(table string, columns []string, placeholders []string, _ string) string {
	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s () VALUES ()", table)
	}
	return defaultInsertStatement(table, columns, placeholders)
}

func (d mysqlDialect) UpdateStatement(table string, assignments []string, where string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)
}

func (d mysqlDialect) DeleteStatement(table string, where string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
}

func (d mysqlDialect) InsertIDStrategy() insertIDStrategy {
	return insertIDLastInsert
}

func (d mysqlDialect) DriverSupportRowsAffected() bool {
	return true
}
