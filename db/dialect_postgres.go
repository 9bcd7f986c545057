package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type postgresDialect struct{}

func (d postgresDialect) EscapeIdentifier(name string) string {
	return escapeDoubleQuoted(name)
}

func (d postgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d postgresDialect) LoadColumns(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*ColumnInfo, []string, error) {
	return loadSchemaColumns(db, schemaName, tableName)
}

func (d postgresDialect) ListTables(_ context.Context, db *sql.DB, schemaName string) ([]string, error) {
	return listSchemaTables(db, schemaName)
}

func (d postgresDialect) InsertStatement(table string, columns []string, placeholders []string, primaryColumn string) string {
	return defaultInsertStatement(table, columns, placeholders) + " RETURNING " + primaryColumn
}

func (d postgresDialect) UpdateStatement(table string, assignments []string, where string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)
}

func (d postgresDialect) DeleteStatement(table string, where string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
}

func (d postgresDialect) InsertIDStrategy() insertIDStrategy {
	return insertIDReturning
}

func (d postgresDialect) DriverSupportRowsAffected() bool {
	return true
}
