package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// clickhouseDialect maps updates and deletes to mutations, they are applied
// asynchronously by the server and report no affected rows.
type clickhouseDialect struct{}

func (d clickhouseDialect) EscapeIdentifier(name string) string {
	return escapeBackticked(name)
}

func (d clickhouseDialect) Placeholder(_ int) string {
	return "?"
}

func (d clickhouseDialect) LoadColumns(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*ColumnInfo, []string, error) {
	return loadSchemaColumns(db, schemaName, tableName)
}

func (d clickhouseDialect) ListTables(_ context.Context, db *sql.DB, schemaName string) ([]string, error) {
	return listSchemaTables(db, schemaName)
}

func (d clickhouseDialect) InsertStatement(table string, columns []string, placeholders []string, _ string) string {
	return defaultInsertStatement(table, columns, placeholders)
}

func (d clickhouseDialect) UpdateStatement(table string, assignments []string, where string) string {
	return fmt.Sprintf("ALTER TABLE %s UPDATE %s WHERE %s", table, strings.Join(assignments, ", "), where)
}

func (d clickhouseDialect) DeleteStatement(table string, where string) string {
	return fmt.Sprintf("ALTER TABLE %s DELETE WHERE %s", table, where)
}

func (d clickhouseDialect) InsertIDStrategy() insertIDStrategy {
	return insertIDProvided
}

func (d clickhouseDialect) DriverSupportRowsAffected() bool {
	return false
}
