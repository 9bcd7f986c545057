package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/jimsmart/schema"
)

type UnknownDriverError struct {
	Driver string
}

// Error returns a formatted string description.
func (e UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown database driver: %s", e.Driver)
}

type insertIDStrategy int

const (
	// insertIDReturning means the insert statement yields the generated key as a row
	insertIDReturning insertIDStrategy = iota
	// insertIDLastInsert means the generated key is read from sql.Result.LastInsertId
	insertIDLastInsert
	// insertIDProvided means the engine generates nothing, the key must be part of the values
	insertIDProvided
)

type dialect interface {
	EscapeIdentifier(name string) string
	// Placeholder returns the bind parameter for the 1-based position
	Placeholder(position int) string
	LoadColumns(ctx context.Context, db *sql.DB, schemaName, tableName string) (columns []*ColumnInfo, primaryKey []string, err error)
	ListTables(ctx context.Context, db *sql.DB, schemaName string) ([]string, error)
	InsertStatement(table string, columns []string, placeholders []string, primaryColumn string) string
	UpdateStatement(table string, assignments []string, where string) string
	DeleteStatement(table string, where string) string
	InsertIDStrategy() insertIDStrategy
	DriverSupportRowsAffected() bool
}

var driverDialect = map[string]dialect{
	"postgres":   postgresDialect{}, // github.com/lib/pq
	"pgx":        postgresDialect{}, // github.com/jackc/pgx/v4/stdlib
	"mysql":      mysqlDialect{},    // github.com/go-sql-driver/mysql
	"clickhouse": clickhouseDialect{},
	"sqlite":     sqliteDialect{}, // modernc.org/sqlite
}

func tableIdentifier(d dialect, table *TableInfo) string {
	if table.schema == "" {
		return d.EscapeIdentifier(table.name)
	}
	return d.EscapeIdentifier(table.schema) + "." + d.EscapeIdentifier(table.name)
}

// loadSchemaColumns introspects through information_schema for the engines
// supported by github.com/jimsmart/schema.
func loadSchemaColumns(db *sql.DB, schemaName, tableName string) ([]*ColumnInfo, []string, error) {
	columnTypes, err := schema.ColumnTypes(db, schemaName, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieving column types: %w", err)
	}

	if len(columnTypes) == 0 {
		return nil, nil, nil
	}

	columns := make([]*ColumnInfo, len(columnTypes))
	for i, columnType := range columnTypes {
		nullable, _ := columnType.Nullable()
		columns[i] = NewColumnInfo(columnType.Name(), columnType.DatabaseTypeName(), nullable)
	}

	key, err := schema.PrimaryKey(db, schemaName, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("get primary key: %w", err)
	}

	return columns, key, nil
}

// listSchemaTables returns the sorted names of the tables found in schemaName.
func listSchemaTables(db *sql.DB, schemaName string) ([]string, error) {
	schemaTables, err := schema.Tables(db)
	if err != nil {
		return nil, fmt.Errorf("retrieving table and column information: %w", err)
	}

	var out []string
	for key := range schemaTables {
		if key[0] == schemaName {
			out = append(out, key[1])
		}
	}
	slices.Sort(out)

	return out, nil
}

func escapeDoubleQuoted(valueToEscape string) string {
	if strings.Contains(valueToEscape, `"`) {
		valueToEscape = strings.ReplaceAll(valueToEscape, `"`, `""`)
	}

	return `"` + valueToEscape + `"`
}

func escapeBackticked(valueToEscape string) string {
	if strings.Contains(valueToEscape, "`") {
		valueToEscape = strings.ReplaceAll(valueToEscape, "`", "``")
	}

	return "`" + valueToEscape + "`"
}

func defaultInsertStatement(table string, columns []string, placeholders []string) string {
	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
	)
}
