package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

type sqliteDialect struct{}

func (d sqliteDialect) EscapeIdentifier(name string) string {
	return escapeDoubleQuoted(name)
}

func (d sqliteDialect) Placeholder(_ int) string {
	return "?"
}

// LoadColumns reads PRAGMA table_info, the pk column of the pragma is the
// 1-based position of the column inside the primary key.
func (d sqliteDialect) LoadColumns(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*ColumnInfo, []string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.table_info(%s)", d.EscapeIdentifier(schemaName), d.EscapeIdentifier(tableName)))
	if err != nil {
		return nil, nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	type keyPart struct {
		position int
		name     string
	}

	var columns []*ColumnInfo
	var keyParts []keyPart
	for rows.Next() {
		var cid, notNull, pk int
		var name, typeName string
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &name, &typeName, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, fmt.Errorf("scan table info: %w", err)
		}

		columns = append(columns, NewColumnInfo(name, strings.ToUpper(typeName), notNull == 0))
		if pk > 0 {
			keyParts = append(keyParts, keyPart{pk, name})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate table info: %w", err)
	}

	sort.Slice(keyParts, func(i, j int) bool { return keyParts[i].position < keyParts[j].position })
	primaryKey := make([]string, len(keyParts))
	for i, part := range keyParts {
		primaryKey[i] = part.name
	}

	return columns, primaryKey, nil
}

func (d sqliteDialect) ListTables(ctx context.Context, db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM %s.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name", d.EscapeIdentifier(schemaName)))
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		out = append(out, name)
	}

	return out, rows.Err()
}

func (d sqliteDialect) InsertStatement(table string, columns []string, placeholders []string, _ string) string {
	return defaultInsertStatement(table, columns, placeholders)
}

func (d sqliteDialect) UpdateStatement(table string, assignments []string, where string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)
}

func (d sqliteDialect) DeleteStatement(table string, where string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
}

func (d sqliteDialect) InsertIDStrategy() insertIDStrategy {
	return insertIDLastInsert
}

func (d sqliteDialect) DriverSupportRowsAffected() bool {
	return true
}
