package db

import (
	"context"
	"fmt"

	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

// NewTestClient opens a private in-memory sqlite database and runs the given
// statements on it.
func NewTestClient(
	zlog *zap.Logger,
	tracer logging.Tracer,
	statements ...string,
) (*Client, error) {
	client, err := NewClient("sqlite::memory:", zlog, tracer)
	if err != nil {
		return nil, err
	}

	for _, statement := range statements {
		if _, err := client.ExecContext(context.Background(), statement); err != nil {
			client.Close()
			return nil, fmt.Errorf("exec %q: %w", statement, err)
		}
	}

	return client, nil
}

// TestTables returns the structure of a product table shaped like the ones the
// form processor manages, with two upload columns and a foreign select.
func TestTables() map[string]*TableInfo {
	return map[string]*TableInfo{
		"products": mustNewTableInfo("main", "products", []string{"id"}, []*ColumnInfo{
			NewColumnInfo("id", "INTEGER", false),
			NewColumnInfo("name", "VARCHAR(255)", false),
			NewColumnInfo("description", "TEXT", true),
			NewColumnInfo("price", "DECIMAL(10,2)", true),
			NewColumnInfo("available", "TINYINT(1)", true),
			NewColumnInfo("size", "VARCHAR(16)", true),
			NewColumnInfo("category", "INT", true),
			NewColumnInfo("pictures", "TEXT", true),
			NewColumnInfo("documents", "TEXT", true),
			NewColumnInfo("created_at", "DATETIME", true),
		}),
		"category": mustNewTableInfo("main", "category", []string{"id"}, []*ColumnInfo{
			NewColumnInfo("id", "INTEGER", false),
			NewColumnInfo("name", "VARCHAR(255)", false),
		}),
	}
}

// TestSchema is the sqlite schema matching TestTables.
var TestSchema = []string{
	`CREATE TABLE "category" (
		"id" INTEGER PRIMARY KEY AUTOINCREMENT,
		"name" VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE "products" (
		"id" INTEGER PRIMARY KEY AUTOINCREMENT,
		"name" VARCHAR(255) NOT NULL DEFAULT '',
		"description" TEXT,
		"price" DECIMAL(10,2),
		"available" TINYINT(1),
		"size" VARCHAR(16),
		"category" INT,
		"pictures" TEXT,
		"documents" TEXT,
		"created_at" DATETIME
	)`,
}

func mustNewTableInfo(schema, name string, pkList []string, columns []*ColumnInfo) *TableInfo {
	ti, err := NewTableInfo(schema, name, pkList, columns)
	if err != nil {
		panic(err)
	}
	return ti
}
