package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/streamingfast/logging"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"maps"
)

// Make the typing a bit easier
type OrderedMap[K comparable, V any] struct {
	*orderedmap.OrderedMap[K, V]
}

func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{OrderedMap: orderedmap.New[K, V]()}
}

var ErrRowNotFound = errors.New("row not found")

type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("table %q does not exist", e.Table)
}

// Client reads table structures and persists rows for the form processor. Table
// structures are introspected lazily and cached for the lifetime of the client.
type Client struct {
	*sql.DB

	dsn     *DSN
	dialect dialect

	tablesLock sync.RWMutex
	tables     map[string]*TableInfo

	logger *zap.Logger
	tracer logging.Tracer
}

func NewClient(dsnString string, logger *zap.Logger, tracer logging.Tracer) (*Client, error) {
	dsn, err := ParseDSN(dsnString)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	db, err := sql.Open(dsn.driver, dsn.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open db connection: %w", err)
	}

	if dsn.driver == "sqlite" {
		// Every new connection to an in-memory database is a distinct database
		db.SetMaxOpenConns(1)
	}

	dialect, found := driverDialect[dsn.driver]
	if !found {
		return nil, UnknownDriverError{Driver: dsn.driver}
	}

	logger.Debug("created new DB client",
		zap.String("driver", dsn.driver),
		zap.String("database", dsn.database),
		zap.String("schema", dsn.schema),
		zap.String("host", dsn.host),
		zap.Int64("port", dsn.port),
	)

	return &Client{
		DB:      db,
		dsn:     dsn,
		dialect: dialect,
		tables:  map[string]*TableInfo{},
		logger:  logger,
		tracer:  tracer,
	}, nil
}

// GetIdentifier returns <database>/<schema> suitable for user presentation
func (c *Client) GetIdentifier() string {
	return fmt.Sprintf("%s/%s", c.dsn.database, c.dsn.schema)
}

// LoadTable returns the structure of the table, introspecting the database the
// first time a table is requested.
func (c *Client) LoadTable(ctx context.Context, name string) (*TableInfo, error) {
	c.tablesLock.RLock()
	table, found := c.tables[name]
	c.tablesLock.RUnlock()
	if found {
		return table, nil
	}

	columns, primaryKey, err := c.dialect.LoadColumns(ctx, c.DB, c.dsn.schema, name)
	if err != nil {
		return nil, fmt.Errorf("load columns of %q: %w", name, err)
	}

	if len(columns) == 0 {
		return nil, &UnknownTableError{Table: name}
	}

	table, err = NewTableInfo(c.dsn.schema, name, primaryKey, columns)
	if err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}

	c.logger.Debug("loaded table structure",
		zap.String("table_name", name),
		zap.Int("column_count", table.columns.Len()),
		zap.String("primary_column", table.primaryColumn.name),
	)

	c.tablesLock.Lock()
	c.tables[name] = table
	c.tablesLock.Unlock()

	return table, nil
}

// ListTables returns the names of the tables of the client's schema, sorted.
func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.dialect.ListTables(ctx, c.DB, c.dsn.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables of %s: %w", c.GetIdentifier(), err)
	}
	return tables, nil
}

// HasTable reports whether the table has already been loaded.
func (c *Client) HasTable(tableName string) bool {
	c.tablesLock.RLock()
	defer c.tablesLock.RUnlock()

	_, found := c.tables[tableName]
	return found
}

func (c *Client) GetAvailableTables() string {
	c.tablesLock.RLock()
	defer c.tablesLock.RUnlock()

	tables := slices.Sorted(maps.Keys(c.tables))

	return strings.Join(tables, ", ")
}

func (c *Client) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("driver", c.dsn.driver)
	encoder.AddString("identifier", c.GetIdentifier())
	return nil
}
