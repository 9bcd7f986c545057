package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bobg/go-generics/v2/slices"
	"github.com/lithammer/dedent"
	"go.uber.org/zap"
)

// Row holds the values of one table row keyed by column name, NULL is
// represented by an empty string.
type Row map[string]string

type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// ParseSortDirection accepts 'asc' and 'desc' in any case, anything else is ascending.
func ParseSortDirection(in string) SortDirection {
	if strings.EqualFold(in, string(SortDescending)) {
		return SortDescending
	}
	return SortAscending
}

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortDescending {
		return SortAscending
	}
	return SortDescending
}

// Option is one entry of a foreign table rendered as a select option.
type Option struct {
	Value string
	Label string
}

type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SelectRows returns every row of the table ordered by orderBy. An unknown
// orderBy column falls back to the primary key.
func (c *Client) SelectRows(ctx context.Context, tableName string, orderBy string, direction SortDirection) (*TableInfo, []Row, error) {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return nil, nil, err
	}

	orderColumn := table.primaryColumn
	if column, found := table.Column(orderBy); found {
		orderColumn = column
	}

	if direction != SortDescending {
		direction = SortAscending
	}

	rows, err := c.queryRows(ctx, table, query(`
		SELECT %s FROM %s ORDER BY %s %s
	`, c.selectColumns(table), tableIdentifier(c.dialect, table), c.dialect.EscapeIdentifier(orderColumn.name), direction))
	if err != nil {
		return nil, nil, fmt.Errorf("select rows of %q: %w", tableName, err)
	}

	return table, rows, nil
}

// SelectRow returns the row identified by id or ErrRowNotFound.
func (c *Client) SelectRow(ctx context.Context, tableName string, id string) (*TableInfo, Row, error) {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return nil, nil, err
	}

	rows, err := c.queryRows(ctx, table, query(`
		SELECT %s FROM %s WHERE %s = %s
	`, c.selectColumns(table), tableIdentifier(c.dialect, table), c.dialect.EscapeIdentifier(table.primaryColumn.name), c.dialect.Placeholder(1)), id)
	if err != nil {
		return nil, nil, fmt.Errorf("select row %s of %q: %w", id, tableName, err)
	}

	if len(rows) == 0 {
		return nil, nil, ErrRowNotFound
	}

	return table, rows[0], nil
}

// SelectOptions lists the primary key and 'name' column of a foreign table,
// ordered by name.
func (c *Client) SelectOptions(ctx context.Context, tableName string) ([]Option, error) {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return nil, err
	}

	if !table.HasColumn("name") {
		return nil, fmt.Errorf("table %q has no 'name' column to label options (valid columns are %q)", tableName, strings.Join(table.ColumnNames(), ", "))
	}

	nameColumn := c.dialect.EscapeIdentifier("name")
	sqlRows, err := c.QueryContext(ctx, query(`
		SELECT %s, %s FROM %s ORDER BY %s
	`, c.dialect.EscapeIdentifier(table.primaryColumn.name), nameColumn, tableIdentifier(c.dialect, table), nameColumn))
	if err != nil {
		return nil, fmt.Errorf("select options of %q: %w", tableName, err)
	}
	defer sqlRows.Close()

	var options []Option
	for sqlRows.Next() {
		var value, label sql.NullString
		if err := sqlRows.Scan(&value, &label); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		options = append(options, Option{Value: value.String, Label: label.String})
	}

	return options, sqlRows.Err()
}

// ColumnValue returns the current value of one column of a row.
func (c *Client) ColumnValue(ctx context.Context, tableName string, id string, column string) (string, error) {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return "", err
	}

	if !table.HasColumn(column) {
		return "", fmt.Errorf("cannot find column %q for table %q (valid columns are %q)", column, tableName, strings.Join(table.ColumnNames(), ", "))
	}

	var value sql.NullString
	err = c.QueryRowContext(ctx, query(`
		SELECT %s FROM %s WHERE %s = %s
	`, c.dialect.EscapeIdentifier(column), tableIdentifier(c.dialect, table), c.dialect.EscapeIdentifier(table.primaryColumn.name), c.dialect.Placeholder(1)), id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRowNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select %s of row %s: %w", column, id, err)
	}

	return value.String, nil
}

// SetColumnValue replaces the value of one column of a row.
func (c *Client) SetColumnValue(ctx context.Context, tableName string, id string, column string, value string) error {
	values := NewOrderedMap[string, string]()
	values.Set(column, value)

	return c.Update(ctx, tableName, id, values)
}

// Insert creates a row and returns its primary key.
func (c *Client) Insert(ctx context.Context, tableName string, values *OrderedMap[string, string]) (string, error) {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return "", err
	}

	providedID, hasProvidedID := "", false
	if values != nil {
		providedID, hasProvidedID = values.Get(table.primaryColumn.name)
	}

	op := NewInsertOperation(table, values)
	statement, args, err := op.statement(c.dialect)
	if err != nil {
		return "", fmt.Errorf("prepare %s: %w", op, err)
	}
	c.traceStatement(op, statement)

	switch c.dialect.InsertIDStrategy() {
	case insertIDReturning:
		var id sql.NullString
		if err := c.QueryRowContext(ctx, statement, args...).Scan(&id); err != nil {
			return "", fmt.Errorf("insert into %q: %w", tableName, err)
		}
		return id.String, nil

	case insertIDProvided:
		if !hasProvidedID || providedID == "" {
			return "", fmt.Errorf("insert into %q requires a value for primary key column %q", tableName, table.primaryColumn.name)
		}
		if _, err := c.ExecContext(ctx, statement, args...); err != nil {
			return "", fmt.Errorf("insert into %q: %w", tableName, err)
		}
		return providedID, nil
	}

	result, err := c.ExecContext(ctx, statement, args...)
	if err != nil {
		return "", fmt.Errorf("insert into %q: %w", tableName, err)
	}

	if hasProvidedID && providedID != "" {
		return providedID, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// Update sets values on the row identified by id, ErrRowNotFound is returned
// when no row matched.
func (c *Client) Update(ctx context.Context, tableName string, id string, values *OrderedMap[string, string]) error {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return err
	}

	op := NewUpdateOperation(table, id, values)
	statement, args, err := op.statement(c.dialect)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", op, err)
	}
	c.traceStatement(op, statement)

	_, err = c.runModifyQuery(ctx, c.DB, "update", statement, args...)
	return err
}

// Delete removes the row identified by id, ErrRowNotFound is returned when no
// row matched.
func (c *Client) Delete(ctx context.Context, tableName string, id string) error {
	table, err := c.LoadTable(ctx, tableName)
	if err != nil {
		return err
	}

	op := NewDeleteOperation(table, id)
	statement, args, err := op.statement(c.dialect)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", op, err)
	}
	c.traceStatement(op, statement)

	_, err = c.runModifyQuery(ctx, c.DB, "delete", statement, args...)
	return err
}

// runModifyQuery runs the logic to execute a query that is supposed to modify the database in some form affecting
// at least 1 row.
//
// If `rowsAffected` is 0 and the driver reports affected rows, ErrRowNotFound is returned.
func (c *Client) runModifyQuery(ctx context.Context, executor sqlExecutor, action string, query string, args ...any) (rowsAffected int64, err error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s row: %w", action, err)
	}

	if !c.dialect.DriverSupportRowsAffected() {
		return 0, nil
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if rowsAffected <= 0 {
		return 0, ErrRowNotFound
	}

	return rowsAffected, nil
}

func (c *Client) queryRows(ctx context.Context, table *TableInfo, query string, args ...any) ([]Row, error) {
	if c.tracer.Enabled() {
		c.logger.Debug("querying rows", zap.String("table_name", table.name), zap.String("query", query))
	}

	sqlRows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer sqlRows.Close()

	columns := table.ColumnNames()
	var out []Row
	for sqlRows.Next() {
		values := make([]sql.NullString, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := sqlRows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = values[i].String
		}
		out = append(out, row)
	}

	return out, sqlRows.Err()
}

func (c *Client) selectColumns(table *TableInfo) string {
	return strings.Join(slices.Map(table.ColumnNames(), c.dialect.EscapeIdentifier), ", ")
}

func (c *Client) traceStatement(op *Operation, statement string) {
	if c.tracer.Enabled() {
		c.logger.Debug("executing operation", zap.Stringer("op", op), zap.String("query", statement))
	}
}

func query(in string, args ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(in)), args...)
}
