package db

import (
	"fmt"
	"strings"
)

type OperationType string

const (
	OperationTypeInsert OperationType = "INSERT"
	OperationTypeUpdate OperationType = "UPDATE"
	OperationTypeDelete OperationType = "DELETE"
)

type Operation struct {
	table      *TableInfo
	opType     OperationType
	primaryKey string
	data       *OrderedMap[string, string]
}

func (o *Operation) String() string {
	return fmt.Sprintf("%s/%s (%s)", o.table.name, o.primaryKey, strings.ToLower(string(o.opType)))
}

func NewInsertOperation(table *TableInfo, data *OrderedMap[string, string]) *Operation {
	return &Operation{
		table:  table,
		opType: OperationTypeInsert,
		data:   data,
	}
}

func NewUpdateOperation(table *TableInfo, primaryKey string, data *OrderedMap[string, string]) *Operation {
	return &Operation{
		table:      table,
		opType:     OperationTypeUpdate,
		primaryKey: primaryKey,
		data:       data,
	}
}

func NewDeleteOperation(table *TableInfo, primaryKey string) *Operation {
	return &Operation{
		table:      table,
		opType:     OperationTypeDelete,
		primaryKey: primaryKey,
	}
}

// statement renders the operation for the dialect, values are always bound
// as parameters.
func (o *Operation) statement(d dialect) (string, []any, error) {
	var columns []string
	var args []any
	if o.opType == OperationTypeInsert || o.opType == OperationTypeUpdate {
		var err error
		columns, args, err = prepareColValues(d, o.table, o.data)
		if err != nil {
			return "", nil, fmt.Errorf("preparing column & values: %w", err)
		}
	}

	if o.opType == OperationTypeUpdate && len(columns) == 0 {
		return "", nil, fmt.Errorf("update of %s has no column to set", o)
	}

	identifier := tableIdentifier(d, o.table)
	primaryColumn := d.EscapeIdentifier(o.table.primaryColumn.name)

	switch o.opType {
	case OperationTypeInsert:
		placeholders := make([]string, len(columns))
		for i := range columns {
			placeholders[i] = d.Placeholder(i + 1)
		}

		return d.InsertStatement(identifier, columns, placeholders, primaryColumn), args, nil

	case OperationTypeUpdate:
		assignments := make([]string, len(columns))
		for i, column := range columns {
			assignments[i] = fmt.Sprintf("%s=%s", column, d.Placeholder(i+1))
		}

		where := fmt.Sprintf("%s = %s", primaryColumn, d.Placeholder(len(columns)+1))
		return d.UpdateStatement(identifier, assignments, where), append(args, o.primaryKey), nil

	case OperationTypeDelete:
		where := fmt.Sprintf("%s = %s", primaryColumn, d.Placeholder(1))
		return d.DeleteStatement(identifier, where), []any{o.primaryKey}, nil

	default:
		panic(fmt.Errorf("unknown operation type %q", o.opType))
	}
}

func prepareColValues(d dialect, table *TableInfo, colValues *OrderedMap[string, string]) (columns []string, values []any, err error) {
	if colValues == nil || colValues.Len() == 0 {
		return
	}

	columns = make([]string, 0, colValues.Len())
	values = make([]any, 0, colValues.Len())

	for pair := colValues.Oldest(); pair != nil; pair = pair.Next() {
		columnInfo, found := table.columns.Get(pair.Key)
		if !found {
			return nil, nil, fmt.Errorf("cannot find column %q for table %q (valid columns are %q)", pair.Key, table.name, strings.Join(table.ColumnNames(), ", "))
		}

		columns = append(columns, d.EscapeIdentifier(columnInfo.name))
		values = append(values, normalizeValue(pair.Value, columnInfo))
	}
	return
}

// normalizeValue turns empty strings into NULL for columns that cannot hold
// an empty string.
func normalizeValue(value string, column *ColumnInfo) any {
	if value != "" {
		return value
	}

	switch column.kind {
	case KindNumber, KindCheckbox, KindUnsupported:
		return nil
	}
	return value
}

// ValuesFromMap builds ordered values following the table column order,
// entries that are not table columns are reported as an error.
func ValuesFromMap(table *TableInfo, in map[string]string) (*OrderedMap[string, string], error) {
	out := NewOrderedMap[string, string]()
	for _, name := range table.ColumnNames() {
		if value, found := in[name]; found {
			out.Set(name, value)
		}
	}

	if out.Len() != len(in) {
		for name := range in {
			if !table.HasColumn(name) {
				return nil, fmt.Errorf("cannot find column %q for table %q (valid columns are %q)", name, table.name, strings.Join(table.ColumnNames(), ", "))
			}
		}
	}

	return out, nil
}
