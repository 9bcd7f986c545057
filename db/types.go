package db

import (
	"fmt"
	"strings"
)

// ColumnKind classifies a column by the form control able to edit it.
type ColumnKind uint

const (
	KindUnsupported ColumnKind = iota
	KindInput
	KindTextarea
	KindCheckbox
	KindNumber
)

var columnKindNames = map[ColumnKind]string{
	KindUnsupported: "Unsupported",
	KindInput:       "Input",
	KindTextarea:    "Textarea",
	KindCheckbox:    "Checkbox",
	KindNumber:      "Number",
}

func (k ColumnKind) String() string {
	if name, found := columnKindNames[k]; found {
		return name
	}
	return fmt.Sprintf("ColumnKind(%d)", uint(k))
}

// ClassifyColumn maps a database type name to a ColumnKind. Checks are
// ordered, 'tinytext' is a textarea and 'tinyint' a checkbox even though
// both would also match later rules.
func ClassifyColumn(databaseTypeName string) ColumnKind {
	typeName := strings.ToLower(databaseTypeName)
	if strings.HasPrefix(typeName, "nullable(") {
		typeName = strings.TrimSuffix(strings.TrimPrefix(typeName, "nullable("), ")")
	}

	switch {
	case strings.Contains(typeName, "char"), typeName == "string", strings.HasPrefix(typeName, "fixedstring"):
		return KindInput
	case strings.Contains(typeName, "text"):
		return KindTextarea
	case strings.Contains(typeName, "tinyint"), typeName == "bit", strings.HasPrefix(typeName, "bit("), strings.HasPrefix(typeName, "bool"):
		return KindCheckbox
	case strings.Contains(typeName, "int"),
		strings.Contains(typeName, "decimal"),
		strings.Contains(typeName, "numeric"),
		strings.Contains(typeName, "float"),
		strings.Contains(typeName, "double"),
		strings.Contains(typeName, "real"):
		return KindNumber
	}

	return KindUnsupported
}

type TableInfo struct {
	schema        string
	name          string
	columns       *OrderedMap[string, *ColumnInfo]
	primaryColumn *ColumnInfo
}

// NewTableInfo keeps the columns in the order received. Without an introspected
// primary key, a column named 'id' is used.
func NewTableInfo(schema, name string, primaryKey []string, columns []*ColumnInfo) (*TableInfo, error) {
	columnsByName := NewOrderedMap[string, *ColumnInfo]()
	for _, column := range columns {
		columnsByName.Set(column.name, column)
	}

	if len(primaryKey) > 1 {
		return nil, fmt.Errorf("table %q has a composite primary key (%s), only single column keys are supported", name, strings.Join(primaryKey, ", "))
	}

	primaryKeyColumnName := "id"
	if len(primaryKey) == 1 {
		primaryKeyColumnName = primaryKey[0]
	}

	primaryColumn, found := columnsByName.Get(primaryKeyColumnName)
	if !found {
		return nil, fmt.Errorf("primary key column %q not found in table %q", primaryKeyColumnName, name)
	}

	return &TableInfo{
		schema:        schema,
		name:          name,
		columns:       columnsByName,
		primaryColumn: primaryColumn,
	}, nil
}

func (t *TableInfo) Name() string {
	return t.name
}

func (t *TableInfo) Schema() string {
	return t.schema
}

func (t *TableInfo) PrimaryColumn() *ColumnInfo {
	return t.primaryColumn
}

// Columns returns the columns in declaration order.
func (t *TableInfo) Columns() []*ColumnInfo {
	out := make([]*ColumnInfo, 0, t.columns.Len())
	for pair := t.columns.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (t *TableInfo) ColumnNames() []string {
	out := make([]string, 0, t.columns.Len())
	for pair := t.columns.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (t *TableInfo) Column(name string) (*ColumnInfo, bool) {
	return t.columns.Get(name)
}

func (t *TableInfo) HasColumn(name string) bool {
	_, found := t.columns.Get(name)
	return found
}

type ColumnInfo struct {
	name             string
	databaseTypeName string
	kind             ColumnKind
	nullable         bool
}

func NewColumnInfo(name string, databaseTypeName string, nullable bool) *ColumnInfo {
	return &ColumnInfo{
		name:             name,
		databaseTypeName: databaseTypeName,
		kind:             ClassifyColumn(databaseTypeName),
		nullable:         nullable,
	}
}

func (c *ColumnInfo) Name() string {
	return c.name
}

func (c *ColumnInfo) DatabaseTypeName() string {
	return c.databaseTypeName
}

func (c *ColumnInfo) Kind() ColumnKind {
	return c.kind
}

func (c *ColumnInfo) Nullable() bool {
	return c.nullable
}
