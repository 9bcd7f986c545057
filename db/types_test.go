package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyColumn(t *testing.T) {
	tests := []struct {
		databaseType string
		expect       ColumnKind
	}{
		{"VARCHAR(255)", KindInput},
		{"varchar", KindInput},
		{"CHAR(2)", KindInput},
		{"BPCHAR", KindInput},
		{"String", KindInput},
		{"Nullable(String)", KindInput},
		{"TEXT", KindTextarea},
		{"TINYTEXT", KindTextarea},
		{"MEDIUMTEXT", KindTextarea},
		{"TINYINT", KindCheckbox},
		{"tinyint(1)", KindCheckbox},
		{"BIT", KindCheckbox},
		{"BOOL", KindCheckbox},
		{"BOOLEAN", KindCheckbox},
		{"INT", KindNumber},
		{"INT4", KindNumber},
		{"BIGINT", KindNumber},
		{"INTEGER", KindNumber},
		{"UInt64", KindNumber},
		{"DECIMAL(10,2)", KindNumber},
		{"NUMERIC", KindNumber},
		{"FLOAT8", KindNumber},
		{"DOUBLE", KindNumber},
		{"REAL", KindNumber},
		{"DATETIME", KindUnsupported},
		{"BLOB", KindUnsupported},
		{"JSONB", KindUnsupported},
	}

	for _, test := range tests {
		t.Run(test.databaseType, func(t *testing.T) {
			assert.Equal(t, test.expect, ClassifyColumn(test.databaseType))
		})
	}
}

func TestNewTableInfo(t *testing.T) {
	columns := []*ColumnInfo{
		NewColumnInfo("id", "INTEGER", false),
		NewColumnInfo("title", "VARCHAR", true),
		NewColumnInfo("body", "TEXT", true),
	}

	t.Run("introspected key", func(t *testing.T) {
		table, err := NewTableInfo("main", "posts", []string{"title"}, columns)
		require.NoError(t, err)

		assert.Equal(t, "title", table.PrimaryColumn().Name())
		assert.Equal(t, []string{"id", "title", "body"}, table.ColumnNames())
	})

	t.Run("fallback on id", func(t *testing.T) {
		table, err := NewTableInfo("main", "posts", nil, columns)
		require.NoError(t, err)

		assert.Equal(t, "id", table.PrimaryColumn().Name())
	})

	t.Run("composite key", func(t *testing.T) {
		_, err := NewTableInfo("main", "posts", []string{"id", "title"}, columns)
		require.Error(t, err)
	})

	t.Run("no usable key", func(t *testing.T) {
		_, err := NewTableInfo("main", "posts", nil, columns[1:])
		require.Error(t, err)
	})
}

func TestSortDirection(t *testing.T) {
	assert.Equal(t, SortAscending, ParseSortDirection(""))
	assert.Equal(t, SortAscending, ParseSortDirection("asc"))
	assert.Equal(t, SortDescending, ParseSortDirection("desc"))
	assert.Equal(t, SortDescending, ParseSortDirection("DESC"))
	assert.Equal(t, SortAscending, ParseSortDirection("DESC; DROP TABLE products"))

	assert.Equal(t, SortDescending, SortAscending.Toggle())
	assert.Equal(t, SortAscending, SortDescending.Toggle())
}
