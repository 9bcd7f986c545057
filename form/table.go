package form

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/marqusG/FormProcessor/db"
)

// SortState is the listing order requested by the user, read from the 'f'
// (column) and 'o' (direction) query parameters.
type SortState struct {
	Column    string
	Direction db.SortDirection
}

func ParseSortState(query url.Values) SortState {
	return SortState{
		Column:    query.Get("f"),
		Direction: db.ParseSortDirection(query.Get("o")),
	}
}

// Table renders the listing of a table.
type Table struct {
	config   *Config
	basePath string
}

func NewTable(config *Config, basePath string) *Table {
	return &Table{config: config, basePath: strings.TrimRight(basePath, "/")}
}

type tableView struct {
	Headers []headerView
	Rows    []rowView
}

type headerView struct {
	Name      string
	URL       string
	Active    bool
	Direction string
}

type rowView struct {
	Cells     []string
	EditURL   string
	DeleteURL string
}

// Build renders the header links and one line per row. The header of the
// column currently sorted links to the opposite direction, the others to an
// ascending sort. Checkbox columns are displayed On/Off unless configured as
// radios.
func (t *Table) Build(table *db.TableInfo, rows []db.Row, sort SortState) (string, error) {
	tableConfig := t.config.Table(table.Name())
	listingURL := t.basePath + "/" + table.Name()

	sortColumn := sort.Column
	if !table.HasColumn(sortColumn) {
		sortColumn = table.PrimaryColumn().Name()
	}

	view := &tableView{}
	columns := table.Columns()
	for _, column := range columns {
		header := headerView{Name: column.Name()}

		next := db.SortAscending
		if column.Name() == sortColumn {
			header.Active = true
			header.Direction = string(sort.Direction)
			next = sort.Direction.Toggle()
		}

		header.URL = listingURL + "?" + url.Values{"f": {column.Name()}, "o": {string(next)}}.Encode()
		view.Headers = append(view.Headers, header)
	}

	primaryColumn := table.PrimaryColumn().Name()
	for _, row := range rows {
		line := rowView{
			EditURL:   listingURL + "/edit/" + url.PathEscape(row[primaryColumn]),
			DeleteURL: listingURL + "/delete/" + url.PathEscape(row[primaryColumn]),
		}

		for _, column := range columns {
			value := row[column.Name()]
			if column.Kind() == db.KindCheckbox && !tableConfig.IsRadio(column.Name()) {
				value = "Off"
				if IsChecked(row[column.Name()]) {
					value = "On"
				}
			}
			line.Cells = append(line.Cells, value)
		}

		view.Rows = append(view.Rows, line)
	}

	buf := new(bytes.Buffer)
	if err := tableTemplate.Execute(buf, view); err != nil {
		return "", fmt.Errorf("render listing of %q: %w", table.Name(), err)
	}

	return buf.String(), nil
}
