// Package form renders the add/edit form and the listing of a table from its
// introspected structure and its configuration.
package form

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/filelist"
	"github.com/marqusG/FormProcessor/upload"
	"go.uber.org/zap"
)

// OptionsLoader lists the (id, name) pairs of a foreign table.
type OptionsLoader interface {
	SelectOptions(ctx context.Context, table string) ([]db.Option, error)
}

// DefaultFieldSuffix is appended to an upload column name to form the field
// carrying the file selected as default.
const DefaultFieldSuffix = "_default"

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

type Builder struct {
	config   *Config
	options  OptionsLoader
	basePath string

	logger *zap.Logger
}

func NewBuilder(config *Config, options OptionsLoader, basePath string, logger *zap.Logger) *Builder {
	return &Builder{
		config:   config,
		options:  options,
		basePath: strings.TrimRight(basePath, "/"),
		logger:   logger,
	}
}

// Request is what one rendering of the form needs. An empty ItemID renders
// the add form, Item holds the current values in edit mode.
type Request struct {
	Table  *db.TableInfo
	ItemID string
	Item   db.Row
	// Values posted back on a failed save, they take precedence over Item
	Values map[string]string
	Errors []string
}

type formView struct {
	Action    string
	CancelURL string
	TableName string
	ItemID    string
	Mode      string
	Hidden    []hiddenView
	Fields    []*fieldView
	Errors    []string
}

type hiddenView struct {
	Name  string
	Value string
}

type fieldView struct {
	Name         string
	Control      string
	Value        string
	Checked      bool
	Options      []optionView
	Files        []fileView
	Accept       string
	DefaultField string
	DeleteAction string
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fileView struct {
	Name      string
	URL       string
	Extension string
	IsImage   bool
}

// Build renders the form markup. Fields follow the column order, the control
// of a column is picked by precedence: list, foreign select, radios, upload and
// finally the column type.
func (b *Builder) Build(ctx context.Context, req *Request) (string, error) {
	tableName := req.Table.Name()
	tableConfig := b.config.Table(tableName)
	editMode := req.ItemID != ""

	view := &formView{
		Action:    b.path(tableName, "save"),
		CancelURL: b.path(tableName, ""),
		TableName: tableName,
		ItemID:    req.ItemID,
		Mode:      "Add",
		Errors:    req.Errors,
	}
	if editMode {
		view.Mode = "Edit"
	}

	value := func(column string) string {
		if v, found := req.Values[column]; found {
			return v
		}
		return req.Item[column]
	}

	primaryColumn := req.Table.PrimaryColumn()
	for _, column := range req.Table.Columns() {
		name := column.Name()
		if tableConfig.IsIgnored(name) {
			continue
		}

		if tableConfig.IsHidden(name) {
			view.Hidden = append(view.Hidden, hiddenView{Name: name, Value: value(name)})
			continue
		}

		if column == primaryColumn && (editMode || column.Kind() == db.KindNumber) {
			continue
		}

		field := &fieldView{Name: name, Value: value(name)}
		switch {
		case len(tableConfig.Lists[name]) > 0:
			field.Control = "select"
			for _, item := range tableConfig.Lists[name] {
				optionValue := strings.ReplaceAll(item, " ", "_")
				field.Options = append(field.Options, optionView{Value: optionValue, Label: item, Selected: optionValue == field.Value})
			}

		case tableConfig.IsSelect(name):
			options, err := b.options.SelectOptions(ctx, name)
			if err != nil {
				return "", fmt.Errorf("options of select %q: %w", name, err)
			}

			field.Control = "select"
			for _, option := range options {
				field.Options = append(field.Options, optionView{Value: option.Value, Label: option.Label, Selected: option.Value == field.Value})
			}

		case tableConfig.IsRadio(name):
			field.Control = "radios"
			for _, option := range tableConfig.Radios[name] {
				field.Options = append(field.Options, optionView{Value: option, Label: option, Selected: strings.EqualFold(option, field.Value)})
			}

		case tableConfig.IsUpload(name):
			field.Control = "upload"
			field.DefaultField = name + DefaultFieldSuffix
			field.DeleteAction = b.path(tableName, "delete-file")
			if rules, _ := tableConfig.UploadRules(name, b.config.MaxFileSize); len(rules.Extensions) > 0 {
				field.Accept = "." + strings.Join(rules.Extensions, ",.")
			}

			if editMode {
				for _, fileName := range filelist.Parse(req.Item[name]) {
					ext := upload.Extension(fileName)
					field.Files = append(field.Files, fileView{
						Name:      fileName,
						URL:       b.config.FileURL(name, fileName),
						Extension: ext,
						IsImage:   imageExtensions[ext],
					})
				}
			}

		default:
			switch column.Kind() {
			case db.KindInput, db.KindNumber:
				field.Control = "input"
			case db.KindTextarea:
				field.Control = "textarea"
			case db.KindCheckbox:
				field.Control = "checkbox"
				field.Checked = IsChecked(field.Value)
			default:
				b.logger.Debug("skipping column with unsupported type",
					zap.String("table_name", tableName),
					zap.String("column", name),
					zap.String("type", column.DatabaseTypeName()),
				)
				continue
			}
		}

		view.Fields = append(view.Fields, field)
	}

	buf := new(bytes.Buffer)
	if err := formTemplate.Execute(buf, view); err != nil {
		return "", fmt.Errorf("render form of %q: %w", tableName, err)
	}

	return buf.String(), nil
}

func (b *Builder) path(table string, action string) string {
	if action == "" {
		return b.basePath + "/" + table
	}
	return b.basePath + "/" + table + "/" + action
}

// IsChecked reports whether a stored checkbox value is on, drivers render
// booleans differently.
func IsChecked(value string) bool {
	switch strings.ToLower(value) {
	case "1", "t", "true", "on", "y", "yes":
		return true
	}
	return false
}
