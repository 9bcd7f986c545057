// Package processor saves and deletes the rows managed through the forms,
// keeping upload columns in sync with the stored files.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/filelist"
	"github.com/marqusG/FormProcessor/form"
	"github.com/marqusG/FormProcessor/upload"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid request")

// Database is the persistence the processor relies on, implemented by *db.Client.
type Database interface {
	LoadTable(ctx context.Context, name string) (*db.TableInfo, error)
	ColumnValue(ctx context.Context, table string, id string, column string) (string, error)
	SetColumnValue(ctx context.Context, table string, id string, column string, value string) error
	Insert(ctx context.Context, table string, values *db.OrderedMap[string, string]) (string, error)
	Update(ctx context.Context, table string, id string, values *db.OrderedMap[string, string]) error
	Delete(ctx context.Context, table string, id string) error
}

// FileStorer keeps the uploaded files, implemented by *upload.Storer.
type FileStorer interface {
	Store(ctx context.Context, column string, rules upload.Rules, files []*upload.File) (accepted []string, rejected []*upload.FileError, err error)
	Delete(ctx context.Context, column, name string) error
}

type Processor struct {
	database Database
	storer   FileStorer
	config   *form.Config
	stats    *Stats

	logger *zap.Logger
	tracer logging.Tracer
}

func New(database Database, storer FileStorer, config *form.Config, stats *Stats, logger *zap.Logger, tracer logging.Tracer) *Processor {
	return &Processor{
		database: database,
		storer:   storer,
		config:   config,
		stats:    stats,
		logger:   logger,
		tracer:   tracer,
	}
}

// SaveRequest carries everything a save needs, nothing is read from ambient
// request state.
type SaveRequest struct {
	Table string
	// ItemID is empty when adding a new row
	ItemID string
	// Values posted for the table columns, other entries are ignored
	Values map[string]string
	// Files received per upload column
	Files map[string][]*upload.File
	// Defaults holds, per upload column, the file name to put first
	Defaults map[string]string
}

func (r *SaveRequest) EditMode() bool {
	return r.ItemID != ""
}

type SaveResult struct {
	ID       string
	Created  bool
	Rejected []*upload.FileError
}

// Messages returns the user-visible message of each rejected file.
func (r *SaveResult) Messages() []string {
	out := make([]string, len(r.Rejected))
	for i, rejected := range r.Rejected {
		out[i] = rejected.UserMessage()
	}
	return out
}

// Save persists the posted values and the uploaded files of a row. In edit
// mode the row must exist before any file is stored. The merged file list of every upload column is then written
// along with the other values. Rejected files are reported in the result and
// do not prevent the accepted ones from being saved.
func (p *Processor) Save(ctx context.Context, req *SaveRequest) (*SaveResult, error) {
	start := time.Now()

	table, err := p.database.LoadTable(ctx, req.Table)
	if err != nil {
		return nil, fmt.Errorf("load table %q: %w", req.Table, err)
	}

	tableConfig := p.config.Table(req.Table)
	values, err := p.columnValues(table, tableConfig, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	result := &SaveResult{ID: req.ItemID, Created: !req.EditMode()}

	for _, column := range tableConfig.UploadColumns() {
		if !table.HasColumn(column) {
			continue
		}

		merged, changed, rejected, err := p.processFiles(ctx, table, tableConfig, column, req)
		if err != nil {
			return nil, err
		}

		result.Rejected = append(result.Rejected, rejected...)
		if changed {
			values.Set(column, merged)
		}
	}

	mode := "insert"
	if req.EditMode() {
		mode = "update"
		if values.Len() > 0 {
			if err := p.database.Update(ctx, req.Table, req.ItemID, values); err != nil {
				return nil, fmt.Errorf("update %s/%s: %w", req.Table, req.ItemID, err)
			}
		}
	} else {
		result.ID, err = p.database.Insert(ctx, req.Table, values)
		if err != nil {
			return nil, fmt.Errorf("insert into %s: %w", req.Table, err)
		}
	}

	elapsed := time.Since(start)
	SaveCount.Inc()
	SavedRowsCount.Inc(req.Table, mode)
	SaveDuration.AddInt64(elapsed.Nanoseconds())
	if p.stats != nil {
		p.stats.RecordSave(elapsed)
	}

	p.logger.Info("saved row",
		zap.String("table_name", req.Table),
		zap.String("id", result.ID),
		zap.String("mode", mode),
		zap.Int("value_count", values.Len()),
		zap.Int("rejected_files", len(result.Rejected)),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// columnValues keeps the posted values matching table columns in column
// order. Upload columns are handled separately, the primary key is only kept
// when inserting with an explicit key.
func (p *Processor) columnValues(table *db.TableInfo, tableConfig *form.TableConfig, req *SaveRequest) (*db.OrderedMap[string, string], error) {
	accepted := map[string]string{}
	primaryColumn := table.PrimaryColumn().Name()

	for _, column := range table.Columns() {
		name := column.Name()
		if tableConfig.IsUpload(name) || tableConfig.IsIgnored(name) {
			continue
		}

		value, posted := req.Values[name]
		if name == primaryColumn {
			if !req.EditMode() && posted && value != "" {
				accepted[name] = value
			}
			continue
		}

		if column.Kind() == db.KindCheckbox && rendersAsCheckbox(tableConfig, name) {
			// An unchecked box is not part of the post
			checked := "0"
			if posted && form.IsChecked(value) {
				checked = "1"
			}
			accepted[name] = checked
			continue
		}

		if posted {
			accepted[name] = value
		}
	}

	return db.ValuesFromMap(table, accepted)
}

func rendersAsCheckbox(tableConfig *form.TableConfig, column string) bool {
	return len(tableConfig.Lists[column]) == 0 &&
		!tableConfig.IsSelect(column) &&
		!tableConfig.IsRadio(column) &&
		!tableConfig.IsHidden(column)
}

// processFiles stores the batch of an upload column and computes the column's
// new file list. changed is false when the column must be left untouched.
func (p *Processor) processFiles(ctx context.Context, table *db.TableInfo, tableConfig *form.TableConfig, column string, req *SaveRequest) (merged string, changed bool, rejected []*upload.FileError, err error) {
	files := req.Files[column]
	// The default names an entry of the list as it is stored, it is matched as is
	defaultName := strings.TrimSpace(req.Defaults[column])
	if len(files) == 0 && defaultName == "" {
		return "", false, nil, nil
	}

	existing := ""
	if req.EditMode() {
		existing, err = p.database.ColumnValue(ctx, table.Name(), req.ItemID, column)
		if err != nil {
			return "", false, nil, fmt.Errorf("read files of %s/%s: %w", column, req.ItemID, err)
		}
	}

	var accepted []string
	if len(files) > 0 {
		rules, _ := tableConfig.UploadRules(column, p.config.MaxFileSize)
		accepted, rejected, err = p.storer.Store(ctx, column, rules, files)
		if err != nil {
			return "", false, nil, fmt.Errorf("store files of %q: %w", column, err)
		}

		for range accepted {
			StoredFilesCount.Inc(column)
		}
		for _, fileErr := range rejected {
			RejectedFilesCount.Inc(string(fileErr.Kind))
			p.logger.Info("rejected uploaded file",
				zap.String("table_name", table.Name()),
				zap.String("column", column),
				zap.String("file_name", fileErr.FileName),
				zap.String("kind", string(fileErr.Kind)),
				zap.NamedError("cause", fileErr.Err),
			)
		}
	}

	merged = filelist.Merge(existing, accepted, defaultName)
	if p.tracer.Enabled() {
		p.logger.Debug("merged file list",
			zap.String("column", column),
			zap.String("existing", existing),
			zap.Strings("accepted", accepted),
			zap.String("default", defaultName),
			zap.String("merged", merged),
		)
	}

	if req.EditMode() {
		return merged, merged != existing, rejected, nil
	}
	return merged, merged != "", rejected, nil
}

// DeleteItem removes every stored file of the row's upload columns, then the
// row itself.
func (p *Processor) DeleteItem(ctx context.Context, tableName string, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing item id", ErrInvalidRequest)
	}

	table, err := p.database.LoadTable(ctx, tableName)
	if err != nil {
		return fmt.Errorf("load table %q: %w", tableName, err)
	}

	tableConfig := p.config.Table(tableName)
	for _, column := range tableConfig.UploadColumns() {
		if !table.HasColumn(column) {
			continue
		}

		files, err := p.database.ColumnValue(ctx, tableName, id, column)
		if err != nil {
			return fmt.Errorf("read files of %s/%s: %w", column, id, err)
		}

		for _, name := range filelist.Parse(files) {
			if err := p.storer.Delete(ctx, column, name); err != nil {
				p.logger.Warn("unable to delete stored file", zap.String("column", column), zap.String("file_name", name), zap.Error(err))
				continue
			}
			DeletedFilesCount.Inc()
		}
	}

	if err := p.database.Delete(ctx, tableName, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", tableName, id, err)
	}

	DeletedRowsCount.Inc(tableName)
	p.logger.Info("deleted row", zap.String("table_name", tableName), zap.String("id", id))
	return nil
}

// DeleteFile removes one file from an upload column and from the storage. A
// name that is not part of the column's list leaves everything untouched.
func (p *Processor) DeleteFile(ctx context.Context, tableName string, column string, id string, name string) error {
	if id == "" || name == "" {
		return fmt.Errorf("%w: item id and file name are required", ErrInvalidRequest)
	}

	tableConfig := p.config.Table(tableName)
	if !tableConfig.IsUpload(column) {
		return fmt.Errorf("%w: column %q is not an upload column (upload columns are %q)", ErrInvalidRequest, column, strings.Join(tableConfig.UploadColumns(), ", "))
	}

	existing, err := p.database.ColumnValue(ctx, tableName, id, column)
	if err != nil {
		return fmt.Errorf("read files of %s/%s: %w", column, id, err)
	}

	if !filelist.Parse(existing).Contains(name) {
		p.logger.Info("file to delete is not part of the list", zap.String("column", column), zap.String("id", id), zap.String("file_name", name))
		return nil
	}

	if err := p.database.SetColumnValue(ctx, tableName, id, column, filelist.Remove(existing, name)); err != nil {
		return fmt.Errorf("write files of %s/%s: %w", column, id, err)
	}

	if err := p.storer.Delete(ctx, column, name); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}

	DeletedFilesCount.Inc()
	p.logger.Info("deleted file", zap.String("table_name", tableName), zap.String("column", column), zap.String("id", id), zap.String("file_name", name))
	return nil
}
