package server

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/form"
	"github.com/marqusG/FormProcessor/processor"
	"github.com/marqusG/FormProcessor/upload"
	"github.com/streamingfast/dstore"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	buf := new(bytes.Buffer)
	if err := indexTemplate.Execute(buf, s.config.TableNames()); err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "Tables", template.HTML(buf.String()))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	sort := form.ParseSortState(r.URL.Query())

	table, rows, err := s.database.SelectRows(r.Context(), tableName, sort.Column, sort.Direction)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := s.table.Build(table, rows, sort)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	buf := new(bytes.Buffer)
	err = listTemplate.Execute(buf, map[string]any{"Table": tableName, "Listing": template.HTML(listing)})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, tableName, template.HTML(buf.String()))
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	table, err := s.database.LoadTable(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.renderForm(w, r, http.StatusOK, &form.Request{Table: table})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	table, row, err := s.database.SelectRow(r.Context(), chi.URLParam(r, "table"), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.renderForm(w, r, http.StatusOK, &form.Request{Table: table, ItemID: id, Item: row})
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, req *form.Request) {
	content, err := s.builder.Build(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	title := "Add " + req.Table.Name()
	if req.ItemID != "" {
		title = "Edit " + req.Table.Name()
	}
	s.render(w, r, status, title, template.HTML(content))
}

// handleSave saves the posted form. When some files were rejected, the edit
// form of the saved row is rendered with their messages, otherwise the browser
// is sent back to the listing.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableName := chi.URLParam(r, "table")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.fail(w, r, err)
		return
	}

	req := s.saveRequest(r, tableName)
	result, err := s.processor.Save(ctx, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if len(result.Rejected) == 0 {
		http.Redirect(w, r, "/"+tableName, http.StatusSeeOther)
		return
	}

	table, row, err := s.database.SelectRow(ctx, tableName, result.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.renderForm(w, r, http.StatusUnprocessableEntity, &form.Request{
		Table:  table,
		ItemID: result.ID,
		Item:   row,
		Errors: result.Messages(),
	})
}

func (s *Server) saveRequest(r *http.Request, tableName string) *processor.SaveRequest {
	req := &processor.SaveRequest{
		Table:    tableName,
		ItemID:   r.PostFormValue("item_id"),
		Values:   map[string]string{},
		Files:    map[string][]*upload.File{},
		Defaults: map[string]string{},
	}

	for key, values := range r.PostForm {
		if len(values) > 0 {
			req.Values[key] = values[0]
		}
	}

	tableConfig := s.config.Table(tableName)
	for _, column := range tableConfig.UploadColumns() {
		if name := r.PostFormValue(column + form.DefaultFieldSuffix); name != "" {
			req.Defaults[column] = name
		}

		if r.MultipartForm == nil {
			continue
		}

		var headers []*multipart.FileHeader
		headers = append(headers, r.MultipartForm.File[column+"[]"]...)
		headers = append(headers, r.MultipartForm.File[column]...)
		if len(headers) > 0 {
			req.Files[column] = upload.FromMultipart(headers)
		}
	}

	return req
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")

	if _, _, err := s.database.SelectRow(r.Context(), tableName, id); err != nil {
		s.fail(w, r, err)
		return
	}

	buf := new(bytes.Buffer)
	err := deleteTemplate.Execute(buf, &deleteConfirmation{
		Table:     tableName,
		ItemID:    id,
		Action:    r.URL.Path,
		CancelURL: "/" + tableName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "Delete "+tableName, template.HTML(buf.String()))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")

	if err := s.processor.DeleteItem(r.Context(), tableName, chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/"+tableName, http.StatusSeeOther)
}

// handleDeleteFile receives the whole edit form, the clicked button carries
// the "<column>/<name>" of the file to delete.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.fail(w, r, err)
		return
	}

	id := r.PostFormValue("item_id")
	column, name, found := strings.Cut(r.PostFormValue("delete_file"), "/")
	if !found {
		http.Error(w, "missing file to delete", http.StatusBadRequest)
		return
	}

	if err := s.processor.DeleteFile(r.Context(), tableName, column, id, name); err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/"+tableName+"/edit/"+id, http.StatusSeeOther)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	name := chi.URLParam(r, "name")
	if !s.config.IsUploadColumn(column) {
		http.NotFound(w, r)
		return
	}

	reader, err := s.files.Open(r.Context(), column, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer reader.Close()

	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	if _, err := io.Copy(w, reader); err != nil {
		logging.Logger(r.Context(), s.logger).Warn("unable to send file", zap.String("file_name", name), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.Logger(r.Context(), s.logger)

	var unknownTable *db.UnknownTableError
	switch {
	case errors.As(err, &unknownTable), errors.Is(err, db.ErrRowNotFound), errors.Is(err, dstore.ErrNotFound):
		logger.Debug("resource not found", zap.String("path", r.URL.Path), zap.Error(err))
		http.NotFound(w, r)

	case errors.Is(err, processor.ErrInvalidRequest):
		logger.Info("invalid request", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)

	default:
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
