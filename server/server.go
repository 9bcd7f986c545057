// Package server exposes the forms and listings of the configured tables over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/form"
	"github.com/marqusG/FormProcessor/processor"
	"github.com/streamingfast/logging"
	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

// maxMultipartMemory is the part of a multipart body kept in memory, the rest
// spills to temporary files.
const maxMultipartMemory = 32 << 20

type Database interface {
	LoadTable(ctx context.Context, name string) (*db.TableInfo, error)
	SelectRows(ctx context.Context, tableName string, orderBy string, direction db.SortDirection) (*db.TableInfo, []db.Row, error)
	SelectRow(ctx context.Context, tableName string, id string) (*db.TableInfo, db.Row, error)
	SelectOptions(ctx context.Context, tableName string) ([]db.Option, error)
}

type FileOpener interface {
	Open(ctx context.Context, column, name string) (io.ReadCloser, error)
}

type Server struct {
	*shutter.Shutter

	listenAddr string
	httpServer *http.Server

	database  Database
	processor *processor.Processor
	files     FileOpener
	config    *form.Config
	builder   *form.Builder
	table     *form.Table

	logger *zap.Logger
	tracer logging.Tracer
}

func New(
	listenAddr string,
	database Database,
	processor *processor.Processor,
	files FileOpener,
	config *form.Config,
	logger *zap.Logger,
	tracer logging.Tracer,
) *Server {
	s := &Server{
		Shutter:    shutter.New(),
		listenAddr: listenAddr,
		database:   database,
		processor:  processor,
		files:      files,
		config:     config,
		builder:    form.NewBuilder(config, database, "", logger),
		table:      form.NewTable(config, ""),
		logger:     logger,
		tracer:     tracer,
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the router serving every page of the server.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.requestLogger)

	router.Get("/", s.handleIndex)
	router.Get("/files/{column}/{name}", s.handleFile)

	router.Route("/{table}", func(r chi.Router) {
		r.Use(s.configuredTable)

		r.Get("/", s.handleList)
		r.Get("/add", s.handleAdd)
		r.Get("/edit/{id}", s.handleEdit)
		r.Post("/save", s.handleSave)
		r.Get("/delete/{id}", s.handleDeleteConfirm)
		r.Post("/delete/{id}", s.handleDelete)
		r.Post("/delete-file", s.handleDeleteFile)
	})

	return router
}

func (s *Server) Run() {
	s.OnTerminating(func(err error) {
		s.logger.Info("http server terminating", zap.Error(err))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("http server did not shut down cleanly", zap.Error(err))
		}
	})

	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		s.Shutdown(fmt.Errorf("listen on %q: %w", s.listenAddr, err))
		return
	}

	s.logger.Info("serving forms",
		zap.Stringer("listen_addr", listener.Addr()),
		zap.Strings("tables", s.config.TableNames()),
	)

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.Shutdown(fmt.Errorf("http server: %w", err))
		return
	}
	s.Shutdown(nil)
}
