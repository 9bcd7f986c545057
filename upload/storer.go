// Package upload validates and stores the files received for upload columns.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/streamingfast/dhammer"
	"github.com/streamingfast/dstore"
	"go.uber.org/zap"
)

const DefaultMaxFileSize int64 = 1024 * 2000

// Rules are the validations applied to the files of one upload column.
type Rules struct {
	// Extensions accepted, lowercased and without the dot, empty accepts everything
	Extensions []string
	// Image requires the content to decode as gif, jpeg or png
	Image   bool
	MaxSize int64
}

func (r Rules) acceptsExtension(ext string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	for _, candidate := range r.Extensions {
		if strings.EqualFold(strings.TrimPrefix(candidate, "."), ext) {
			return true
		}
	}
	return false
}

func (r Rules) maxSize() int64 {
	if r.MaxSize <= 0 {
		return DefaultMaxFileSize
	}
	return r.MaxSize
}

// Storer keeps uploaded files in a dstore.Store, objects are named
// <prefix>/<column>/<file name>. Storing a name that already exists replaces
// the previous object.
type Storer struct {
	store       dstore.Store
	prefix      string
	concurrency int

	logger *zap.Logger
}

func NewStorer(store dstore.Store, prefix string, concurrency int, logger *zap.Logger) *Storer {
	store.SetOverwrite(true)
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Storer{
		store:       store,
		prefix:      strings.Trim(prefix, "/"),
		concurrency: concurrency,
		logger:      logger,
	}
}

var ErrInvalidObjectName = errors.New("invalid object name")

// objectName returns the name of the object holding a stored file, column and
// name must each be a single path segment.
func (s *Storer) objectName(column, name string) (string, error) {
	if !isPathSegment(column) || !isPathSegment(name) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidObjectName, column, name)
	}
	return path.Join(s.prefix, column, name), nil
}

func isPathSegment(in string) bool {
	return in != "" && in != "." && in != ".." && !strings.ContainsAny(in, `/\`)
}

type storeJob struct {
	column string
	name   string
	file   *File
	rules  Rules
}

type storeResult struct {
	name string
	err  *FileError
}

// Store validates and writes one batch of files for a column. Accepted names
// are returned in the order the files were received, duplicated names within
// the batch keep their first occurrence. A rejected file never prevents the
// others from being stored.
func (s *Storer) Store(ctx context.Context, column string, rules Rules, files []*File) (accepted []string, rejected []*FileError, err error) {
	if !isPathSegment(column) {
		return nil, nil, fmt.Errorf("%w: column %q", ErrInvalidObjectName, column)
	}

	seen := map[string]bool{}
	var jobs []*storeJob
	for _, file := range files {
		name := SanitizeName(file.Name)
		if name == "" {
			rejected = append(rejected, &FileError{Kind: InvalidExtension, Column: column, FileName: file.Name, Extensions: rules.Extensions})
			continue
		}

		if seen[name] {
			s.logger.Debug("skipping file already part of batch", zap.String("column", column), zap.String("file_name", name))
			continue
		}
		seen[name] = true

		if !rules.acceptsExtension(Extension(name)) {
			rejected = append(rejected, &FileError{Kind: InvalidExtension, Column: column, FileName: name, Extensions: rules.Extensions})
			continue
		}

		if file.Size > rules.maxSize() {
			rejected = append(rejected, &FileError{Kind: OversizedFile, Column: column, FileName: name, MaxSize: rules.maxSize()})
			continue
		}

		jobs = append(jobs, &storeJob{column: column, name: name, file: file, rules: rules})
	}

	if len(jobs) == 0 {
		return nil, rejected, nil
	}

	nailer := dhammer.NewNailer(s.concurrency, s.storeFile, dhammer.NailerLogger(s.logger))
	nailer.Start(ctx)

	go func() {
		defer nailer.Close()

		for _, job := range jobs {
			select {
			case nailer.In <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	for out := range nailer.Out {
		result := out.(*storeResult)
		if result.err != nil {
			rejected = append(rejected, result.err)
			continue
		}
		accepted = append(accepted, result.name)
	}

	if err := nailer.Err(); err != nil {
		return accepted, rejected, fmt.Errorf("store batch of %q: %w", column, err)
	}

	return accepted, rejected, nil
}

func (s *Storer) storeFile(ctx context.Context, in interface{}) (interface{}, error) {
	job := in.(*storeJob)
	maxSize := job.rules.maxSize()

	reader, err := job.file.Open()
	if err != nil {
		return &storeResult{name: job.name, err: &FileError{Kind: StorageWriteFailed, Column: job.column, FileName: job.name, Err: err}}, nil
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return &storeResult{name: job.name, err: &FileError{Kind: StorageWriteFailed, Column: job.column, FileName: job.name, Err: err}}, nil
	}

	if int64(len(content)) > maxSize {
		return &storeResult{name: job.name, err: &FileError{Kind: OversizedFile, Column: job.column, FileName: job.name, MaxSize: maxSize}}, nil
	}

	if job.rules.Image {
		if _, _, err := image.DecodeConfig(bytes.NewReader(content)); err != nil {
			return &storeResult{name: job.name, err: &FileError{Kind: InvalidImageContent, Column: job.column, FileName: job.name, Err: err}}, nil
		}
	}

	objectName, err := s.objectName(job.column, job.name)
	if err != nil {
		return &storeResult{name: job.name, err: &FileError{Kind: StorageWriteFailed, Column: job.column, FileName: job.name, Err: err}}, nil
	}

	if err := s.store.WriteObject(ctx, objectName, bytes.NewReader(content)); err != nil {
		s.logger.Warn("unable to write uploaded file", zap.String("object", objectName), zap.Error(err))
		return &storeResult{name: job.name, err: &FileError{Kind: StorageWriteFailed, Column: job.column, FileName: job.name, Err: err}}, nil
	}

	s.logger.Debug("stored uploaded file", zap.String("object", objectName), zap.Int("size", len(content)))
	return &storeResult{name: job.name}, nil
}

// Delete removes a stored file, a file that does not exist is not an error.
func (s *Storer) Delete(ctx context.Context, column, name string) error {
	objectName, err := s.objectName(column, name)
	if err != nil {
		return err
	}

	exists, err := s.store.FileExists(ctx, objectName)
	if err != nil {
		return fmt.Errorf("check %q existence: %w", objectName, err)
	}
	if !exists {
		s.logger.Debug("file to delete does not exist", zap.String("object", objectName))
		return nil
	}

	if err := s.store.DeleteObject(ctx, objectName); err != nil {
		return fmt.Errorf("delete %q: %w", objectName, err)
	}
	return nil
}

// Open returns the content of a stored file, dstore.ErrNotFound is returned
// when it does not exist.
func (s *Storer) Open(ctx context.Context, column, name string) (io.ReadCloser, error) {
	if SanitizeName(name) != name {
		return nil, dstore.ErrNotFound
	}

	objectName, err := s.objectName(column, name)
	if err != nil {
		return nil, dstore.ErrNotFound
	}

	reader, err := s.store.OpenObject(ctx, objectName)
	if err != nil {
		if errors.Is(err, dstore.ErrNotFound) {
			return nil, dstore.ErrNotFound
		}
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	return reader, nil
}
