package upload

import (
	"fmt"
	"strings"
)

type ErrorKind string

const (
	OversizedFile       ErrorKind = "oversized_file"
	InvalidExtension    ErrorKind = "invalid_extension"
	StorageWriteFailed  ErrorKind = "storage_write_failed"
	InvalidImageContent ErrorKind = "invalid_image_content"
)

// FileError reports why one file of a batch was not stored. The other files
// of the batch are not affected by it.
type FileError struct {
	Kind     ErrorKind
	Column   string
	FileName string

	// Only set for the kinds carrying details
	MaxSize    int64
	Extensions []string
	Err        error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q for column %q: %s", e.Kind, e.FileName, e.Column, e.Err)
	}
	return fmt.Sprintf("%s %q for column %q", e.Kind, e.FileName, e.Column)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// UserMessage is the message displayed back on the form.
func (e *FileError) UserMessage() string {
	switch e.Kind {
	case OversizedFile:
		return fmt.Sprintf("%s exceeds the maximum allowed size of %s and it won't be uploaded.", e.FileName, humanSize(e.MaxSize))
	case InvalidExtension:
		return fmt.Sprintf("%s has an invalid extension, allowed extensions are: %s.", e.FileName, strings.Join(e.Extensions, ", "))
	case StorageWriteFailed:
		return fmt.Sprintf("Error moving %s to the destination directory.", e.FileName)
	case InvalidImageContent:
		return fmt.Sprintf("%s is not a valid image file.", e.FileName)
	}
	return fmt.Sprintf("%s could not be uploaded.", e.FileName)
}

func humanSize(size int64) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%.1f MiB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%d KiB", size/1024)
	}
	return fmt.Sprintf("%d bytes", size)
}
