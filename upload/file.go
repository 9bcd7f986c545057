package upload

import (
	"io"
	"mime/multipart"
	"path"
	"strings"
)

// File is one file received for an upload column.
type File struct {
	Name string
	// Size as announced by the client, the content is still bounded while read
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart adapts the files of one multipart form field, order is kept.
func FromMultipart(headers []*multipart.FileHeader) []*File {
	out := make([]*File, 0, len(headers))
	for _, header := range headers {
		if header.Filename == "" {
			continue
		}

		header := header
		out = append(out, &File{
			Name: header.Filename,
			Size: header.Size,
			Open: func() (io.ReadCloser, error) { return header.Open() },
		})
	}
	return out
}

var unsafeNameReplacer = strings.NewReplacer(
	";", "_",
	"<", "",
	">", "",
	`"`, "",
	"'", "",
	"&", "",
)

// SanitizeName returns the name a file is stored under: the base name without
// directories, lowercased, with the list delimiter replaced so it can safely be
// part of a file list.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}

	return strings.ToLower(unsafeNameReplacer.Replace(name))
}

// Extension returns the lowercased extension without the dot.
func Extension(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}
