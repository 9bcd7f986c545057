package upload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/streamingfast/dstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngContent(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func memoryFile(name string, content []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(content)), nil },
	}
}

func newTestStorer(t *testing.T) (*Storer, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := dstore.NewStore(dir, "", "", true)
	require.NoError(t, err)

	return NewStorer(store, "uploads", 3, zlog), dir
}

func TestStorer_Store(t *testing.T) {
	ctx := context.Background()
	storer, dir := newTestStorer(t)
	picture := pngContent(t)

	pictureRules := Rules{Extensions: []string{"jpg", "png", "gif"}, Image: true, MaxSize: 1024}

	accepted, rejected, err := storer.Store(ctx, "pictures", pictureRules, []*File{
		memoryFile("Front.PNG", picture),
		memoryFile("notes.txt", []byte("hello")),
		memoryFile("fake.png", []byte("not an image")),
		memoryFile("huge.png", bytes.Repeat([]byte{0}, 2048)),
		memoryFile(`C:\Users\me\back.png`, picture),
		memoryFile("front.png", picture),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"front.png", "back.png"}, accepted)

	kinds := map[string]ErrorKind{}
	for _, fileErr := range rejected {
		kinds[fileErr.FileName] = fileErr.Kind
	}
	assert.Equal(t, map[string]ErrorKind{
		"notes.txt": InvalidExtension,
		"fake.png":  InvalidImageContent,
		"huge.png":  OversizedFile,
	}, kinds)

	content, err := os.ReadFile(filepath.Join(dir, "uploads", "pictures", "front.png"))
	require.NoError(t, err)
	assert.Equal(t, picture, content)

	_, err = os.Stat(filepath.Join(dir, "uploads", "pictures", "fake.png"))
	assert.True(t, os.IsNotExist(err), "rejected image must not be written")
}

func TestStorer_StoreKeepsReceiptOrder(t *testing.T) {
	ctx := context.Background()
	storer, _ := newTestStorer(t)

	var files []*File
	var expected []string
	for _, name := range strings.Split("k,j,i,h,g,f,e,d,c,b,a", ",") {
		files = append(files, memoryFile(name+".pdf", []byte(name)))
		expected = append(expected, name+".pdf")
	}

	accepted, rejected, err := storer.Store(ctx, "documents", Rules{Extensions: []string{"pdf"}}, files)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, expected, accepted)
}

func TestStorer_OverwriteAndDelete(t *testing.T) {
	ctx := context.Background()
	storer, _ := newTestStorer(t)
	rules := Rules{Extensions: []string{"txt"}}

	_, _, err := storer.Store(ctx, "documents", rules, []*File{memoryFile("a.txt", []byte("first"))})
	require.NoError(t, err)
	_, _, err = storer.Store(ctx, "documents", rules, []*File{memoryFile("a.txt", []byte("second"))})
	require.NoError(t, err)

	reader, err := storer.Open(ctx, "documents", "a.txt")
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "second", string(content))

	require.NoError(t, storer.Delete(ctx, "documents", "a.txt"))
	require.NoError(t, storer.Delete(ctx, "documents", "a.txt"), "deleting a missing file is not an error")

	_, err = storer.Open(ctx, "documents", "a.txt")
	assert.ErrorIs(t, err, dstore.ErrNotFound)

	_, err = storer.Open(ctx, "documents", "../secrets.txt")
	assert.ErrorIs(t, err, dstore.ErrNotFound)
}

func TestStorer_RejectsPathsOutsideColumn(t *testing.T) {
	ctx := context.Background()
	storer, dir := newTestStorer(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.yaml"), []byte("password: hunter2"), 0o644))

	tests := []struct {
		column string
		name   string
	}{
		{"..", "secret.yaml"},
		{".", "secret.yaml"},
		{"", "secret.yaml"},
		{"documents/..", "secret.yaml"},
		{`..\documents`, "a.txt"},
		{"documents", ".."},
	}

	for _, test := range tests {
		t.Run(test.column+"/"+test.name, func(t *testing.T) {
			_, err := storer.Open(ctx, test.column, test.name)
			assert.ErrorIs(t, err, dstore.ErrNotFound)

			assert.ErrorIs(t, storer.Delete(ctx, test.column, test.name), ErrInvalidObjectName)
		})
	}

	_, _, err := storer.Store(ctx, "..", Rules{}, []*File{memoryFile("secret.yaml", []byte("overwritten"))})
	assert.ErrorIs(t, err, ErrInvalidObjectName)

	content, err := os.ReadFile(filepath.Join(dir, "secret.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "password: hunter2", string(content))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"Photo.JPG", "photo.jpg"},
		{"/etc/passwd", "passwd"},
		{`C:\tmp\Doc.PDF`, "doc.pdf"},
		{"a;b.png", "a_b.png"},
		{"<b>bold.txt", "bbold.txt"},
		{"  spaced.txt ", "spaced.txt"},
		{"..", ""},
		{"", ""},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			assert.Equal(t, test.expect, SanitizeName(test.in))
		})
	}
}

func TestFileError_UserMessage(t *testing.T) {
	assert.Equal(t, "a.png exceeds the maximum allowed size of 2.0 MiB and it won't be uploaded.", (&FileError{Kind: OversizedFile, FileName: "a.png", MaxSize: 2 * 1024 * 1024}).UserMessage())
	assert.Equal(t, "a.exe has an invalid extension, allowed extensions are: jpg, png.", (&FileError{Kind: InvalidExtension, FileName: "a.exe", Extensions: []string{"jpg", "png"}}).UserMessage())
	assert.Equal(t, "a.png is not a valid image file.", (&FileError{Kind: InvalidImageContent, FileName: "a.png"}).UserMessage())
	assert.Equal(t, "Error moving a.png to the destination directory.", (&FileError{Kind: StorageWriteFailed, FileName: "a.png"}).UserMessage())
}
