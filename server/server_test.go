package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/form"
	"github.com/marqusG/FormProcessor/processor"
	"github.com/marqusG/FormProcessor/upload"
	"github.com/streamingfast/dstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
tables:
  products:
    uploads:
      documents:
        extensions: [txt]
    selects: [category]
    ignored_inputs: [created_at, pictures]
  category:
`

type fixture struct {
	server *Server
	client *db.Client
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	client, err := db.NewTestClient(zlog, tracer, db.TestSchema...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	dir := t.TempDir()
	store, err := dstore.NewStore(filepath.Join(dir, "uploads"), "", "", true)
	require.NoError(t, err)
	storer := upload.NewStorer(store, "", 2, zlog)

	config, err := form.ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	proc := processor.New(client, storer, config, nil, zlog, tracer)
	return &fixture{
		server: New("localhost:0", client, proc, storer, config, zlog, tracer),
		client: client,
		dir:    dir,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func (f *fixture) exec(t *testing.T, statement string) {
	t.Helper()

	_, err := f.client.ExecContext(context.Background(), statement)
	require.NoError(t, err)
}

type part struct {
	field    string
	fileName string
	content  string
}

func multipartRequest(t *testing.T, target string, parts ...part) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		if p.fileName == "" {
			require.NoError(t, writer.WriteField(p.field, p.content))
			continue
		}

		fileWriter, err := writer.CreateFormFile(p.field, p.fileName)
		require.NoError(t, err)
		_, err = io.WriteString(fileWriter, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestServer_Pages(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO "category" ("name") VALUES ('Furniture')`)
	f.exec(t, `INSERT INTO "products" ("name", "category", "documents") VALUES ('Chair', 1, 'manual.txt')`)
	f.exec(t, `INSERT INTO "products" ("name", "category") VALUES ('Armchair', 1)`)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		contains   []string
	}{
		{"index", "/", http.StatusOK, []string{`<a href="/products">products</a>`, `<a href="/category">category</a>`}},
		{"listing", "/products?f=name&o=DESC", http.StatusOK, []string{"Chair", "Armchair", `href="/products/add"`, `href="/products/edit/1"`}},
		{"add form", "/products/add", http.StatusOK, []string{"Add products", `<option value="1">Furniture</option>`, `name="documents[]"`}},
		{"edit form", "/products/edit/1", http.StatusOK, []string{`value="Chair"`, `name="item_id" value="1"`, "manual.txt"}},
		{"delete confirmation", "/products/delete/2", http.StatusOK, []string{`action="/products/delete/2"`}},
		{"unknown row", "/products/edit/42", http.StatusNotFound, nil},
		{"unconfigured table", "/users", http.StatusNotFound, nil},
		{"missing file", "/files/documents/manual.txt", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.do(t, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.NotEmpty(t, recorder.Header().Get(requestIDHeader))
			for _, expected := range tt.contains {
				assert.Contains(t, recorder.Body.String(), expected)
			}
		})
	}
}

func TestServer_ListingOrder(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO "products" ("name") VALUES ('Chair')`)
	f.exec(t, `INSERT INTO "products" ("name") VALUES ('Armchair')`)

	body := f.do(t, httptest.NewRequest(http.MethodGet, "/products?f=name&o=ASC", nil)).Body.String()
	assert.Less(t, strings.Index(body, "Armchair"), strings.Index(body, ">Chair<"))

	body = f.do(t, httptest.NewRequest(http.MethodGet, "/products?f=name&o=DESC", nil)).Body.String()
	assert.Greater(t, strings.Index(body, "Armchair"), strings.Index(body, ">Chair<"))
}

func TestServer_SaveAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recorder := f.do(t, multipartRequest(t, "/products/save",
		part{field: "table_name", content: "products"},
		part{field: "name", content: "Desk"},
		part{field: "available", content: "on"},
		part{field: "documents[]", fileName: "a.txt", content: "first"},
		part{field: "documents[]", fileName: "b.txt", content: "second"},
	))
	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/products", recorder.Header().Get("Location"))

	_, row, err := f.client.SelectRow(ctx, "products", "1")
	require.NoError(t, err)
	assert.Equal(t, "Desk", row["name"])
	assert.Equal(t, "1", row["available"])
	assert.Equal(t, "a.txt;b.txt", row["documents"])

	recorder = f.do(t, httptest.NewRequest(http.MethodGet, "/files/documents/b.txt", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "second", recorder.Body.String())
	assert.Contains(t, recorder.Header().Get("Content-Type"), "text/plain")

	recorder = f.do(t, multipartRequest(t, "/products/save",
		part{field: "item_id", content: "1"},
		part{field: "name", content: "Desk"},
		part{field: "documents_default", content: "b.txt"},
		part{field: "documents[]", fileName: "virus.exe", content: "boom"},
	))
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `class="error"`)
	assert.Contains(t, recorder.Body.String(), "virus.exe")

	_, row, err = f.client.SelectRow(ctx, "products", "1")
	require.NoError(t, err)
	assert.Equal(t, "b.txt;a.txt", row["documents"])
	assert.Equal(t, "0", row["available"])

	recorder = f.do(t, multipartRequest(t, "/products/delete-file",
		part{field: "item_id", content: "1"},
		part{field: "name", content: "Desk"},
		part{field: "delete_file", content: "documents/a.txt"},
	))
	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/products/edit/1", recorder.Header().Get("Location"))

	_, row, err = f.client.SelectRow(ctx, "products", "1")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", row["documents"])
	assert.Equal(t, http.StatusNotFound, f.do(t, httptest.NewRequest(http.MethodGet, "/files/documents/a.txt", nil)).Code)

	recorder = f.do(t, multipartRequest(t, "/products/delete-file",
		part{field: "item_id", content: "1"},
		part{field: "delete_file", content: "name/Desk"},
	))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	deleteReq := httptest.NewRequest(http.MethodPost, "/products/delete/1", strings.NewReader(url.Values{"item_id": {"1"}}.Encode()))
	deleteReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder = f.do(t, deleteReq)
	require.Equal(t, http.StatusSeeOther, recorder.Code)

	_, _, err = f.client.SelectRow(ctx, "products", "1")
	assert.ErrorIs(t, err, db.ErrRowNotFound)
	assert.Equal(t, http.StatusNotFound, f.do(t, httptest.NewRequest(http.MethodGet, "/files/documents/b.txt", nil)).Code)
}

func TestServer_FilesStayInsideUploadColumns(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "secret.yaml"), []byte("password: hunter2"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "uploads", "name"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "uploads", "name", "a.txt"), []byte("not an upload"), 0o644))

	for _, target := range []string{
		"/files/../secret.yaml",
		"/files/%2E%2E/secret.yaml",
		"/files/name/a.txt",
		"/files/documents/..",
	} {
		t.Run(target, func(t *testing.T) {
			recorder := f.do(t, httptest.NewRequest(http.MethodGet, target, nil))

			assert.Equal(t, http.StatusNotFound, recorder.Code)
			assert.NotContains(t, recorder.Body.String(), "hunter2")
		})
	}
}
