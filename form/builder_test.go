package form

import (
	"context"
	"strings"
	"testing"

	"github.com/marqusG/FormProcessor/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()

	config, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	options := staticOptions{"category": {{Value: "1", Label: "Outdoor"}, {Value: "2", Label: "Kitchen"}}}
	return NewBuilder(config, options, "/admin", zlog)
}

func TestBuilder_AddForm(t *testing.T) {
	builder := newTestBuilder(t)

	out, err := builder.Build(context.Background(), &Request{Table: db.TestTables()["products"]})
	require.NoError(t, err)

	assert.Contains(t, out, `<form action="/admin/products/save"`)
	assert.Contains(t, out, `<h3>Add products</h3>`)
	assert.Contains(t, out, `<input type="hidden" name="table_name" value="products" />`)
	assert.Contains(t, out, `<input type="hidden" name="price" value="" />`)
	assert.NotContains(t, out, `name="item_id"`)
	assert.NotContains(t, out, `name="id"`, "numeric primary key is generated by the database")
	assert.NotContains(t, out, `created_at`)

	assert.Contains(t, out, `<input type="text" name="name" id="name" class="form-control name" value="" />`)
	assert.Contains(t, out, `<textarea name="description" id="description" class="form-control description"></textarea>`)
	assert.Contains(t, out, `<input type="checkbox" name="available" id="available"`)
	assert.Contains(t, out, `<option value="extra_large">extra large</option>`)
	assert.Contains(t, out, `<option value="2">Kitchen</option>`)
	assert.Contains(t, out, `<input type="file" name="pictures[]" id="pictures" class="pictures" accept=".jpg,.png,.gif" multiple />`)
	assert.Contains(t, out, `<input type="file" name="documents[]" id="documents" class="documents" accept=".txt,.pdf" multiple />`)
	assert.Contains(t, out, `<a class="btn-cancel" href="/admin/products">Cancel</a>`)

	assert.Less(t, strings.Index(out, `name="name"`), strings.Index(out, `name="description"`), "fields follow column order")
}

func TestBuilder_EditForm(t *testing.T) {
	builder := newTestBuilder(t)

	out, err := builder.Build(context.Background(), &Request{
		Table:  db.TestTables()["products"],
		ItemID: "7",
		Item: db.Row{
			"id":          "7",
			"name":        `O'Reilly <chair>`,
			"description": "comfy",
			"price":       "12.50",
			"available":   "1",
			"size":        "extra_large",
			"category":    "2",
			"pictures":    "front.png;back.jpg",
			"documents":   "manual.pdf",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<h3>Edit products</h3>`)
	assert.Contains(t, out, `<input type="hidden" name="item_id" value="7" />`)
	assert.Contains(t, out, `<input type="hidden" name="price" value="12.50" />`)
	assert.Contains(t, out, `value="O&#39;Reilly &lt;chair&gt;"`)
	assert.Contains(t, out, `class="filled-in chk-col-purple form-control available" checked />`)
	assert.Contains(t, out, `<option value="extra_large" selected>extra large</option>`)
	assert.Contains(t, out, `<option value="2" selected>Kitchen</option>`)

	assert.Contains(t, out, `<img src="/files/pictures/front.png" alt="front.png" />`)
	assert.Contains(t, out, `<label>Default Image</label>`)
	assert.Contains(t, out, `<input type="radio" name="pictures_default" id="pictures_default_1" class="radio-col-purple" value="back.jpg" />`)
	assert.NotContains(t, out, `value="front.png" />`, "first file is already the default")
	assert.Contains(t, out, `formaction="/admin/products/delete-file" formmethod="post" name="delete_file" value="pictures/back.jpg"`)

	assert.Contains(t, out, `<span class="doc-icon doc-pdf">pdf</span>`)
	assert.Contains(t, out, `<label>Default Document</label>`)
}

func TestBuilder_PostedValuesAndErrors(t *testing.T) {
	builder := newTestBuilder(t)

	out, err := builder.Build(context.Background(), &Request{
		Table:  db.TestTables()["products"],
		Values: map[string]string{"name": "Stool"},
		Errors: []string{"a.exe has an invalid extension, allowed extensions are: jpg, png, gif."},
	})
	require.NoError(t, err)

	assert.Contains(t, out, `value="Stool"`)
	assert.Contains(t, out, `<p class="error">a.exe has an invalid extension, allowed extensions are: jpg, png, gif.</p>`)
}

func TestBuilder_SelectOptionsFailure(t *testing.T) {
	config, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	builder := NewBuilder(config, staticOptions{}, "", zlog)
	_, err = builder.Build(context.Background(), &Request{Table: db.TestTables()["products"]})
	require.Error(t, err)
}

func TestBuilder_Radios(t *testing.T) {
	config, err := ParseConfig([]byte(`
tables:
  products:
    radios:
      size: [small, large]
`))
	require.NoError(t, err)

	builder := NewBuilder(config, staticOptions{}, "", zlog)
	out, err := builder.Build(context.Background(), &Request{
		Table:  db.TestTables()["products"],
		ItemID: "1",
		Item:   db.Row{"size": "LARGE"},
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<input type="radio" name="size" id="size_large" class="radio-col-purple form-control size" value="large" checked /> <label for="size_large">Large</label>`)
	assert.Contains(t, out, `<input type="radio" name="size" id="size_small" class="radio-col-purple form-control size" value="small" /> <label for="size_small">Small</label>`)
}

func TestIsChecked(t *testing.T) {
	for _, value := range []string{"1", "true", "t", "TRUE", "on"} {
		assert.True(t, IsChecked(value), value)
	}
	for _, value := range []string{"", "0", "false", "f", "off"} {
		assert.False(t, IsChecked(value), value)
	}
}
