package filelist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name        string
		existing    string
		uploaded    []string
		defaultName string
		expect      string
	}{
		{"empty everything", "", nil, "", ""},
		{"only uploads", "", []string{"x.jpg", "y.jpg"}, "", "x.jpg;y.jpg"},
		{"only existing", "a.jpg;b.jpg", nil, "", "a.jpg;b.jpg"},
		{"appends uploads", "a.jpg;b.jpg", []string{"c.jpg"}, "", "a.jpg;b.jpg;c.jpg"},
		{"re-upload supersedes existing position", "a;b", []string{"b", "c"}, "", "a;b;c"},
		{"re-upload of first entry", "a;b;c", []string{"a"}, "", "b;c;a"},
		{"default moved to front", "a;b;c", nil, "c", "c;a;b"},
		{"default already first", "a;b;c", nil, "a", "a;b;c"},
		{"default among uploads", "a", []string{"b", "c"}, "c", "c;a;b"},
		{"absent default ignored", "a;b", nil, "zzz", "a;b"},
		{"absent default with uploads ignored", "a;b", []string{"c"}, "zzz", "a;b;c"},
		{"empty entries dropped", ";a;;b;", nil, "", "a;b"},
		{"case sensitive names", "A.jpg", []string{"a.jpg"}, "", "A.jpg;a.jpg"},
		{"case sensitive default", "a.jpg;b.jpg", nil, "B.jpg", "a.jpg;b.jpg"},
		{"default among uploads only", "", []string{"x", "y"}, "y", "y;x"},
		{"default from the middle of existing", "a;b;c", nil, "b", "b;a;c"},
		{"re-upload of middle entry with default", "a;b;c", []string{"b"}, "b", "b;a;c"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, Merge(test.existing, test.uploaded, test.defaultName))
		})
	}
}

func TestMerge_Properties(t *testing.T) {
	inputs := []struct {
		existing    string
		uploaded    []string
		defaultName string
	}{
		{"a;b;c", []string{"c", "d"}, "d"},
		{"x", []string{"x"}, ""},
		{"", []string{"p", "q", "r"}, "q"},
		{"m;n;o;p", []string{"n"}, "p"},
		{"", []string{"x", "y"}, "y"},
		{"a;b;c", nil, "b"},
	}

	for _, in := range inputs {
		out := Parse(Merge(in.existing, in.uploaded, in.defaultName))

		seen := map[string]bool{}
		for _, name := range out {
			assert.False(t, seen[name], "duplicate %q in %v", name, out)
			seen[name] = true
		}

		for _, name := range in.uploaded {
			assert.True(t, out.Contains(name), "uploaded %q missing from %v", name, out)
		}

		if in.defaultName != "" {
			require.NotEmpty(t, out)
			assert.Equal(t, in.defaultName, out[0])
		}

		serialized := out.String()
		assert.False(t, strings.HasPrefix(serialized, Delimiter))
		assert.False(t, strings.HasSuffix(serialized, Delimiter))
		assert.NotContains(t, serialized, Delimiter+Delimiter)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	for _, existing := range []string{"", "a", "a;b;c", ";x;;y;", "A;a;b.JPG"} {
		first := Merge(existing, []string{"c"}, "")
		assert.Equal(t, first, Merge(first, nil, ""), "merging %q", existing)
		assert.Equal(t, Parse(existing).String(), Merge(existing, nil, ""), "round trip of %q", existing)
	}
}

func TestParse(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Equal(t, List{"a", "b"}, Parse("a;b"))
	assert.Equal(t, List{"a"}, Parse(";;a;"))
	assert.Equal(t, "a;b", Parse("a;b").String())
}

func TestList_WithDefault(t *testing.T) {
	l := List{"a", "b", "c", "d"}

	assert.Equal(t, List{"c", "a", "b", "d"}, l.WithDefault("c"))
	assert.Equal(t, List{"a", "b", "c", "d"}, l, "receiver must not be modified")
	assert.Equal(t, List{"a", "b", "c", "d"}, l.WithDefault(""))
	assert.Equal(t, List{"d", "a", "b", "c"}, l.WithDefault("d"))
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		remove   string
		expect   string
	}{
		{"middle", "a;b;c", "b", "a;c"},
		{"first", "a;b;c", "a", "b;c"},
		{"last", "a;b;c", "c", "a;b"},
		{"only", "a", "a", ""},
		{"absent is a no-op", "a;b", "z", "a;b"},
		{"empty list", "", "a", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, Remove(test.existing, test.remove))
		})
	}
}
