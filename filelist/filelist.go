// Package filelist handles the delimiter-joined list of filenames stored in an
// upload column.
package filelist

import "strings"

// Delimiter separates filenames inside a serialized list.
const Delimiter = ";"

// List is an ordered list of filenames, the first one being the default file.
type List []string

// Parse splits a serialized list, empty entries are dropped.
func Parse(in string) List {
	if in == "" {
		return nil
	}

	parts := strings.Split(in, Delimiter)
	out := make(List, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (l List) String() string {
	return strings.Join(l, Delimiter)
}

func (l List) Contains(name string) bool {
	return l.indexOf(name) != -1
}

func (l List) indexOf(name string) int {
	for i, candidate := range l {
		if candidate == name {
			return i
		}
	}
	return -1
}

// Merge combines the list currently stored in a column with the names stored
// during one save. Uploaded names replace same-named existing entries and are
// appended after the remaining ones in the order received. When defaultName is
// non-empty and part of the result, it is moved to the front.
//
// Comparisons are byte-wise. Duplicates within uploaded are not removed, the
// upload storage guarantees unique names per batch.
func Merge(existing string, uploaded []string, defaultName string) string {
	current := Parse(existing)

	out := make(List, 0, len(current)+len(uploaded))
	if len(uploaded) > 0 {
		superseded := make(map[string]struct{}, len(uploaded))
		for _, name := range uploaded {
			superseded[name] = struct{}{}
		}

		for _, name := range current {
			if _, found := superseded[name]; found {
				continue
			}
			out = append(out, name)
		}
		out = append(out, uploaded...)
	} else {
		out = append(out, current...)
	}

	return out.WithDefault(defaultName).String()
}

// WithDefault returns a copy of the list with name moved to the front, other
// entries keep their relative order. An empty or absent name leaves the list
// unchanged.
func (l List) WithDefault(name string) List {
	out := make(List, len(l))
	copy(out, l)

	if name == "" {
		return out
	}

	idx := out.indexOf(name)
	if idx <= 0 {
		return out
	}

	copy(out[1:idx+1], out[0:idx])
	out[0] = name
	return out
}

// Remove returns the serialized list without name. Removing a name that is not
// part of the list is a no-op.
func Remove(existing string, name string) string {
	current := Parse(existing)
	out := make(List, 0, len(current))
	for _, candidate := range current {
		if candidate == name {
			continue
		}
		out = append(out, candidate)
	}
	return out.String()
}
