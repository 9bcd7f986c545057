package form

import (
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

var templateFuncs = template.FuncMap{
	"label": labelize,
	"lower": strings.ToLower,
}

// labelize capitalizes the first letter, 'first_name' becomes 'First_name'.
func labelize(in string) string {
	r, size := utf8.DecodeRuneInString(in)
	if r == utf8.RuneError {
		return in
	}
	return string(unicode.ToUpper(r)) + in[size:]
}

var formTemplate = template.Must(template.New("form").Funcs(templateFuncs).Parse(`
<form action="{{ .Action }}" id="save-form" enctype="multipart/form-data" method="post" accept-charset="utf-8">
<input type="hidden" name="table_name" value="{{ .TableName }}" />
{{- range .Hidden }}
<input type="hidden" name="{{ .Name }}" value="{{ .Value }}" />
{{- end }}
{{- if .ItemID }}
<input type="hidden" name="item_id" value="{{ .ItemID }}" />
{{- end }}
<div><h3>{{ .Mode }} {{ .TableName }}</h3></div>
{{- if .Errors }}
<div class="errors">
{{- range .Errors }}
<p class="error">{{ . }}</p>
{{- end }}
</div>
{{- end }}
{{- range .Fields }}
<fieldset>
{{- if eq .Control "select" }}
<label for="{{ .Name }}" id="{{ .Name }}_lbl">{{ label .Name }}</label>
<select name="{{ .Name }}" id="{{ .Name }}" class="form-control {{ .Name }}">
{{- range .Options }}
<option value="{{ .Value }}"{{ if .Selected }} selected{{ end }}>{{ .Label }}</option>
{{- end }}
</select>
{{- else if eq .Control "radios" }}
<label id="{{ .Name }}_lbl">{{ label .Name }}</label>
{{- $name := .Name }}
{{- range .Options }}
<input type="radio" name="{{ $name }}" id="{{ $name }}_{{ .Value }}" class="radio-col-purple form-control {{ $name }}" value="{{ .Value }}"{{ if .Selected }} checked{{ end }} /> <label for="{{ $name }}_{{ .Value }}">{{ label .Label }}</label>
{{- end }}
{{- else if eq .Control "upload" }}
{{- $field := . }}
{{- range $i, $file := .Files }}
<div class="{{ if $file.IsImage }}img-wrapper{{ else }}icon-wrapper{{ end }}">
{{- if $file.IsImage }}
<img src="{{ $file.URL }}" alt="{{ $file.Name }}" />
{{- else }}
<a href="{{ $file.URL }}"><span class="doc-icon doc-{{ $file.Extension }}">{{ $file.Extension }}</span></a>
{{- end }}
<div class="controls">
<p>{{ $file.Name }}</p>
{{- if eq $i 0 }}
<label>{{ if $file.IsImage }}Default Image{{ else }}Default Document{{ end }}</label>
{{- else }}
<input type="radio" name="{{ $field.DefaultField }}" id="{{ $field.DefaultField }}_{{ $i }}" class="radio-col-purple" value="{{ $file.Name }}" /> <label for="{{ $field.DefaultField }}_{{ $i }}">Make default</label>
{{- end }}
<p><button type="submit" class="btn btn-danger btn-xs" formaction="{{ $field.DeleteAction }}" formmethod="post" name="delete_file" value="{{ $field.Name }}/{{ $file.Name }}">Delete {{ if $file.IsImage }}image{{ else }}document{{ end }}</button></p>
</div>
</div>
{{- end }}
<div id="{{ .Name }}-uploader" class="uploader">
<label for="{{ .Name }}" id="{{ .Name }}_lbl">{{ label .Name }}</label>
<input type="file" name="{{ .Name }}[]" id="{{ .Name }}" class="{{ .Name }}"{{ if .Accept }} accept="{{ .Accept }}"{{ end }} multiple />
<div id="{{ .Name }}-preview" class="previewer"></div>
</div>
{{- else if eq .Control "checkbox" }}
<input type="checkbox" name="{{ .Name }}" id="{{ .Name }}" class="filled-in chk-col-purple form-control {{ .Name }}"{{ if .Checked }} checked{{ end }} /> <label for="{{ .Name }}">{{ label .Name }}</label>
{{- else if eq .Control "textarea" }}
<label for="{{ .Name }}" id="{{ .Name }}_lbl">{{ label .Name }}</label>
<div class="form-group"><div class="form-line"><textarea name="{{ .Name }}" id="{{ .Name }}" class="form-control {{ .Name }}">{{ .Value }}</textarea></div></div>
{{- else }}
<label for="{{ .Name }}" id="{{ .Name }}_lbl">{{ label .Name }}</label>
<div class="form-group"><div class="form-line"><input type="text" name="{{ .Name }}" id="{{ .Name }}" class="form-control {{ .Name }}" value="{{ .Value }}" /></div></div>
{{- end }}
</fieldset>
{{- end }}
<div><div class="row"><div class="col-lg-12">
<input type="submit" value="Save" name="confirm" />
<a class="btn-cancel" href="{{ .CancelURL }}">Cancel</a>
</div></div></div>
</form>
`))

var tableTemplate = template.Must(template.New("table").Funcs(templateFuncs).Parse(`
<table>
<thead><tr>
{{- range .Headers }}
<td><a href="{{ .URL }}"{{ if .Active }} class="sorted-{{ lower .Direction }}"{{ end }}>{{ .Name }}</a></td>
{{- end }}
<td colspan="2">Actions</td>
</tr></thead>
<tbody>
{{- range .Rows }}
<tr>
{{- range .Cells }}
<td>{{ . }}</td>
{{- end }}
<td><a class="btn-edit" href="{{ .EditURL }}">Edit</a></td>
<td><a class="btn-delete" href="{{ .DeleteURL }}">Delete</a></td>
</tr>
{{- end }}
</tbody>
</table>
`))
