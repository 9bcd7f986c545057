package server

import (
	"html/template"
	"net/http"

	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

type page struct {
	Title   string
	Tables  []string
	Content template.HTML
}

type deleteConfirmation struct {
	Table     string
	ItemID    string
	Action    string
	CancelURL string
}

var layoutTemplate = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>{{ .Title }}</title>
</head>
<body>
<nav>
<a href="/">Tables</a>
{{- range .Tables }}
<a href="/{{ . }}">{{ . }}</a>
{{- end }}
</nav>
<main>
{{ .Content }}
</main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`
<h3>Tables</h3>
<ul>
{{- range . }}
<li><a href="/{{ . }}">{{ . }}</a></li>
{{- end }}
</ul>
`))

var listTemplate = template.Must(template.New("list").Parse(`
<h3>{{ .Table }}</h3>
<p><a class="btn-add" href="/{{ .Table }}/add">Add new</a></p>
{{ .Listing }}
`))

var deleteTemplate = template.Must(template.New("delete").Parse(`
<form action="{{ .Action }}" method="post">
<h3>Delete {{ .Table }} {{ .ItemID }}?</h3>
<input type="hidden" name="item_id" value="{{ .ItemID }}" />
<input type="submit" value="Delete" name="confirm" />
<a class="btn-cancel" href="{{ .CancelURL }}">Cancel</a>
</form>
`))

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, title string, content template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	err := layoutTemplate.Execute(w, &page{Title: title, Tables: s.config.TableNames(), Content: content})
	if err != nil {
		logging.Logger(r.Context(), s.logger).Warn("unable to write page", zap.String("title", title), zap.Error(err))
	}
}
