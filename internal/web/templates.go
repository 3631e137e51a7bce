package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
)

type templates struct {
	index  *template.Template
	result *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Ultimate Tic-Tac-Toe</h1>
<form action="/search" method="post" hx-post="/search" hx-target="#result" hx-swap="outerHTML">
  <label>Depth <input name="depth" value="{{.Depth}}"></label>
  <label>Board <input name="board" size="40" value="{{.Board}}"></label>
  <label>To move <select name="side"><option value="x">X</option><option value="o">O</option></select></label>
  <button>Search</button>
</form>
<div id="result"></div>
<div hx-ext="sse" sse-connect="/events">
  <div id="feed" sse-swap="search" hx-swap="afterbegin"></div>
</div>`))
	result := template.Must(template.New("result_only").Funcs(funcs()).Parse(resultTemplate))
	return &templates{index: index, result: result}
}

// feedEntry renders a finished search as one line of the live feed.
func feedEntry(res app.Result) []byte {
	return []byte(`<div class="event">` + template.HTMLEscapeString(res.String()) + `</div>`)
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

const resultTemplate = `
<div id="result">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{else}}
  <pre class="tokens">{{join .Tokens " "}}</pre>
  <pre class="board">{{.Board}}</pre>
  {{end}}
</div>
`
