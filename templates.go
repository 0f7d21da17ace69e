package main

import (
	"embed"
	"html/template"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format(dateLayout) },
	"quantity": func(q float64) string {
		return strconv.FormatFloat(q, 'f', -1, 64)
	},
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
