package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/okian/tassibets/internal/domain/model"
)

//go:embed static/*
var staticFS embed.FS

//go:embed templates/index.html.tmpl
var indexTemplate string

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"label": func(c model.Category) string { return c.Label() },
	"icon":  func(c model.Category) string { return c.Icon() },
	"clock": func(t time.Time) string { return t.Local().Format("15:04:05") },
}).Parse(indexTemplate))

// FS returns an http.FileSystem for the embedded page assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
