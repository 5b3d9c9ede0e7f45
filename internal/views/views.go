// Package views holds the server-rendered HTML templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var files embed.FS

// Page scripts live in files served from our own origin; the content
// security policy allows no inline script.
//
//go:embed static/*.js
var static embed.FS

var funcs = template.FuncMap{
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ReplaceAll(s[1:], "_", " ")
	},
	"contains": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}

// Parse loads every template. Page templates are addressed by the name
// they define, e.g. "login".
func Parse() (*template.Template, error) {
	t, err := template.New("views").Funcs(funcs).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	return t, nil
}

// Assets serves the page scripts. Mount it under /static.
func Assets() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
