// Package web holds the html templates, embedded into the binary.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses every page and partial
func Templates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"trend": func(s string) string {
			switch s {
			case "up":
				return "▲"
			case "down":
				return "▼"
			}
			return ""
		},
	}
	return template.New("").Funcs(funcMap).ParseFS(files, "templates/*.tmpl")
}
