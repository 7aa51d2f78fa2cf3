package views

import (
	"embed"
	"html/template"
)

//go:embed index.html
var files embed.FS

// Templates parses the page templates; the upload page is "index.html".
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "index.html"))
}
