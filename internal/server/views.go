package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

func (s *Server) newViews() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("January 2, 2006, 15:04")
		},
		"mediaURL": func(key string) string {
			if s.media == nil {
				return ""
			}
			return s.media.URL(key)
		},
		"linebreaks": func(text string) []string {
			return splitParagraphs(text)
		},
	})
	return engine
}
