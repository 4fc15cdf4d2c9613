// Package views embeds the HTML templates rendered by the show handlers.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html layouts/*.html
var files embed.FS

// Layout wraps every page.
const Layout = "layouts/main"

// NewEngine returns a template engine serving the embedded templates.
func NewEngine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
