package datagrid

import (
	"embed"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/partials/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer over the embedded table
// and report templates.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
