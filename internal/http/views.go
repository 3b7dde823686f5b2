package http

import (
	"context"
	"embed"
	"html/template"
	"io/fs"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/services"
)

// View names understood by the renderer.
const (
	ViewBookIndex    = "books/index"
	ViewBookNew      = "books/new"
	ViewBookShow     = "books/show"
	ViewBookEdit     = "books/edit"
	ViewBookNotFound = "books/page-not-found"
)

//go:embed templates/*.html templates/books/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ViewRenderer turns a view name and its data into a response.
type ViewRenderer interface {
	Render(c *gin.Context, status int, view string, data gin.H)
}

// FlashReader pops the one-shot message left by the previous request.
type FlashReader interface {
	PopFlash(ctx context.Context) string
}

// HTMLRenderer renders the embedded templates through gin. Every page
// also receives the CSRF hidden field and the pending flash message.
type HTMLRenderer struct {
	flash FlashReader
}

func NewHTMLRenderer(flash FlashReader) *HTMLRenderer {
	return &HTMLRenderer{flash: flash}
}

func (r *HTMLRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	page := gin.H{}
	for k, v := range data {
		page[k] = v
	}
	page["csrfField"] = security.CSRFTokenField(c)
	if r.flash != nil {
		page["flash"] = r.flash.PopFlash(c.Request.Context())
	}
	c.HTML(status, view, page)
}

// fieldErrorFor returns the message for a single field, if any.
func fieldErrorFor(errs []services.FieldError, field string) string {
	for _, e := range errs {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// LoadTemplates parses the embedded view templates.
func LoadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"fieldError": fieldErrorFor,
	}
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html", "templates/books/*.html")
}

// StaticFiles returns the embedded stylesheet directory.
func StaticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
