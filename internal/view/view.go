// Package view renders the server-side HTML pages. Each page template is
// parsed together with the shared layout so {{template "content"}} resolves
// per page.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/dashmed/dashmed/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

// Renderer holds one compiled template set per page.
type Renderer struct {
	appName string
	pages   map[string]*template.Template
}

func NewRenderer(appName string) (*Renderer, error) {
	base := template.New("layout").Funcs(sprig.FuncMap())
	base, err := base.ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	entries, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		tmpl, err = tmpl.ParseFS(templateFS, entry)
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", entry, err)
		}
		name := strings.TrimSuffix(path.Base(entry), ".html")
		pages[name] = tmpl
	}

	return &Renderer{appName: appName, pages: pages}, nil
}

// Data is the payload handed to every page. Page carries page-specific
// values under their own keys.
type Data struct {
	Title      string
	AppName    string
	DoctorName string
	LoggedIn   bool
	// EmailPending is set while the account's address awaits verification,
	// e.g. right after an email change.
	EmailPending bool
	CSRFToken    string
	Error        string
	Success      string
	Page         gin.H
}

// HTML writes a rendered page. Render failures fall back to a plain 500 so
// the response is never half a page.
func (r *Renderer) HTML(c *gin.Context, status int, page string, data Data) {
	tmpl, ok := r.pages[page]
	if !ok {
		logger.GetLogger().Error("Unknown page template", zap.String("page", page))
		c.String(http.StatusInternalServerError, "template error")
		return
	}
	if data.AppName == "" {
		data.AppName = r.appName
	}
	if data.Page == nil {
		data.Page = gin.H{}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := tmpl.ExecuteTemplate(c.Writer, "layout", data); err != nil {
		logger.GetLogger().Error("Template execution failed",
			zap.String("page", page),
			zap.Error(err))
	}
}
