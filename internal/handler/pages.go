// Package handler contains HTTP request handlers for the link service.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (query params)
// 2. Call the service layer
// 3. Write the HTTP response (redirect or rendered page)
//
// Handlers should NOT contain business logic; they are the glue between HTTP and the service.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

// Page names. Each page is parsed together with base.html into its own
// template set, because every page defines the same "content" block.
const (
	pageComplete    = "complete"
	pageUnavailable = "unavailable"
)

// Pages holds the parsed HTML templates so we don't re-parse them on every request.
type Pages struct {
	sets   map[string]*template.Template
	logger *slog.Logger
}

// NewPages parses templates/base.html plus one templates/<page>.html per page from fsys.
//
// html/template escapes every {{.Field}} for its HTML context. The discord id
// on the confirmation page is attacker-controllable (it's a query parameter),
// so auto-escaping is what keeps it from becoming a script injection.
func NewPages(fsys fs.FS, logger *slog.Logger) (*Pages, error) {
	p := &Pages{
		sets:   make(map[string]*template.Template),
		logger: logger,
	}

	for _, name := range []string{pageComplete, pageUnavailable} {
		tmpl, err := template.ParseFS(fsys, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		p.sets[name] = tmpl
	}

	return p, nil
}

// Render executes page into a buffer and only then writes it out.
//
// BUFFER FIRST:
// If execution fails halfway, writing straight to w would leave the browser
// with a half-rendered page and a 200 status. Buffering lets us send a clean
// 500 instead; a page must never come out blank or truncated.
func (p *Pages) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := p.sets[page]
	if !ok {
		p.logger.Error("unknown page", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		p.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.logger.Warn("failed to write page", slog.String("page", page), slog.String("error", err.Error()))
	}
}
