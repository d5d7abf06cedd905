package webserver

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

var pageNames = []string{"gallery", "ingredients", "post", "recipe", "error"}

// templateSet holds one parsed template per page, each sharing the layout
type templateSet struct {
	pages map[string]*template.Template
}

func parseTemplates() (*templateSet, error) {
	funcMap := template.FuncMap{
		"amount": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		// content is escaped before line breaks are inserted
		"trustedHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		set.pages[name] = tmpl
	}

	return set, nil
}

// renderTemplate executes the page into a buffer so that a failing
// template never leaves a half-written response
func (s *WebServer) renderTemplate(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	tmpl, ok := s.templates.pages[name]
	if !ok {
		s.logger.Error("Unknown template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	if data["AppName"] == nil {
		data["AppName"] = s.config.App.Name
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("Failed to execute template",
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
