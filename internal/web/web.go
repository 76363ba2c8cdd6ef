// Package web holds the console's embedded HTML templates and the view
// models they render.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-console/internal/listview"
	"github.com/noah-isme/academic-console/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	TemplateLogin           = "login.html"
	TemplateCourses         = "courses.html"
	TemplateSpecialisations = "specialisations.html"
	TemplateError           = "error.html"
)

// Layout is the chrome shared by every authenticated page.
type Layout struct {
	Title   string
	Page    models.Page
	Role    string
	IsAdmin bool
	Alert   string
}

// LoginPage is the unauthenticated screen.
type LoginPage struct {
	Layout
	ClientID string
	LoginURI string
	Error    string
}

// CoursesPage renders the course list.
type CoursesPage struct {
	Layout
	View  listview.View[models.Course]
	Stats models.CourseStats
	Terms []string
}

// SpecialisationsPage renders the specialisation list and its related
// courses modal.
type SpecialisationsPage struct {
	Layout
	View    listview.View[models.Specialisation]
	Stats   models.SpecialisationStats
	Related listview.RelatedView[models.Specialisation, models.Course]
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Install registers the templates on engine.
func Install(engine *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	engine.SetHTMLTemplate(tmpl)
	return nil
}

type toolbar struct {
	Base    string
	Noun    string
	Query   string
	IsAdmin bool
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"toolbar": func(base, noun, query string, isAdmin bool) toolbar {
			return toolbar{Base: base, Noun: noun, Query: query, IsAdmin: isAdmin}
		},
		"stateIs": func(state listview.State, want string) bool {
			return string(state) == want
		},
		"truncate": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return strings.TrimSpace(string(r[:n])) + "…"
		},
		"selected": func(a, b string) template.HTMLAttr {
			if a == b {
				return "selected"
			}
			return ""
		},
	}
}
