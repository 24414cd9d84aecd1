// Package views renders the HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"yatube/app/feed"
	"yatube/app/models"
)

//go:embed templates
var files embed.FS

// PageData is handed to every page. Data holds the page-specific view.
type PageData struct {
	User *models.User
	Data interface{}
}

// IndexView backs the home page; Listing is the cached fragment.
type IndexView struct {
	Listing template.HTML
}

type GroupView struct {
	Group *models.Group
	Page  feed.Page[*models.Post]
}

type FollowView struct {
	Page feed.Page[*models.Post]
}

type ProfileView struct {
	Author    *models.User
	Page      feed.Page[*models.Post]
	PostCount int
	Followers int
	Following int
	Relation  models.Relation
}

type DetailView struct {
	Post            *models.Post
	AuthorPostCount int
	Comments        []*models.Comment
	CanEdit         bool
}

// PostFormView backs both the create and the edit form.
type PostFormView struct {
	IsEdit  bool
	Action  string
	Text    string
	GroupID int
	Image   string
	Groups  []*models.Group
	Errors  map[string]string
}

type LoginView struct {
	Username string
	Next     string
	Errors   map[string]string
}

type SignupView struct {
	Username string
	Email    string
	Errors   map[string]string
}

type ErrorView struct {
	Status  int
	Message string
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
	basePath  string
}

// New parses every page under templates/pages. basePath prefixes all
// generated links.
func New(basePath string) (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}, basePath: strings.TrimRight(basePath, "/")}
	funcs := template.FuncMap{
		"url":  r.URL,
		"date": formatDate,
	}

	fragments, err := template.New("fragments").Funcs(funcs).ParseFS(files, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r.fragments = fragments

	pages, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		name := strings.TrimSuffix(path.Base(p), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html", "templates/partials/*.html", p)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// URL prefixes an absolute application path with the base path.
func (r *Renderer) URL(p string) string {
	return r.basePath + p
}

// Page writes the full page name wrapped in the layout.
func (r *Renderer) Page(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	// Render into a buffer so a template error does not leave half a page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Fragment renders a partial template on its own, without user chrome.
func (r *Renderer) Fragment(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render fragment %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	return t.Format("02 Jan 2006 15:04")
}
