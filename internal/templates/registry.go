// Package templates holds the resume templates a document can be rendered
// with. Templates are html/template files sharing one set of section
// partials; each renders the header and every section as a top-level block.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"resume-builder/internal/model"
	"resume-builder/internal/pagination"
)

//go:embed files
var embedded embed.FS

const (
	partialsFile      = "partials.tmpl"
	defaultBackground = "#ffffff"
)

var headings = map[string]string{
	model.SectionProfile:       "Objective",
	model.SectionExperience:    "Professional Experience",
	model.SectionEducation:     "Education",
	model.SectionSkills:        "Skills",
	model.SectionLanguages:     "Languages",
	model.SectionAwards:        "Awards",
	model.SectionCertificates:  "Certifications",
	model.SectionProjects:      "Projects",
	model.SectionOrganisations: "Organisations",
	model.SectionCourses:       "Courses",
	model.SectionPublications:  "Publications",
	model.SectionReferences:    "References",
	model.SectionInterests:     "Interests",
	model.SectionDeclaration:   "Declaration",
}

// Info describes a template for listings.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type entry struct {
	info       Info
	tmpl       *template.Template
	stylesheet string
	background string
}

// Registry resolves template ids. It is safe for concurrent use; Reload swaps
// the whole set at once.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	list    []Info
	dir     string
}

// New returns a registry over the embedded templates.
func New() (*Registry, error) {
	return NewFromDir("")
}

// NewFromDir returns a registry over the templates in dir, falling back to
// the embedded partials when dir has none. An empty dir means the embedded set.
func NewFromDir(dir string) (*Registry, error) {
	r := &Registry{dir: dir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads every template. On error the previous set stays active.
func (r *Registry) Reload() error {
	fsys, err := r.fs()
	if err != nil {
		return err
	}
	entries, list, err := load(fsys)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries, r.list = entries, list
	r.mu.Unlock()
	return nil
}

func (r *Registry) fs() (fs.FS, error) {
	if r.dir == "" {
		return fs.Sub(embedded, "files")
	}
	return os.DirFS(r.dir), nil
}

// List returns the available templates ordered by display name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, len(r.list))
	copy(out, r.list)
	return out
}

// Has reports whether id names a template.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

type sectionView struct {
	Key     string
	Heading string
	Style   template.CSS
	Gap     string
	Data    model.ResumeData
}

type view struct {
	Data        model.ResumeData
	Sections    []sectionView
	Empty       bool
	HeaderStyle template.CSS
	Gap         string
}

// Render renders doc with its template.
func (r *Registry) Render(doc model.Document) (pagination.Rendered, error) {
	r.mu.RLock()
	e, ok := r.entries[doc.Template()]
	r.mu.RUnlock()
	if !ok {
		return pagination.Rendered{}, fmt.Errorf("%w: %q", pagination.ErrTemplateNotFound, doc.Template())
	}

	data, err := doc.Content.Decode()
	if err != nil {
		return pagination.Rendered{}, err
	}
	global := doc.Customizations.Global()
	v := view{
		Data:        data,
		Empty:       data.Empty(),
		HeaderStyle: template.CSS(global.CSS()),
		Gap:         global.Gap("8px"),
	}
	for _, key := range sectionOrder(doc.Sections) {
		if !data.Has(key) {
			continue
		}
		style := doc.Customizations.For(key)
		v.Sections = append(v.Sections, sectionView{
			Key:     key,
			Heading: headings[key],
			Style:   template.CSS(style.CSS()),
			Gap:     v.Gap,
			Data:    data,
		})
	}

	var body bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&body, "body", v); err != nil {
		return pagination.Rendered{}, fmt.Errorf("execute template %q: %w", e.info.ID, err)
	}

	rootStyle := "background-color: " + global.Background(e.background)
	if css := global.CSS(); css != "" {
		rootStyle = css + "; " + rootStyle
	}
	return pagination.Rendered{
		Stylesheet: e.stylesheet,
		RootStyle:  rootStyle,
		Body:       body.String(),
	}, nil
}

// sectionOrder keeps the document's order, drops unknown and repeated keys and
// falls back to the default order when the document lists none.
func sectionOrder(keys []string) []string {
	if len(keys) == 0 {
		return model.SectionKeys
	}
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, known := headings[k]; !known || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func load(fsys fs.FS) (map[string]*entry, []Info, error) {
	partials, err := fs.ReadFile(fsys, partialsFile)
	if errors.Is(err, fs.ErrNotExist) {
		partials, err = embedded.ReadFile("files/" + partialsFile)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read partials: %w", err)
	}
	base, err := template.New(partialsFile).Funcs(funcs).Parse(string(partials))
	if err != nil {
		return nil, nil, fmt.Errorf("parse partials: %w", err)
	}

	names, err := fs.Glob(fsys, "*.tmpl")
	if err != nil {
		return nil, nil, err
	}
	entries := make(map[string]*entry)
	var list []Info
	for _, name := range names {
		if name == partialsFile {
			continue
		}
		id := strings.TrimSuffix(name, ".tmpl")
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, nil, fmt.Errorf("read template %q: %w", id, err)
		}
		t, err := base.Clone()
		if err != nil {
			return nil, nil, err
		}
		if _, err := t.New(name).Parse(string(src)); err != nil {
			return nil, nil, fmt.Errorf("parse template %q: %w", id, err)
		}
		if t.Lookup("body") == nil {
			return nil, nil, fmt.Errorf("template %q defines no body", id)
		}
		css, err := fs.ReadFile(fsys, id+".css")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("read stylesheet %q: %w", id, err)
		}
		e := &entry{
			info:       Info{ID: id, Name: define(t, "name", id)},
			tmpl:       t,
			stylesheet: string(css),
			background: define(t, "background", defaultBackground),
		}
		entries[id] = e
		list = append(list, e.info)
	}
	if len(entries) == 0 {
		return nil, nil, errors.New("no templates found")
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return entries, list, nil
}

// define executes a data-less named template and returns its trimmed text,
// or fallback if the template does not define it.
func define(t *template.Template, name, fallback string) string {
	if t.Lookup(name) == nil {
		return fallback
	}
	var b strings.Builder
	if err := t.ExecuteTemplate(&b, name, nil); err != nil {
		return fallback
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		return s
	}
	return fallback
}
