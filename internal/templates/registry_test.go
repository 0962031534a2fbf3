package templates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/model"
	"resume-builder/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(templateID string) model.Document {
	return model.Document{
		TemplateID: templateID,
		Sections:   []string{model.SectionExperience, model.SectionProfile, model.SectionSkills, model.SectionAwards},
		Content: model.Content{
			"profile": map[string]any{
				"fullName": "Ada Lovelace",
				"title":    "Analyst",
				"email":    "ada@example.com",
				"github":   "https://github.com/ada",
				"summary":  "Writes programs for engines.",
			},
			"experience": []any{map[string]any{
				"company":     "Engines Ltd",
				"role":        "Engineer",
				"startDate":   "1842",
				"description": []any{"Notes on the engine", "First program"},
			}},
			"skills": "Math\nPoetry",
		},
		Customizations: model.Customizations{
			model.GlobalKey:         {FontColor: "#111111", TemplateColor: "#fafafa"},
			model.SectionExperience: {Bold: true},
		},
	}
}

func TestRegistry_BuiltinsListed(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Equal(t, []Info{
		{ID: "modern", Name: "Resume 1"},
		{ID: "classic", Name: "Resume 2"},
		{ID: "creative", Name: "Resume 3"},
		{ID: "red", Name: "Resume 4"},
	}, r.List())
	assert.True(t, r.Has(model.DefaultTemplateID))
}

func TestRegistry_RendersEveryBuiltin(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, info := range r.List() {
		t.Run(info.ID, func(t *testing.T) {
			out, err := r.Render(sampleDocument(info.ID))
			require.NoError(t, err)
			assert.Contains(t, out.Stylesheet, ".resume-root")
			assert.Contains(t, out.Body, "Ada Lovelace")
			assert.Contains(t, out.Body, `<a href="https://github.com/ada">github.com/ada</a>`)
			assert.Contains(t, out.Body, "<li>Poetry</li>")
			assert.Contains(t, out.RootStyle, "color: #111111")
			assert.Contains(t, out.RootStyle, "background-color: #fafafa")
		})
	}
}

func TestRegistry_SectionOrderAndStyle(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	out, err := r.Render(sampleDocument("classic"))
	require.NoError(t, err)

	exp := strings.Index(out.Body, `section-experience`)
	prof := strings.Index(out.Body, `section-profile`)
	skills := strings.Index(out.Body, `section-skills`)
	require.True(t, exp > 0 && prof > 0 && skills > 0)
	assert.Less(t, exp, prof)
	assert.Less(t, prof, skills)
	assert.NotContains(t, out.Body, "section-awards", "sections without data are skipped")

	assert.Contains(t, out.Body, `<section class="resume-section section-experience" style="font-weight: bold">`)
	assert.Contains(t, out.Body, `<section class="resume-section section-skills" style="color: #111111">`)
	assert.Equal(t, 1+3, strings.Count(out.Body, "<header")+strings.Count(out.Body, "<section "))
}

func TestRegistry_EmptyDocument(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	out, err := r.Render(model.Document{TemplateID: "modern"})
	require.NoError(t, err)
	assert.Contains(t, out.Body, "No resume data to display")
	assert.NotContains(t, out.Body, "<header")
	assert.Contains(t, out.RootStyle, "background-color: #f5f5f5")
}

func TestRegistry_UnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	_, err = r.Render(model.Document{TemplateID: "nonexistent"})
	assert.ErrorIs(t, err, pagination.ErrTemplateNotFound)
}

func TestRegistry_EscapesContent(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	doc := model.Document{
		TemplateID: "classic",
		Content: model.Content{
			"profile": map[string]any{"fullName": "<script>x</script>", "linkedin": "javascript:alert(1)"},
		},
	}
	out, err := r.Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, out.Body, "<script>")
	assert.NotContains(t, out.Body, `href="javascript:`)
}

func TestSectionOrder(t *testing.T) {
	assert.Equal(t, model.SectionKeys, sectionOrder(nil))
	assert.Equal(t, []string{"skills", "profile"}, sectionOrder([]string{"skills", "bogus", "profile", "skills"}))
}

const customTemplate = `{{define "name"}}Plain{{end}}{{define "body"}}<div class="plain">{{.Data.Profile.FullName}}</div>{{end}}`

func TestRegistry_DirOverrideAndReload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.tmpl"), []byte(customTemplate), 0o644))

	r, err := NewFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []Info{{ID: "plain", Name: "Plain"}}, r.List())
	assert.False(t, r.Has("classic"))

	out, err := r.Render(model.Document{TemplateID: "plain", Content: model.Content{"profile": map[string]any{"fullName": "Ada"}}})
	require.NoError(t, err)
	assert.Equal(t, `<div class="plain">Ada</div>`, out.Body)
	assert.Empty(t, out.Stylesheet)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.tmpl"), []byte(`{{define "body"}}{{.Nope`), 0o644))
	assert.Error(t, r.Reload())
	assert.True(t, r.Has("plain"), "failed reload keeps the previous set")
}

func TestRegistry_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.tmpl"), []byte(customTemplate), 0o644))
	r, err := NewFromDir(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, func() { reloaded <- struct{}{} }) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.tmpl"), []byte(customTemplate), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after template change")
	}
	assert.True(t, r.Has("second"))

	cancel()
	require.NoError(t, <-done)
}
