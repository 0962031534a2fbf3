package usecase

import (
	"context"
	"testing"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ResumeInput {
	return ResumeInput{
		Title:      "Backend",
		TemplateID: "modern",
		Sections:   []string{model.SectionProfile, model.SectionSkills},
		Content: model.Content{
			"profile": map[string]any{"fullName": "Ada", "summary": "Engineer"},
			"skills":  []any{"Go"},
		},
	}
}

func TestResumeService_CreateDefaults(t *testing.T) {
	svc := NewResumeService(newMemRepo(), nil)
	r, err := svc.Create(context.Background(), "u1", ResumeInput{})
	require.NoError(t, err)
	assert.Equal(t, "Untitled Resume", r.Title)
	assert.Equal(t, model.DefaultTemplateID, r.TemplateID)
	assert.Equal(t, []string{}, r.Sections)
	assert.Equal(t, model.DefaultCustomizations(), r.Customizations)
	assert.NotEmpty(t, r.ID)
}

func TestResumeService_RejectsInvalidContent(t *testing.T) {
	svc := NewResumeService(newMemRepo(), nil)
	in := validInput()
	in.Sections = []string{"hobbies"}
	_, err := svc.Create(context.Background(), "u1", in)
	assert.ErrorIs(t, err, ErrInvalidResume)
}

func TestResumeService_OwnershipAndNotifications(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc := NewResumeService(newMemRepo(), n)

	r, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "u2", r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.List(ctx, "u2", "u1")
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := svc.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	in := validInput()
	in.Title = ""
	in.TemplateID = "red"
	updated, err := svc.Update(ctx, "u1", r.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Backend", updated.Title, "blank title keeps the old one")
	assert.Equal(t, "red", updated.TemplateID)
	assert.False(t, updated.UpdatedAt.Before(r.UpdatedAt))
	assert.Equal(t, []string{r.ID}, n.invalidated)

	_, err = svc.Update(ctx, "u2", r.ID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", r.ID), domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "u1", r.ID))
	assert.Equal(t, []string{r.ID}, n.dropped)
	_, err = svc.Get(ctx, "u1", r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
