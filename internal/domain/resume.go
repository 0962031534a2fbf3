package domain

import (
	"errors"
	"time"

	"resume-builder/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when no resume has the requested id.
var ErrNotFound = errors.New("resume not found")

type Resume struct {
	ID             string               `json:"id"`
	UserID         string               `json:"userId"`
	Title          string               `json:"title"`
	Content        model.Content        `json:"content"`
	TemplateID     string               `json:"templateId"`
	Sections       []string             `json:"sections"`
	Customizations model.Customizations `json:"customizations"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// NewResume returns a resume with a fresh id and both timestamps set to now.
func NewResume(userID, title string, doc model.Document) *Resume {
	now := time.Now().UTC()
	r := &Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.SetDocument(doc)
	return r
}

// Document is the part of the resume templates render.
func (r *Resume) Document() model.Document {
	return model.Document{
		Content:        r.Content,
		Sections:       r.Sections,
		TemplateID:     r.TemplateID,
		Customizations: r.Customizations,
	}
}

// SetDocument replaces the renderable part and normalizes empty values.
func (r *Resume) SetDocument(doc model.Document) {
	r.Content = doc.Content
	if r.Content == nil {
		r.Content = model.Content{}
	}
	r.Sections = doc.Sections
	if r.Sections == nil {
		r.Sections = []string{}
	}
	r.TemplateID = doc.Template()
	r.Customizations = doc.Customizations
	if r.Customizations == nil {
		r.Customizations = model.DefaultCustomizations()
	}
}
