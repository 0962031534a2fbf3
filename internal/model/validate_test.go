package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	valid := Document{
		TemplateID: "modern",
		Sections:   []string{SectionProfile, SectionSkills},
		Content: Content{
			"profile": map[string]any{"fullName": "Ada"},
			"skills":  []any{"Go"},
		},
		Customizations: DefaultCustomizations(),
	}
	assert.NoError(t, Validate(valid))
	assert.NoError(t, Validate(Document{}))

	tests := []struct {
		name string
		doc  Document
	}{
		{"unknown section", Document{Sections: []string{"hobbies"}}},
		{"duplicate section", Document{Sections: []string{SectionSkills, SectionSkills}}},
		{"experience not a list", Document{Content: Content{"experience": "lots"}}},
		{"bad alignment", Document{Customizations: Customizations{GlobalKey: {Align: "diagonal"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.doc), ErrInvalidDocument)
		})
	}
}
