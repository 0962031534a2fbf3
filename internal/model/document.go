package model

// Section keys understood by the editor and the bundled templates.
const (
	SectionProfile       = "profile"
	SectionExperience    = "experience"
	SectionEducation     = "education"
	SectionSkills        = "skills"
	SectionLanguages     = "languages"
	SectionAwards        = "awards"
	SectionCertificates  = "certificates"
	SectionProjects      = "projects"
	SectionOrganisations = "organisations"
	SectionCourses       = "courses"
	SectionPublications  = "publications"
	SectionReferences    = "references"
	SectionInterests     = "interests"
	SectionDeclaration   = "declaration"
)

// SectionKeys lists every known section in the editor's default order.
var SectionKeys = []string{
	SectionProfile,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionLanguages,
	SectionAwards,
	SectionCertificates,
	SectionProjects,
	SectionOrganisations,
	SectionCourses,
	SectionPublications,
	SectionReferences,
	SectionInterests,
	SectionDeclaration,
}

// DefaultTemplateID is used when a resume carries no template choice.
const DefaultTemplateID = "classic"

// Content maps a section key to whatever the editor stored for it: arrays of
// records, string lists or free text.
type Content map[string]any

// Document is everything a template needs to render a resume. It is passed
// explicitly to every rendering and pagination call.
type Document struct {
	Content        Content        `json:"content"`
	Sections       []string       `json:"sections"`
	TemplateID     string         `json:"templateId"`
	Customizations Customizations `json:"customizations"`
}

// Template returns the template id, falling back to DefaultTemplateID.
func (d Document) Template() string {
	if d.TemplateID == "" {
		return DefaultTemplateID
	}
	return d.TemplateID
}
