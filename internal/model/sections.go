package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Lines is a list of text lines. The editor stores some fields either as an
// array of strings or as one newline separated string; both decode here.
type Lines []string

func (l *Lines) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = splitLines(s)
		return nil
	case b[0] == '[':
		var raw []any
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		out := make(Lines, 0, len(raw))
		for _, it := range raw {
			switch v := it.(type) {
			case string:
				if s := strings.TrimSpace(v); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				// skills/languages entries sometimes come as {name: ...}
				if s, ok := v["name"].(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			case nil:
			default:
				out = append(out, fmt.Sprint(v))
			}
		}
		*l = out
		return nil
	}
	*l = nil
	return nil
}

func splitLines(s string) Lines {
	var out Lines
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Text decodes a free text field that may also have been stored as a number.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(strings.Trim(string(b), `"`))
	return nil
}

type Profile struct {
	FullName  Text `json:"fullName"`
	Title     Text `json:"title"`
	Email     Text `json:"email"`
	Phone     Text `json:"phone"`
	Address   Text `json:"address"`
	LinkedIn  Text `json:"linkedin"`
	Website   Text `json:"website"`
	GitHub    Text `json:"github"`
	Portfolio Text `json:"portfolio"`
	Photo     Text `json:"photo"`
	Summary   Text `json:"summary"`
}

func (p Profile) empty() bool {
	return p == Profile{}
}

type Experience struct {
	Company     Text  `json:"company"`
	Role        Text  `json:"role"`
	StartDate   Text  `json:"startDate"`
	EndDate     Text  `json:"endDate"`
	Location    Text  `json:"location"`
	Description Lines `json:"description"`
}

type Education struct {
	Degree      Text `json:"degree"`
	Institution Text `json:"institution"`
	StartYear   Text `json:"startYear"`
	EndYear     Text `json:"endYear"`
}

type Award struct {
	Title  Text `json:"title"`
	Issuer Text `json:"issuer"`
	Year   Text `json:"year"`
}

type Certificate struct {
	Name   Text `json:"name"`
	Issuer Text `json:"issuer"`
	Year   Text `json:"year"`
	Link   Text `json:"link"`
}

type Project struct {
	Title       Text `json:"title"`
	Description Text `json:"description"`
	Link        Text `json:"link"`
}

type Organisation struct {
	Name Text `json:"name"`
	Role Text `json:"role"`
	Year Text `json:"year"`
}

type Course struct {
	Name     Text `json:"name"`
	Provider Text `json:"provider"`
	Year     Text `json:"year"`
}

type Publication struct {
	Title   Text `json:"title"`
	Journal Text `json:"journal"`
	Year    Text `json:"year"`
}

type Reference struct {
	Name     Text `json:"name"`
	Relation Text `json:"relation"`
	Contact  Text `json:"contact"`
}

// ResumeData is the typed view of Content that templates render from.
type ResumeData struct {
	Profile       Profile        `json:"profile"`
	Experience    []Experience   `json:"experience"`
	Education     []Education    `json:"education"`
	Skills        Lines          `json:"skills"`
	Languages     Lines          `json:"languages"`
	Awards        []Award        `json:"awards"`
	Certificates  []Certificate  `json:"certificates"`
	Projects      []Project      `json:"projects"`
	Organisations []Organisation `json:"organisations"`
	Courses       []Course       `json:"courses"`
	Publications  []Publication  `json:"publications"`
	References    []Reference    `json:"references"`
	Interests     Lines          `json:"interests"`
	Declaration   Text           `json:"declaration"`
}

// Decode converts the opaque content map into ResumeData.
func (c Content) Decode() (ResumeData, error) {
	var out ResumeData
	if len(c) == 0 {
		return out, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return out, fmt.Errorf("encode content: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode content: %w", err)
	}
	return out, nil
}

// Empty reports whether no section carries any data.
func (d ResumeData) Empty() bool {
	return d.Profile.empty() &&
		len(d.Experience) == 0 &&
		len(d.Education) == 0 &&
		len(d.Skills) == 0 &&
		len(d.Languages) == 0 &&
		len(d.Awards) == 0 &&
		len(d.Certificates) == 0 &&
		len(d.Projects) == 0 &&
		len(d.Organisations) == 0 &&
		len(d.Courses) == 0 &&
		len(d.Publications) == 0 &&
		len(d.References) == 0 &&
		len(d.Interests) == 0 &&
		d.Declaration == ""
}

// Has reports whether the given section has something to render.
func (d ResumeData) Has(section string) bool {
	switch section {
	case SectionProfile:
		return d.Profile.Summary != ""
	case SectionExperience:
		return len(d.Experience) > 0
	case SectionEducation:
		return len(d.Education) > 0
	case SectionSkills:
		return len(d.Skills) > 0
	case SectionLanguages:
		return len(d.Languages) > 0
	case SectionAwards:
		return len(d.Awards) > 0
	case SectionCertificates:
		return len(d.Certificates) > 0
	case SectionProjects:
		return len(d.Projects) > 0
	case SectionOrganisations:
		return len(d.Organisations) > 0
	case SectionCourses:
		return len(d.Courses) > 0
	case SectionPublications:
		return len(d.Publications) > 0
	case SectionReferences:
		return len(d.References) > 0
	case SectionInterests:
		return len(d.Interests) > 0
	case SectionDeclaration:
		return d.Declaration != ""
	}
	return false
}
