package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// GlobalKey is the customization entry applied to sections without their own.
const GlobalKey = "global"

// Value accepts both JSON strings and numbers. The editor stores font sizes as
// "16px" but line heights sometimes arrive as bare numbers.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Style is one node of the customization tree.
type Style struct {
	FontStyle     Value `json:"fontStyle,omitempty"`
	FontSize      Value `json:"fontSize,omitempty"`
	FontColor     Value `json:"fontColor,omitempty"`
	TemplateColor Value `json:"templateColor,omitempty"`
	Bold          bool  `json:"bold,omitempty"`
	Italic        bool  `json:"italic,omitempty"`
	Underline     bool  `json:"underline,omitempty"`
	Align         Value `json:"align,omitempty"`
	LineHeight    Value `json:"lineHeight,omitempty"`
	Layout        Value `json:"layout,omitempty"`
	Spacing       Value `json:"spacing,omitempty"`
}

// Customizations is the customization tree keyed by "global" or a section key.
type Customizations map[string]Style

// DefaultCustomizations mirrors the editor's initial state.
func DefaultCustomizations() Customizations {
	return Customizations{
		GlobalKey: {
			FontStyle:     "Arial, sans-serif",
			FontSize:      "16px",
			FontColor:     "#000000",
			TemplateColor: "#ffffff",
			Align:         "left",
			LineHeight:    "1.1",
			Layout:        "one-column",
		},
	}
}

// Global returns the global style, or the zero Style if none is set.
func (c Customizations) Global() Style {
	return c[GlobalKey]
}

// For resolves the style of a section: a section entry replaces the global
// style entirely, it is not merged field by field.
func (c Customizations) For(section string) Style {
	if s, ok := c[section]; ok {
		return s
	}
	return c.Global()
}

var (
	fontFamilyRe = regexp.MustCompile(`^[A-Za-z0-9 ,'\-]+$`)
	lengthRe     = regexp.MustCompile(`^\d+(\.\d+)?(px|pt|em|rem|%)?$`)
	colorRe      = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+)$`)
	alignments   = map[string]bool{"left": true, "center": true, "right": true, "justify": true}
)

// CSS renders the style as inline declarations. Values that do not look like
// what the editor produces are dropped, so the result is safe to emit into a
// style attribute.
func (s Style) CSS() string {
	var decl []string
	add := func(prop string, v Value, ok func(string) bool) {
		val := strings.TrimSpace(string(v))
		if val != "" && ok(val) {
			decl = append(decl, prop+": "+val)
		}
	}
	add("font-family", s.FontStyle, fontFamilyRe.MatchString)
	add("font-size", s.FontSize, lengthRe.MatchString)
	add("color", s.FontColor, colorRe.MatchString)
	add("text-align", s.Align, func(v string) bool { return alignments[v] })
	add("line-height", s.LineHeight, lengthRe.MatchString)
	if s.Bold {
		decl = append(decl, "font-weight: bold")
	}
	if s.Italic {
		decl = append(decl, "font-style: italic")
	}
	if s.Underline {
		decl = append(decl, "text-decoration: underline")
	}
	return strings.Join(decl, "; ")
}

// Background returns the sanitized template color, or fallback.
func (s Style) Background(fallback string) string {
	if v := strings.TrimSpace(string(s.TemplateColor)); v != "" && colorRe.MatchString(v) {
		return v
	}
	return fallback
}

// Gap returns the sanitized spacing value, or fallback.
func (s Style) Gap(fallback string) string {
	if v := strings.TrimSpace(string(s.Spacing)); v != "" && lengthRe.MatchString(v) {
		return v
	}
	return fallback
}
