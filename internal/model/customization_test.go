package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomizations_SectionReplacesGlobal(t *testing.T) {
	c := Customizations{
		GlobalKey:         {FontSize: "16px", FontColor: "#000000", Bold: true},
		SectionExperience: {FontColor: "#d32f2f"},
	}
	exp := c.For(SectionExperience)
	assert.Equal(t, Value("#d32f2f"), exp.FontColor)
	assert.Empty(t, exp.FontSize, "section entry is not merged with global")
	assert.False(t, exp.Bold)

	assert.Equal(t, c.Global(), c.For(SectionSkills))
	assert.Equal(t, Style{}, Customizations(nil).For(SectionSkills))
}

func TestValue_AcceptsStringsAndNumbers(t *testing.T) {
	var s Style
	require.NoError(t, json.Unmarshal([]byte(`{"fontSize":"14px","lineHeight":1.5,"spacing":null}`), &s))
	assert.Equal(t, Value("14px"), s.FontSize)
	assert.Equal(t, Value("1.5"), s.LineHeight)
	assert.Empty(t, s.Spacing)

	assert.Error(t, json.Unmarshal([]byte(`{"fontSize":true}`), &s))
}

func TestStyle_CSS(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		want  string
	}{
		{"empty", Style{}, ""},
		{
			"full",
			Style{FontStyle: "Georgia, serif", FontSize: "12pt", FontColor: "#333", Align: "center", LineHeight: "1.4", Bold: true, Italic: true, Underline: true},
			"font-family: Georgia, serif; font-size: 12pt; color: #333; text-align: center; line-height: 1.4; font-weight: bold; font-style: italic; text-decoration: underline",
		},
		{
			"drops unsafe values",
			Style{FontStyle: "x;} body{display:none", FontSize: "12px; color: red", FontColor: "red", Align: "diagonal"},
			"color: red",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.style.CSS())
		})
	}
}

func TestStyle_BackgroundAndGap(t *testing.T) {
	assert.Equal(t, "#fff", Style{TemplateColor: "#fff"}.Background("#000"))
	assert.Equal(t, "#000", Style{TemplateColor: "url(x)"}.Background("#000"))
	assert.Equal(t, "24px", Style{Spacing: "24px"}.Gap("16px"))
	assert.Equal(t, "16px", Style{}.Gap("16px"))
}

func TestDefaultCustomizations(t *testing.T) {
	g := DefaultCustomizations().Global()
	assert.Equal(t, Value("16px"), g.FontSize)
	assert.Equal(t, Value("one-column"), g.Layout)
}
