package formatters

import (
	"fmt"
	"strings"
)

// SummaryPrompt builds the instruction sent to the ai-service for a resume
// objective.
func SummaryPrompt(jobTitle, experience string, skills []string, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a concise, professional resume objective for someone applying as a %q.\n", jobTitle)
	fmt.Fprintf(&b, "Their experience: %q.\n", experience)
	fmt.Fprintf(&b, "Their skills include: %s.\n", strings.Join(skills, ", "))
	b.WriteString("Make it clear, confident, and suitable for a modern resume.\n")
	if language != "" {
		fmt.Fprintf(&b, "LANGUAGE: Write the objective in %s.\n", language)
	}
	b.WriteString("Return ONLY the objective text, no headings, quotes, or code fences.")
	return b.String()
}

// CleanSummary strips the wrapping the model sometimes adds around plain text:
// code fences, a leading label and surrounding quotes.
func CleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	s = unquote(s)
	for _, label := range []string{"Objective:", "Summary:"} {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
		}
	}
	return unquote(s)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
