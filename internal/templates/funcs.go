package templates

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var funcs = template.FuncMap{
	"linkLabel": linkLabel,
	"photoURL":  photoURL,
}

// linkLabel turns a profile or project link into a short readable label:
// the registrable domain followed by the path, e.g. "github.com/ada".
func linkLabel(v any) string {
	raw := strings.TrimSpace(fmt.Sprint(v))
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	host := parsed.Hostname()
	label := strings.TrimPrefix(host, "www.")
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		label = strings.TrimPrefix(etld, "www.")
	}
	if p := strings.TrimRight(parsed.Path, "/"); p != "" {
		label += p
	}
	return label
}

// photoURL lets uploaded data:image URLs through the template's URL filter.
// Anything that is neither such an image nor http(s) is dropped.
func photoURL(v any) template.URL {
	s := strings.TrimSpace(fmt.Sprint(v))
	switch {
	case strings.HasPrefix(s, "data:image/"):
		return template.URL(s)
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return template.URL(s)
	}
	return ""
}
