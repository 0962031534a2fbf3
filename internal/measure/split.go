// Package measure extracts the top-level blocks of a host document and, for
// environments without a browser, estimates their rendered heights.
package measure

import (
	"errors"
	"fmt"
	"strings"

	"resume-builder/internal/pagination"

	"golang.org/x/net/html"
)

// ErrNoRoot is returned when the markup has no measurement root element.
var ErrNoRoot = errors.New("measurement root not found")

// SplitBlocks returns the outer HTML of every element child of the
// measurement root, in document order.
func SplitBlocks(markup string) ([]string, error) {
	root, err := findRoot(markup)
	if err != nil {
		return nil, err
	}
	var out []string
	for c := range elementChildren(root) {
		s, err := outerHTML(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func findRoot(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse host document: %w", err)
	}
	if n := byID(doc, pagination.RootID); n != nil {
		return n, nil
	}
	return nil, ErrNoRoot
}

func byID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := byID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func elementChildren(n *html.Node) func(func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && !yield(c) {
				return
			}
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func outerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
