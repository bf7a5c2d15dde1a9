package output

import (
	"regexp"

	"github.com/arthur-debert/jiek/pkg/output/styles"
)

// tagRe matches <Name>text</Name>; tags do not nest
var tagRe = regexp.MustCompile(`(?s)<([A-Z][A-Za-z]*)>(.*?)</([A-Z][A-Za-z]*)>`)

// ExpandTags renders every tagged span with its style. Spans whose tag
// has no style are left unstyled.
func ExpandTags(s string, reg styles.Registry) string {
	return tagRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := tagRe.FindStringSubmatch(m)
		if parts[1] != parts[3] {
			return m
		}
		style, ok := reg[parts[1]]
		if !ok {
			return parts[2]
		}
		return style.Render(parts[2])
	})
}

// StripTags removes the tags and keeps their text
func StripTags(s string) string {
	return tagRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := tagRe.FindStringSubmatch(m)
		if parts[1] != parts[3] {
			return m
		}
		return parts[2]
	})
}
