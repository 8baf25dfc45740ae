package heuristics

import (
	"regexp"
	"strings"

	"github.com/local/lessonplanner/internal/lesson"
)

// sectionWindow caps the captured content, in runes.
const sectionWindow = 800

// Section captures the text under a heading such as "Homework:" up to the next heading-like
// line ("Capitalised short line:") or the end of the text. No heading yields "".
type Section struct {
	field lesson.Field
	re    *regexp.Regexp
}

// NewSection builds a section extractor for a regex alternation of heading synonyms.
func NewSection(field lesson.Field, headings string) Section {
	return Section{
		field: field,
		re:    regexp.MustCompile(`(?is)(` + headings + `)\s*[:\-\n]\s*(.*?)(\n[A-Z][^\n]{0,80}:|\z)`),
	}
}

func Resources() Section  { return NewSection(lesson.Resources, "Resource|Resources|Materials") }
func Homework() Section   { return NewSection(lesson.Homework, "Homework|Extension Activity|Assignment") }
func Conclusion() Section { return NewSection(lesson.Conclusion, "Conclusion|Summary|Summing up") }
func Note() Section       { return NewSection(lesson.Note, "Note for Teacher|Teacher Note|Notes") }

func (s Section) Field() lesson.Field { return s.field }

func (s Section) Extract(text string) string {
	if text == "" || s.re == nil {
		return ""
	}
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return truncateRunes(strings.TrimSpace(m[2]), sectionWindow)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
