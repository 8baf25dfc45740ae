package heuristics

import (
	"strings"

	"github.com/local/lessonplanner/internal/lesson"
)

// Outline is a newline-joined summary of the text.
type Outline struct {
	Summarizer Summarizer
	Sentences  int
}

func (Outline) Field() lesson.Field { return lesson.Outline }

func (o Outline) Extract(text string) string {
	if o.Summarizer == nil {
		return ""
	}
	n := o.Sentences
	if n <= 0 {
		n = 8
	}
	return strings.Join(o.Summarizer.Lines(text, n), "\n")
}
