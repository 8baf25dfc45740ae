package heuristics

import (
	"github.com/local/lessonplanner/internal/lesson"
)

// Extractor derives one lesson field from normalized text. Implementations are stateless
// and must return the same value for the same text.
type Extractor interface {
	Field() lesson.Field
	Extract(text string) string
}

// Summarizer is the summary capability the heuristics build on.
type Summarizer interface {
	Lines(text string, count int) []string
}

// Default returns the fixed, ordered heuristic set used by the pipeline.
func Default(s Summarizer) []Extractor {
	return []Extractor{
		Objectives{Summarizer: s, MaxPoints: 5},
		Resources(),
		Outline{Summarizer: s, Sentences: 8},
		Assessment{Summarizer: s, Sentences: 4, MaxQuestions: 4},
		Homework(),
		Conclusion(),
		Note(),
	}
}

// Run applies every extractor to text and collects the results by field.
func Run(extractors []Extractor, text string) map[lesson.Field]string {
	out := make(map[lesson.Field]string, len(extractors))
	for _, e := range extractors {
		out[e.Field()] = e.Extract(text)
	}
	return out
}
