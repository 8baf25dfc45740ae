package heuristics

import (
	"fmt"
	"strings"

	"github.com/local/lessonplanner/internal/lesson"
)

const genericAssessment = "Q1. What is the main idea of the chapter?\nQ2. List two key points."

// Assessment turns summary sentences into short "Explain" questions. Questions are numbered by
// the sentence's position in the summary, so skipped short sentences leave gaps.
type Assessment struct {
	Summarizer   Summarizer
	Sentences    int
	MaxQuestions int
}

func (Assessment) Field() lesson.Field { return lesson.Assessment }

func (a Assessment) Extract(text string) string {
	if a.Summarizer == nil {
		return genericAssessment
	}
	n := a.Sentences
	if n <= 0 {
		n = 4
	}
	max := a.MaxQuestions
	if max <= 0 {
		max = n
	}
	lines := a.Summarizer.Lines(text, n)
	if len(lines) > max {
		lines = lines[:max]
	}
	var qs []string
	for i, s := range lines {
		s = strings.TrimRight(strings.TrimSpace(s), ".")
		if len(strings.Fields(s)) < 3 {
			continue
		}
		qs = append(qs, fmt.Sprintf("Q%d. Explain: %s?", i+1, s))
	}
	if len(qs) == 0 {
		return genericAssessment
	}
	return strings.Join(qs, "\n")
}
