package heuristics

import (
	"strings"

	"github.com/local/lessonplanner/internal/lesson"
)

const (
	Bullet               = "• "
	objectivePlaceholder = Bullet + "Students will be able to ..."
)

var objectiveKeywords = []string{"able to", "will", "understand", "learn", "identify", "describe", "students will"}

// Objectives keeps sentences that read like learning goals, falling back to a short summary.
type Objectives struct {
	Summarizer Summarizer
	MaxPoints  int
}

func (Objectives) Field() lesson.Field { return lesson.Objectives }

func (o Objectives) Extract(text string) string {
	max := o.MaxPoints
	if max <= 0 {
		max = 5
	}
	var picked []string
	for _, part := range strings.Split(text, ".") {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		if containsAny(strings.ToLower(s), objectiveKeywords) {
			picked = append(picked, s)
			if len(picked) == max {
				break
			}
		}
	}
	if len(picked) == 0 && o.Summarizer != nil {
		for _, s := range o.Summarizer.Lines(text, max) {
			if s = strings.TrimSpace(s); s != "" {
				picked = append(picked, s)
			}
		}
	}
	if len(picked) == 0 {
		return objectivePlaceholder
	}
	return bulleted(picked)
}

func bulleted(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Bullet)
		b.WriteString(l)
	}
	return b.String()
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
