package heuristics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/summarize"
)

type fixedSummary []string

func (f fixedSummary) Lines(_ string, count int) []string {
	if count < len(f) {
		return f[:count]
	}
	return f
}

func TestLabeledSections(t *testing.T) {
	text := "Resources: pencil, paper\nHomework: read ch.2"
	assert.Equal(t, "pencil, paper", Resources().Extract(text))
	assert.Equal(t, "read ch.2", Homework().Extract(text))
	assert.Equal(t, "", Conclusion().Extract(text))
	assert.Equal(t, "", Note().Extract(""))
}

func TestSectionStopsAtNextHeading(t *testing.T) {
	text := "Intro line\nMaterials - ruler\nglue stick\nAssessment: quiz\nTeacher Note: watch time"
	assert.Equal(t, "ruler\nglue stick", Resources().Extract(text))
	assert.Equal(t, "watch time", Note().Extract(text))
}

func TestSectionWindow(t *testing.T) {
	text := "Summary: " + strings.Repeat("é", 900)
	got := Conclusion().Extract(text)
	assert.Equal(t, 800, len([]rune(got)))
}

func TestObjectivesFromKeywords(t *testing.T) {
	text := "Students will be able to identify plant parts. Plants have roots. " +
		"We learn how leaves work. Pupils describe the stem. They understand seeds. " +
		"Flowers will bloom. Nobody can list it all."
	got := Objectives{MaxPoints: 5}.Extract(text)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "• Students will be able to identify plant parts", lines[0])
	assert.Equal(t, "• Flowers will bloom", lines[4])
}

func TestObjectivesFallbacks(t *testing.T) {
	o := Objectives{Summarizer: fixedSummary{"Roots hold soil.", " ", "Stems carry water."}, MaxPoints: 5}
	assert.Equal(t, "• Roots hold soil.\n• Stems carry water.", o.Extract("Roots hold soil. Stems carry water."))

	o.Summarizer = fixedSummary{}
	assert.Equal(t, "• Students will be able to ...", o.Extract(""))
}

func TestOutline(t *testing.T) {
	o := Outline{Summarizer: fixedSummary{"a", "b", "c"}, Sentences: 2}
	assert.Equal(t, "a\nb", o.Extract("whatever"))
	assert.Equal(t, "", Outline{}.Extract("whatever"))
}

func TestAssessment(t *testing.T) {
	a := Assessment{Summarizer: fixedSummary{"Plants need light.", "Short one.", "Roots absorb water from soil."}, Sentences: 4, MaxQuestions: 4}
	assert.Equal(t, "Q1. Explain: Plants need light?\nQ3. Explain: Roots absorb water from soil?", a.Extract("x"))

	a.Summarizer = fixedSummary{"Too short."}
	assert.Equal(t, "Q1. What is the main idea of the chapter?\nQ2. List two key points.", a.Extract("x"))
}

func TestActivitiesIsFixed(t *testing.T) {
	assert.Len(t, strings.Split(Activities(), "\n"), 4)
	assert.Equal(t, Activities(), Activities())
}

func TestDefaultCoversEveryDerivedField(t *testing.T) {
	got := Run(Default(summarize.New(summarize.Options{})), "")
	for _, f := range []lesson.Field{lesson.Objectives, lesson.Resources, lesson.Outline, lesson.Assessment, lesson.Homework, lesson.Conclusion, lesson.Note} {
		_, ok := got[f]
		assert.True(t, ok, "missing %s", f)
	}
	assert.Equal(t, "• Students will be able to ...", got[lesson.Objectives])
	assert.Equal(t, "", got[lesson.Outline])
}

func TestHeuristicsArePure(t *testing.T) {
	text := "Students will be able to identify plant parts. Leaves make food from light.\n" +
		"Materials: seeds, soil\nHomework: plant a seed\nConclusion: plants need care"
	ex := Default(summarize.New(summarize.Options{}))
	assert.Equal(t, Run(ex, text), Run(ex, text))
}

func TestPastedTextObjectivesEndToEnd(t *testing.T) {
	var b strings.Builder
	b.WriteString("Students will be able to identify plant parts. ")
	for b.Len() < 500 {
		b.WriteString("Roots anchor the plant and absorb water. Leaves capture sunlight for food. ")
	}
	got := Objectives{Summarizer: summarize.New(summarize.Options{}), MaxPoints: 5}.Extract(b.String())
	assert.Equal(t, "• Students will be able to identify plant parts", strings.Split(got, "\n")[0])
}
