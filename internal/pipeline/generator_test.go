package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/lessonplanner/internal/docx"
	"github.com/local/lessonplanner/internal/docx/docxtest"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/normalize"
	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/source"
	"github.com/local/lessonplanner/internal/storage"
	"github.com/local/lessonplanner/internal/summarize"
)

const plantText = "Plants have roots, stems and leaves. Students will be able to identify plant parts. " +
	"Roots take in water from the soil. Leaves make food using sunlight. Stems carry water to the leaves.\n" +
	"Homework: Draw a leaf and label it."

type mapTemplates map[string][]byte

func (m mapTemplates) Load(_ context.Context, ref string) ([]byte, error) {
	b, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, storage.ErrNotFound)
	}
	return b, nil
}

type stubNorm struct{ res outcome.Result[string] }

func (s stubNorm) Normalize(context.Context, source.Bundle) outcome.Result[string] { return s.res }

func lessonTemplate() []byte {
	return docxtest.Build(
		docxtest.Para("Lesson Title:")+
			docxtest.Para("Grade:")+
			docxtest.Para("Lesson Objectives:")+
			docxtest.Para("Homework:"),
		nil,
	)
}

func newGenerator(norm Normalizer, opts Options) *Generator {
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = "default.docx"
	}
	g := New(norm, summarize.New(summarize.Options{}), mapTemplates{"default.docx": lessonTemplate()}, opts)
	g.newID = func() string { return "0123abcd" }
	return g
}

func paragraphTexts(t *testing.T, data []byte) []string {
	t.Helper()
	d, err := docx.Open(data)
	require.NoError(t, err)
	var out []string
	for _, p := range d.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func TestGenerateFromText(t *testing.T) {
	g := newGenerator(normalize.New(nil, nil, normalize.Options{}), Options{})
	res, err := g.Generate(context.Background(), Request{
		Bundle: source.FromText(plantText),
		Meta:   lesson.Meta{Title: "Plants", Grade: "5"},
	})
	require.NoError(t, err)

	assert.Equal(t, outcome.OK, res.Branch)
	assert.Equal(t, "lesson_plan_0123abcd.docx", res.FileName)
	assert.Equal(t, []string{
		"Lesson Title: Plants",
		"Grade: 5",
		"Lesson Objectives: • Students will be able to identify plant parts",
		"Homework: Draw a leaf and label it.",
	}, paragraphTexts(t, res.Document))

	assert.Equal(t, "lesson title", res.Report.Labeled[lesson.LessonTitle])
	assert.Contains(t, res.Report.Unfilled, lesson.Outline)
	assert.NotEmpty(t, res.Headline)
	assert.NotEmpty(t, res.Fields.Assessment)
}

func TestGenerateUsesSessionTemplate(t *testing.T) {
	g := newGenerator(normalize.New(nil, nil, normalize.Options{}), Options{})
	g.templates = mapTemplates{
		"default.docx": lessonTemplate(),
		"custom.docx":  docxtest.Build(docxtest.Para("Subject: [ ]"), nil),
	}
	res, err := g.Generate(context.Background(), Request{
		Bundle:      source.FromText(plantText),
		Meta:        lesson.Meta{Subject: "Biology"},
		TemplateRef: "custom.docx",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject: Biology"}, paragraphTexts(t, res.Document))
}

func TestGenerateMissingTemplateIsIngestionError(t *testing.T) {
	g := newGenerator(normalize.New(nil, nil, normalize.Options{}), Options{})
	_, err := g.Generate(context.Background(), Request{Bundle: source.FromText(plantText), TemplateRef: "nope.docx"})
	require.Error(t, err)
	assert.True(t, outcome.IsIngestion(err))
	assert.ErrorIs(t, err, outcome.ErrTemplateNotFound)
}

func TestGenerateBrokenTemplateIsIngestionError(t *testing.T) {
	g := newGenerator(normalize.New(nil, nil, normalize.Options{}), Options{})
	g.templates = mapTemplates{"default.docx": []byte("not a zip")}
	_, err := g.Generate(context.Background(), Request{Bundle: source.FromText(plantText)})
	assert.True(t, outcome.IsIngestion(err))
}

func TestGenerateFatalSource(t *testing.T) {
	fatal := outcome.Fail[string](outcome.Ingestion("pdf", errors.New("failed to open PDF")))
	g := newGenerator(stubNorm{res: fatal}, Options{})
	res, err := g.Generate(context.Background(), Request{Bundle: source.FromPDF([]byte("junk"))})
	require.Error(t, err)
	assert.True(t, outcome.IsIngestion(err))
	assert.Equal(t, outcome.Fatal, res.Branch)
	assert.Nil(t, res.Document)
}

func TestExtractFallbackText(t *testing.T) {
	empty := outcome.Degrade("", outcome.NoWebContent)
	g := newGenerator(stubNorm{res: empty}, Options{})
	ext, err := g.Extract(context.Background(), Request{
		Bundle:       source.FromWeb(nil),
		FallbackText: "  Photosynthesis  ",
	})
	require.NoError(t, err)
	assert.Equal(t, outcome.Degraded, ext.Branch)
	assert.Contains(t, ext.Reasons, outcome.NoWebContent)
	assert.Equal(t, "Photosynthesis", ext.Text)
	assert.NotEmpty(t, ext.Headline)
}

func TestExtractEmptyInputKeepsEverySlot(t *testing.T) {
	g := newGenerator(normalize.New(nil, nil, normalize.Options{}), Options{})
	ext, err := g.Extract(context.Background(), Request{Bundle: source.FromText("")})
	require.NoError(t, err)
	assert.Len(t, ext.Fields.Values(), len(lesson.AllFields()))
	assert.Empty(t, ext.Headline)
	assert.Equal(t, "• Students will be able to ...", ext.Fields.Objectives)
}

func TestGenerateWithInlineTemplate(t *testing.T) {
	g := newGenerator(normalize.New(nil, nil, normalize.Options{}), Options{})
	res, err := g.Generate(context.Background(), Request{
		Bundle:      source.FromText(plantText),
		Meta:        lesson.Meta{Grade: "5"},
		TemplateRef: "missing.docx",
		Template:    docxtest.Build(docxtest.Para("Grade [x]"), nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Grade 5"}, paragraphTexts(t, res.Document))
}
