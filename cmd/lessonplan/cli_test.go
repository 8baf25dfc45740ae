package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/source"
)

type fakeSearcher struct {
	query string
	hits  []source.WebSource
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]source.WebSource, error) {
	f.query = query
	return f.hits, f.err
}

func resetFlags(t *testing.T) {
	t.Helper()
	pdfPath, textPath, chapter, templateRef, outPath = "", "", "", "", ""
	meta = lesson.Meta{}
	t.Cleanup(func() {
		pdfPath, textPath, chapter, templateRef, outPath = "", "", "", "", ""
		meta = lesson.Meta{}
	})
}

func TestReadInputRequiresExactlyOneSource(t *testing.T) {
	resetFlags(t)
	_, err := readInput(context.Background(), &fakeSearcher{}, 5)
	assert.ErrorIs(t, err, errNoInput)

	textPath, chapter = "notes.txt", "Plants"
	_, err = readInput(context.Background(), &fakeSearcher{}, 5)
	assert.ErrorIs(t, err, errNoInput)
}

func TestReadInputText(t *testing.T) {
	resetFlags(t)
	textPath = filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Homework: read"), 0o644))

	in, err := readInput(context.Background(), &fakeSearcher{}, 5)
	require.NoError(t, err)
	assert.Equal(t, source.KindText, in.bundle.Kind())
	assert.Equal(t, "Pasted Lesson", in.title)

	req := request(in)
	assert.Equal(t, "Pasted Lesson", req.Meta.Title)
}

func TestReadInputChapterSearchFailureKeepsFallback(t *testing.T) {
	resetFlags(t)
	chapter = "Photosynthesis"
	meta.Grade, meta.Subject = "7", "Biology"
	s := &fakeSearcher{err: errors.New("status 503")}

	in, err := readInput(context.Background(), s, 5)
	require.NoError(t, err)
	assert.Equal(t, "7 Biology Photosynthesis summary lesson", s.query)
	assert.Equal(t, source.KindWeb, in.bundle.Kind())
	assert.Empty(t, in.bundle.Web())
	assert.Equal(t, "Photosynthesis", in.fallback)

	meta.Title = "Light"
	assert.Equal(t, "Light", request(in).Meta.Title)
}

func TestConvertEnvelope(t *testing.T) {
	plain := []byte("PK docx bytes")
	sealed, err := convertEnvelope(plain, "pw", false)
	require.NoError(t, err)

	_, err = convertEnvelope(sealed, "pw", false)
	assert.Error(t, err)

	opened, err := convertEnvelope(sealed, "pw", true)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)

	_, err = convertEnvelope(plain, "pw", true)
	assert.Error(t, err)
}

func TestFieldsCommand(t *testing.T) {
	resetFlags(t)
	t.Setenv("LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Students will be able to name plant parts.\nHomework: Draw a leaf."), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"fields", "--text-file", path, "--grade", "5"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.Execute())

	var got fieldsOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Pasted Lesson", got.Fields.LessonTitle)
	assert.Equal(t, "5", got.Fields.Grade)
	assert.Equal(t, "Draw a leaf.", got.Fields.Homework)
	assert.Contains(t, got.Fields.Objectives, "Students will be able to name plant parts")
}
