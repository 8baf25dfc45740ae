package lesson

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleEmptyKeepsEverySlot(t *testing.T) {
	f := Assemble(Meta{}, nil)
	vals := f.Values()
	require.Len(t, vals, 12)
	for _, v := range vals {
		assert.Equal(t, "", v.Text, "field %s", v.Field)
	}
	assert.Len(t, f.Map(), 12)
}

func TestAssembleCopiesInputs(t *testing.T) {
	f := Assemble(Meta{Title: "Plants", Grade: "Grade 6", Subject: "Science", Teacher: "Ms. K", Date: "2024-01-01"},
		map[Field]string{Objectives: "• learn", Note: "bring seeds", LessonTitle: "ignored"})

	assert.Equal(t, "Plants", f.LessonTitle)
	assert.Equal(t, "Grade 6", f.Grade)
	assert.Equal(t, "Ms. K", f.TeacherName)
	assert.Equal(t, "• learn", f.Objectives)
	assert.Equal(t, "bring seeds", f.Note)
	assert.Equal(t, "", f.Homework)
}

func TestEveryFieldHasLabels(t *testing.T) {
	for _, k := range AllFields() {
		assert.NotEmpty(t, LabelVariants(k), "field %s has no label variants", k)
	}
	assert.Equal(t, []string{"lesson objectives", "lesson objective", "objectives"}, LabelVariants(Objectives))
}

func TestLabelVariantsReturnsCopy(t *testing.T) {
	v := LabelVariants(Grade)
	v[0] = "mutated"
	assert.Equal(t, "grade", LabelVariants(Grade)[0])
}

func TestGetSetUnknownField(t *testing.T) {
	var f Fields
	assert.False(t, f.Set(Field("activities"), "x"))
	assert.Equal(t, "", f.Get(Field("activities")))
	assert.True(t, f.Set(Homework, "read"))
	assert.Equal(t, "read", f.Get(Homework))
}

func TestMapUsesJSONNames(t *testing.T) {
	f := Assemble(Meta{Title: "Plants", Grade: "5"}, map[Field]string{Homework: "Draw a leaf."})
	want := map[string]string{
		"lesson_title": "Plants", "grade": "5", "subject": "", "teacher_name": "", "date": "",
		"objectives": "", "resources": "", "outline": "", "assessment": "",
		"homework": "Draw a leaf.", "conclusion": "", "note": "",
	}
	if diff := cmp.Diff(want, f.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}
