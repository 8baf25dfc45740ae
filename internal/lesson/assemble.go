package lesson

// Meta is the session-collected metadata; any of it may be empty.
type Meta struct {
	Title   string
	Grade   string
	Subject string
	Teacher string
	Date    string
}

// Assemble builds Fields from metadata and the heuristic outputs. It does not transform text;
// a field added to Fields must be added to the label table in the same change.
func Assemble(meta Meta, extracted map[Field]string) Fields {
	f := Fields{
		LessonTitle: meta.Title,
		Grade:       meta.Grade,
		Subject:     meta.Subject,
		TeacherName: meta.Teacher,
		Date:        meta.Date,
	}
	for _, k := range []Field{Objectives, Resources, Outline, Assessment, Homework, Conclusion, Note} {
		f.Set(k, extracted[k])
	}
	return f
}
