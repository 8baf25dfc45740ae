package lesson

// Field is one of the twelve canonical lesson-plan slots.
type Field string

const (
	LessonTitle Field = "lesson_title"
	Grade       Field = "grade"
	Subject     Field = "subject"
	TeacherName Field = "teacher_name"
	Date        Field = "date"
	Objectives  Field = "objectives"
	Resources   Field = "resources"
	Outline     Field = "outline"
	Assessment  Field = "assessment"
	Homework    Field = "homework"
	Conclusion  Field = "conclusion"
	Note        Field = "note"
)

// order is the mapping order used for binding and for the bracket fallback.
var order = []Field{
	LessonTitle, Grade, Subject, TeacherName, Date,
	Objectives, Resources, Outline, Assessment, Homework, Conclusion, Note,
}

// AllFields returns the canonical fields in mapping order.
func AllFields() []Field {
	out := make([]Field, len(order))
	copy(out, order)
	return out
}

// Fields is the assembled lesson plan. Every slot always exists; absent signal is "".
type Fields struct {
	LessonTitle string `json:"lesson_title"`
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
	TeacherName string `json:"teacher_name"`
	Date        string `json:"date"`
	Objectives  string `json:"objectives"`
	Resources   string `json:"resources"`
	Outline     string `json:"outline"`
	Assessment  string `json:"assessment"`
	Homework    string `json:"homework"`
	Conclusion  string `json:"conclusion"`
	Note        string `json:"note"`
}

// Get returns the value stored for f, or "" for an unknown field.
func (f Fields) Get(field Field) string {
	if p := f.slot(field); p != nil {
		return *p
	}
	return ""
}

// Set stores v in the slot for field and reports whether the field is known.
func (f *Fields) Set(field Field, v string) bool {
	p := f.slot(field)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Value pairs a canonical field with its value.
type Value struct {
	Field Field
	Text  string
}

// Values returns all twelve slots in mapping order.
func (f Fields) Values() []Value {
	out := make([]Value, 0, len(order))
	for _, k := range order {
		out = append(out, Value{Field: k, Text: f.Get(k)})
	}
	return out
}

// Map renders the slots keyed by canonical name.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(order))
	for _, k := range order {
		m[string(k)] = f.Get(k)
	}
	return m
}

func (f *Fields) slot(field Field) *string {
	switch field {
	case LessonTitle:
		return &f.LessonTitle
	case Grade:
		return &f.Grade
	case Subject:
		return &f.Subject
	case TeacherName:
		return &f.TeacherName
	case Date:
		return &f.Date
	case Objectives:
		return &f.Objectives
	case Resources:
		return &f.Resources
	case Outline:
		return &f.Outline
	case Assessment:
		return &f.Assessment
	case Homework:
		return &f.Homework
	case Conclusion:
		return &f.Conclusion
	case Note:
		return &f.Note
	}
	return nil
}
