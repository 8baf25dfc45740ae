package lesson

// labelVariants maps each canonical field to the template headings that identify it,
// highest priority first. Matching is case-insensitive substring.
var labelVariants = map[Field][]string{
	LessonTitle: {"lesson plant", "lesson plan", "lesson title", "chapter name"},
	Grade:       {"grade"},
	Subject:     {"subject"},
	TeacherName: {"teacher name", "teacher"},
	Date:        {"date"},
	Objectives:  {"lesson objectives", "lesson objective", "objectives"},
	Resources:   {"resource needed", "resources", "materials"},
	Outline:     {"lesson outline", "lesson outline:"},
	Assessment:  {"assessment and evaluation", "assessment", "evaluation"},
	Homework:    {"homework/extension activity", "homework", "extension activity", "assignment"},
	Conclusion:  {"conclusion", "summary"},
	Note:        {"note for teacher", "note", "notes"},
}

// LabelVariants returns a copy of the label phrases for f.
func LabelVariants(f Field) []string {
	v := labelVariants[f]
	out := make([]string, len(v))
	copy(out, v)
	return out
}
