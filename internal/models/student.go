package models

// Gender carries the Arabic display value used across the UI and in
// generated parent messages.
type Gender string

const (
	GenderMale   Gender = "ذكر"
	GenderFemale Gender = "أنثى"
)

// Valid reports whether the gender is one of the known values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Student is a pupil record. TeacherIDs reference Teacher-role users; the
// reference is not enforced atomically against the user collection.
type Student struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Gender         Gender   `json:"gender"`
	ParentWhatsapp string   `json:"parentWhatsapp"`
	TeacherIDs     []string `json:"teacherIds"`
}

// HasTeacher reports whether the student is assigned to the given teacher.
func (s Student) HasTeacher(teacherID string) bool {
	for _, id := range s.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}
