package store

import "github.com/taqyim-dev/taqyim-api/internal/models"

// Snapshot is the in-memory copy of the five remote collections held
// between refreshes. Consumers only ever see copies of it.
type Snapshot struct {
	Users      []models.User
	Students   []models.Student
	Subjects   []models.Subject
	Classrooms []models.Classroom
	Reports    []models.Report
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Users:      append([]models.User(nil), s.Users...),
		Students:   cloneStudents(s.Students),
		Subjects:   append([]models.Subject(nil), s.Subjects...),
		Classrooms: cloneClassrooms(s.Classrooms),
		Reports:    append([]models.Report(nil), s.Reports...),
	}
}

func cloneStudents(in []models.Student) []models.Student {
	out := make([]models.Student, len(in))
	for i, st := range in {
		st.TeacherIDs = append([]string(nil), st.TeacherIDs...)
		out[i] = st
	}
	return out
}

func cloneClassrooms(in []models.Classroom) []models.Classroom {
	out := make([]models.Classroom, len(in))
	for i, cls := range in {
		cls.StudentIDs = append([]string(nil), cls.StudentIDs...)
		out[i] = cls
	}
	return out
}
