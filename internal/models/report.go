package models

import "time"

// Evaluation is the qualitative level a teacher assigns. The values are the
// Arabic labels shown to teachers and embedded in generated messages.
type Evaluation string

const (
	EvaluationExcellent Evaluation = "ممتاز"
	EvaluationVeryGood  Evaluation = "جيد جداً"
	EvaluationGood      Evaluation = "جيد"
	EvaluationWeak      Evaluation = "ضعيف"
)

// Evaluations lists the selectable levels in display order.
var Evaluations = []Evaluation{
	EvaluationExcellent,
	EvaluationVeryGood,
	EvaluationGood,
	EvaluationWeak,
}

// Valid reports whether the evaluation is one of the known levels.
func (e Evaluation) Valid() bool {
	for _, level := range Evaluations {
		if e == level {
			return true
		}
	}
	return false
}

// Report is an append-only record of a dispatched evaluation. Student,
// teacher and subject names are denormalized at creation time so historical
// reports stay readable after the source records change or disappear.
type Report struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"studentId"`
	StudentName    string     `json:"studentName"`
	StudentGender  Gender     `json:"studentGender"`
	ParentWhatsapp string     `json:"parentWhatsapp"`
	TeacherID      string     `json:"teacherId"`
	TeacherName    string     `json:"teacherName"`
	SubjectName    string     `json:"subjectName"`
	Evaluation     Evaluation `json:"evaluation"`
	CreatedAt      time.Time  `json:"createdAt"`
}
