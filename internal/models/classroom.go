package models

// Classroom groups students. There is no teacher linkage on classrooms.
type Classroom struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	StudentIDs []string `json:"studentIds"`
}
