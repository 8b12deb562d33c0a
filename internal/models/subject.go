package models

// Subject is a taught subject. Referenced by User.SubjectID as a plain
// string, not a foreign key.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
