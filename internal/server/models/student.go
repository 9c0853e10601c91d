package models

type Student struct {
	ID        int64   `json:"id"`
	LastName  string  `json:"last_name"`
	FirstName string  `json:"first_name"`
	Faculty   string  `json:"faculty"`
	Course    string  `json:"course"`
	Grade     float64 `json:"grade"`
}

// StudentPatch is a partial update: nil means "leave the field alone".
// Explicit presence markers instead of reflection over request fields.
type StudentPatch struct {
	LastName  *string  `json:"last_name"`
	FirstName *string  `json:"first_name"`
	Faculty   *string  `json:"faculty"`
	Course    *string  `json:"course"`
	Grade     *float64 `json:"grade"`
}

// Apply merges the patch into s, touching only the fields that are present.
func (p *StudentPatch) Apply(s *Student) {
	if p.LastName != nil {
		s.LastName = *p.LastName
	}
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.Faculty != nil {
		s.Faculty = *p.Faculty
	}
	if p.Course != nil {
		s.Course = *p.Course
	}
	if p.Grade != nil {
		s.Grade = *p.Grade
	}
}
