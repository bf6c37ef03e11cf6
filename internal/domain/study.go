package domain

// Study is a named unit of practice material (a piece, an exercise, a
// technique). Studies have no lifecycle status of their own and are
// referenced weakly by id from Goal.StudyIDs.
type Study struct {
	ID          string
	Name        string
	Description *string
}
