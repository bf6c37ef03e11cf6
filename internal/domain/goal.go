// Package domain holds the practice-tracking data model: goals, studies,
// sessions, the session lifecycle state machine, validation, and the
// positional-tag codec that carries all of it across the core boundary.
//
// Closed sets (session state, events, effects) are sealed-interface sum
// types with exhaustive switches, never inheritance-style hierarchies.
package domain

// GoalStatus is the lifecycle status of a practice goal.
// The numeric value is the wire variant index - declaration order is the
// wire contract, so new statuses append only.
type GoalStatus uint32

const (
	GoalNotStarted GoalStatus = iota
	GoalInProgress
	GoalCompleted

	numGoalStatuses = iota
)

// String returns the storage-friendly name for the status.
func (s GoalStatus) String() string {
	switch s {
	case GoalNotStarted:
		return "not_started"
	case GoalInProgress:
		return "in_progress"
	case GoalCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ParseGoalStatus maps a storage name back to a status.
func ParseGoalStatus(s string) (GoalStatus, bool) {
	switch s {
	case "not_started":
		return GoalNotStarted, true
	case "in_progress":
		return GoalInProgress, true
	case "completed":
		return GoalCompleted, true
	default:
		return GoalNotStarted, false
	}
}

// TempoTarget bounds, inclusive. Metronome range of the practice app.
const (
	TempoTargetMin = 1
	TempoTargetMax = 300
)

// Goal is a practice goal.
//
// StudyIDs are weak references: a deleted Study leaves its id dangling
// here, and readers resolve ids at read time, treating a miss as "no
// such study". The model performs no referential cleanup.
type Goal struct {
	ID          string
	Name        string
	Description *string
	Status      GoalStatus
	StartDate   *string // calendar date, "2006-01-02"
	TargetDate  *string // calendar date, "2006-01-02"
	StudyIDs    []string
	TempoTarget *int // beats per minute, [TempoTargetMin, TempoTargetMax]
}
