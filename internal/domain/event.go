package domain

// Event is the closed union of caller-originated mutation requests.
// Only the types in this file implement it.
//
// WIRE CONTRACT: the u32 variant tag is the positional index of the
// variant in the order declared below. Adding a variant is
// backward-compatible only when appended at the end; reordering or
// removing breaks every deployed host.
type Event interface {
	event()
}

// Event variant indices, in declaration order.
const (
	eventCreateGoal uint32 = iota
	eventUpdateGoal
	eventDeleteGoal
	eventCreateStudy
	eventUpdateStudy
	eventDeleteStudy
	eventCreateSession
	eventStartSession
	eventEndSession
	eventSaveReflection
	eventEditSessionNotes
	eventDeleteSession
	eventSeedDemoData

	numEventVariants = iota
)

// CreateGoal creates a goal from form fields. The engine assigns the id
// and the NotStarted status.
type CreateGoal struct {
	Name        string
	Description *string
	StartDate   *string
	TargetDate  *string
	StudyIDs    []string
	TempoTarget *int
}

func (CreateGoal) event() {}

// UpdateGoal replaces the stored goal with the same id wholesale.
// Unknown id is a no-op.
type UpdateGoal struct {
	Goal Goal
}

func (UpdateGoal) event() {}

// DeleteGoal removes a goal. Unknown id is a no-op.
type DeleteGoal struct {
	ID string
}

func (DeleteGoal) event() {}

// CreateStudy creates a study from form fields; the engine assigns the id.
type CreateStudy struct {
	Name        string
	Description *string
}

func (CreateStudy) event() {}

// UpdateStudy replaces the stored study with the same id wholesale.
type UpdateStudy struct {
	Study Study
}

func (UpdateStudy) event() {}

// DeleteStudy removes a study. Goals referencing it keep their dangling
// ids; readers resolve at read time.
type DeleteStudy struct {
	ID string
}

func (DeleteStudy) event() {}

// CreateSession creates a session in the NotStarted state.
type CreateSession struct {
	GoalIDs   []string
	Intention string
	Notes     *string
}

func (CreateSession) event() {}

// StartSession moves a NotStarted session to Started. The timestamp is
// caller-supplied ISO-8601; the core never reads the clock.
type StartSession struct {
	ID        string
	StartTime string
}

func (StartSession) event() {}

// EndSession moves a Started session to PendingReflection.
type EndSession struct {
	ID      string
	EndTime string
}

func (EndSession) event() {}

// SaveReflection stores the reflection notes and moves a
// PendingReflection session to Ended, computing the duration.
type SaveReflection struct {
	ID    string
	Notes *string
}

func (SaveReflection) event() {}

// EditSessionNotes replaces a session's notes without touching its state.
type EditSessionNotes struct {
	ID    string
	Notes *string
}

func (EditSessionNotes) event() {}

// DeleteSession removes a session. Unknown id is a no-op.
type DeleteSession struct {
	ID string
}

func (DeleteSession) event() {}

// SeedDemoData populates the model with development fixtures.
type SeedDemoData struct{}

func (SeedDemoData) event() {}
