package domain

import "time"

// SessionState is the sealed sum type for the practice-session lifecycle:
//
//	NotStarted -> Started -> PendingReflection -> Ended
//
// Only the four types below implement it. Transitions are pure functions
// that return the new state; an event applied to a non-matching state is
// a no-op at the caller layer, never a panic. Timestamps are carried as
// caller-supplied ISO-8601 strings (fractional seconds and timezone
// included) - the core never reads the wall clock itself.
type SessionState interface {
	sessionState()
}

// NotStarted is the initial state. There is no transition back to it.
type NotStarted struct{}

func (NotStarted) sessionState() {}

// Started carries the start timestamp.
type Started struct {
	StartTime string
}

func (Started) sessionState() {}

// PendingReflection holds both timestamps while the player writes up the
// session. Duration is computed on demand, not stored.
type PendingReflection struct {
	StartTime string
	EndTime   string
}

func (PendingReflection) sessionState() {}

// Ended is terminal. DurationSeconds is the value computed when
// reflection completed; nil means the timestamps did not parse and the
// duration is unknown.
type Ended struct {
	StartTime       string
	EndTime         string
	DurationSeconds *int64
}

func (Ended) sessionState() {}

// StartState transitions NotStarted -> Started. Any other state returns
// the input unchanged with ok=false.
func StartState(s SessionState, startTime string) (SessionState, bool) {
	if _, ok := s.(NotStarted); ok {
		return Started{StartTime: startTime}, true
	}
	return s, false
}

// EndState transitions Started -> PendingReflection. Any other state
// returns the input unchanged with ok=false.
func EndState(s SessionState, endTime string) (SessionState, bool) {
	if st, ok := s.(Started); ok {
		return PendingReflection{StartTime: st.StartTime, EndTime: endTime}, true
	}
	return s, false
}

// ReflectState transitions PendingReflection -> Ended, computing the
// duration from the two timestamps. The duration is never re-supplied by
// the caller. Unparsable timestamps leave the duration unknown; the
// session still ends.
func ReflectState(s SessionState) (SessionState, bool) {
	pr, ok := s.(PendingReflection)
	if !ok {
		return s, false
	}
	ended := Ended{StartTime: pr.StartTime, EndTime: pr.EndTime}
	if d, ok := durationBetween(pr.StartTime, pr.EndTime); ok {
		ended.DurationSeconds = &d
	}
	return ended, true
}

// StartTimeOf returns the start timestamp for any state past NotStarted.
func StartTimeOf(s SessionState) (string, bool) {
	switch st := s.(type) {
	case Started:
		return st.StartTime, true
	case PendingReflection:
		return st.StartTime, true
	case Ended:
		return st.StartTime, true
	default:
		return "", false
	}
}

// EndTimeOf returns the end timestamp; present only for
// PendingReflection and Ended.
func EndTimeOf(s SessionState) (string, bool) {
	switch st := s.(type) {
	case PendingReflection:
		return st.EndTime, true
	case Ended:
		return st.EndTime, true
	default:
		return "", false
	}
}

// IsEnded reports whether the state is terminal.
func IsEnded(s SessionState) bool {
	_, ok := s.(Ended)
	return ok
}

// DurationSecondsOf returns the session duration in whole seconds.
// For Ended it is the stored value; for PendingReflection it is computed
// on demand from the two timestamps; otherwise it is undefined.
func DurationSecondsOf(s SessionState) (int64, bool) {
	switch st := s.(type) {
	case Ended:
		if st.DurationSeconds == nil {
			return 0, false
		}
		return *st.DurationSeconds, true
	case PendingReflection:
		return durationBetween(st.StartTime, st.EndTime)
	default:
		return 0, false
	}
}

// durationBetween computes max(0, end-start) truncated to whole seconds.
// Clock skew that puts end before start clamps to zero rather than going
// negative. A timestamp that fails to parse yields "duration unknown".
func durationBetween(startTime, endTime string) (int64, bool) {
	start, err := time.Parse(time.RFC3339Nano, startTime)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(time.RFC3339Nano, endTime)
	if err != nil {
		return 0, false
	}
	secs := int64(end.Sub(start) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// StudySession is a per-study sub-session record. Reserved: the current
// core always leaves Session.StudySessions empty, but the record and its
// wire layout are fixed now so appending the feature later stays
// backward-compatible.
type StudySession struct {
	ID      string
	StudyID string
}

// Session is one practice session. State is the only part mutated after
// creation, except Notes via the dedicated reflection/edit-notes events.
type Session struct {
	ID                   string
	GoalIDs              []string
	Intention            string
	Notes                *string
	StudySessions        []StudySession
	ActiveStudySessionID *string
	State                SessionState
}
