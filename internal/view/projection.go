// Package view derives the read-only snapshot hosts render from.
package view

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/woodshed-app/woodshed/internal/domain"
)

// Snapshot is the whole-model projection: full collections plus the
// handful of derived values the UI needs. It is recomputed wholesale
// after every event and never mutated in place; recomputation is linear
// in the collection sizes.
type Snapshot struct {
	Goals    []domain.Goal
	Studies  []domain.Study
	Sessions []domain.Session

	// CurrentSessionID identifies the active session (Started or
	// PendingReflection), if any. At most one session is active.
	CurrentSessionID *string

	// CanStartSession is true when no session is currently active.
	CanStartSession bool

	// CanEndSession is true when the current session is in Started.
	CanEndSession bool
}

// collator orders names for display. Und gives a locale-neutral but
// diacritic-aware order, so "étude" does not sort after "zither".
var collator = collate.New(language.Und)

// Project computes the snapshot. Pure: the inputs are copied, not
// retained, and the model is never touched.
func Project(goals []domain.Goal, studies []domain.Study, sessions []domain.Session) Snapshot {
	snap := Snapshot{
		Goals:    slices.Clone(goals),
		Studies:  slices.Clone(studies),
		Sessions: slices.Clone(sessions),
	}

	slices.SortStableFunc(snap.Goals, func(a, b domain.Goal) int {
		return collator.CompareString(a.Name, b.Name)
	})
	slices.SortStableFunc(snap.Studies, func(a, b domain.Study) int {
		return collator.CompareString(a.Name, b.Name)
	})

	for i := range snap.Sessions {
		switch snap.Sessions[i].State.(type) {
		case domain.Started:
			id := snap.Sessions[i].ID
			snap.CurrentSessionID = &id
			snap.CanEndSession = true
		case domain.PendingReflection:
			id := snap.Sessions[i].ID
			snap.CurrentSessionID = &id
		}
	}
	snap.CanStartSession = snap.CurrentSessionID == nil

	return snap
}

// CurrentSession resolves CurrentSessionID against the snapshot.
func (s Snapshot) CurrentSession() (domain.Session, bool) {
	if s.CurrentSessionID == nil {
		return domain.Session{}, false
	}
	for _, sess := range s.Sessions {
		if sess.ID == *s.CurrentSessionID {
			return sess, true
		}
	}
	return domain.Session{}, false
}

// ResolveStudies joins a goal's weak study ids against the snapshot's
// studies, dropping ids whose study no longer exists. A dangling
// reference is "no such study", never an error.
func (s Snapshot) ResolveStudies(g domain.Goal) []domain.Study {
	byID := make(map[string]domain.Study, len(s.Studies))
	for _, st := range s.Studies {
		byID[st.ID] = st
	}
	var out []domain.Study
	for _, id := range g.StudyIDs {
		if st, ok := byID[id]; ok {
			out = append(out, st)
		}
	}
	return out
}
