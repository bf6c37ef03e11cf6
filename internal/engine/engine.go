// Package engine is the core's single mutation point: one event in, a
// mutated domain model and zero or more effect requests out.
package engine

import (
	"log/slog"

	"github.com/woodshed-app/woodshed/internal/domain"
)

// Engine applies events to the domain model it owns.
//
// Update is synchronous and performs no I/O itself - side effects are
// requested via the returned effects and carried out by the host, with
// results re-injected as further events.
//
// Thread-safety model: Update must be called from exactly one logical
// thread. Hosts with multiple threads serialize externally (see
// internal/bridge, which wraps the engine in a single-writer lock).
//
// INVARIANTS:
//   - Every successful Update leaves the model satisfying the domain
//     invariants (validated names, tempo range, dates).
//   - Mutation is atomic per event: validation runs before any write, so
//     either the whole event applies or none of it does.
//   - Every successful Update emits at least one Render effect; the host
//     re-pulls the projection, the engine never pushes it.
type Engine struct {
	model Model
	ids   IDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the record id generator.
// Production default is UUIDv7; tests inject a FixedGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// New creates an Engine with an empty model.
func New(opts ...Option) *Engine {
	e := &Engine{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Goals returns the goal collection in insertion order.
// Callers must not mutate the returned slice.
func (e *Engine) Goals() []domain.Goal {
	return e.model.Goals
}

// Studies returns the study collection in insertion order.
func (e *Engine) Studies() []domain.Study {
	return e.model.Studies
}

// Sessions returns the session collection in insertion order.
func (e *Engine) Sessions() []domain.Session {
	return e.model.Sessions
}

// Hydrate replaces the model wholesale with collections loaded from the
// local store. Called once at startup, before any Update.
func (e *Engine) Hydrate(goals []domain.Goal, studies []domain.Study, sessions []domain.Session) {
	e.model = Model{Goals: goals, Studies: studies, Sessions: sessions}
}

// Update applies one event and returns the effect requests it produced.
//
// Errors: a *domain.ValidationError means the event violated a business
// rule; the model is untouched and no effects are emitted. Semantically
// invalid events (an id that no longer exists, a transition from a
// non-matching state) are successful no-ops - the model keeps its state
// and a Render effect is still emitted, keeping the engine total.
func (e *Engine) Update(ev domain.Event) ([]domain.Effect, error) {
	switch v := ev.(type) {
	case domain.CreateGoal:
		goal := domain.Goal{
			ID:          e.ids.Generate(),
			Name:        domain.NormalizeName(v.Name),
			Description: v.Description,
			Status:      domain.GoalNotStarted,
			StartDate:   v.StartDate,
			TargetDate:  v.TargetDate,
			StudyIDs:    v.StudyIDs,
			TempoTarget: v.TempoTarget,
		}
		if err := domain.ValidateGoal(goal); err != nil {
			return nil, err
		}
		e.model.Goals = append(e.model.Goals, goal)
		slog.Debug("goal created", "id", goal.ID, "name", goal.Name)

	case domain.UpdateGoal:
		goal := v.Goal
		goal.Name = domain.NormalizeName(goal.Name)
		if err := domain.ValidateGoal(goal); err != nil {
			return nil, err
		}
		if existing := e.model.findGoal(goal.ID); existing != nil {
			*existing = goal
		}

	case domain.DeleteGoal:
		e.model.Goals = removeByID(e.model.Goals, v.ID, func(g domain.Goal) string { return g.ID })

	case domain.CreateStudy:
		study := domain.Study{
			ID:          e.ids.Generate(),
			Name:        domain.NormalizeName(v.Name),
			Description: v.Description,
		}
		if err := domain.ValidateStudy(study); err != nil {
			return nil, err
		}
		e.model.Studies = append(e.model.Studies, study)
		slog.Debug("study created", "id", study.ID, "name", study.Name)

	case domain.UpdateStudy:
		study := v.Study
		study.Name = domain.NormalizeName(study.Name)
		if err := domain.ValidateStudy(study); err != nil {
			return nil, err
		}
		if existing := e.model.findStudy(study.ID); existing != nil {
			*existing = study
		}

	case domain.DeleteStudy:
		// Goals referencing the study keep their dangling ids; readers
		// resolve at read time.
		e.model.Studies = removeByID(e.model.Studies, v.ID, func(s domain.Study) string { return s.ID })

	case domain.CreateSession:
		session := domain.Session{
			ID:        e.ids.Generate(),
			GoalIDs:   v.GoalIDs,
			Intention: domain.NormalizeName(v.Intention),
			Notes:     v.Notes,
			State:     domain.NotStarted{},
		}
		if err := domain.ValidateSession(session); err != nil {
			return nil, err
		}
		e.model.Sessions = append(e.model.Sessions, session)

	case domain.StartSession:
		if session := e.model.findSession(v.ID); session != nil {
			if next, ok := domain.StartState(session.State, v.StartTime); ok {
				session.State = next
				slog.Debug("session started", "id", session.ID, "start", v.StartTime)
			}
		}

	case domain.EndSession:
		if session := e.model.findSession(v.ID); session != nil {
			if next, ok := domain.EndState(session.State, v.EndTime); ok {
				session.State = next
				slog.Debug("session ended", "id", session.ID, "end", v.EndTime)
			}
		}

	case domain.SaveReflection:
		if session := e.model.findSession(v.ID); session != nil {
			if next, ok := domain.ReflectState(session.State); ok {
				session.State = next
				session.Notes = v.Notes
			}
		}

	case domain.EditSessionNotes:
		if session := e.model.findSession(v.ID); session != nil {
			session.Notes = v.Notes
		}

	case domain.DeleteSession:
		e.model.Sessions = removeByID(e.model.Sessions, v.ID, func(s domain.Session) string { return s.ID })

	case domain.SeedDemoData:
		e.seed()
	}

	return []domain.Effect{domain.Render{}}, nil
}
