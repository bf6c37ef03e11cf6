package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/woodshed-app/woodshed/internal/domain"
)

// Flattening maps each collection to field maps so the key/value layer
// (and the remote store, which shares the Record shape) never sees the
// tagged session-state union. Absent optionals are omitted, not null.

// FlattenGoal converts a goal to its stored field map.
func FlattenGoal(g domain.Goal) Record {
	r := Record{
		"id":     g.ID,
		"name":   g.Name,
		"status": g.Status.String(),
	}
	if g.Description != nil {
		r["description"] = *g.Description
	}
	if g.StartDate != nil {
		r["start_date"] = *g.StartDate
	}
	if g.TargetDate != nil {
		r["target_date"] = *g.TargetDate
	}
	if len(g.StudyIDs) > 0 {
		r["study_ids"] = g.StudyIDs
	}
	if g.TempoTarget != nil {
		r["tempo_target"] = *g.TempoTarget
	}
	return r
}

// FlattenStudy converts a study to its stored field map.
func FlattenStudy(s domain.Study) Record {
	r := Record{
		"id":   s.ID,
		"name": s.Name,
	}
	if s.Description != nil {
		r["description"] = *s.Description
	}
	return r
}

// FlattenSession converts a session to its stored field map. The state
// union is flattened to start_time/end_time/duration_seconds/is_ended
// scalars; expandSession reverses this with a fixed priority order.
func FlattenSession(s domain.Session) Record {
	r := Record{
		"id":        s.ID,
		"intention": s.Intention,
		"is_ended":  domain.IsEnded(s.State),
	}
	if len(s.GoalIDs) > 0 {
		r["goal_ids"] = s.GoalIDs
	}
	if s.Notes != nil {
		r["notes"] = *s.Notes
	}
	if len(s.StudySessions) > 0 {
		items := make([]any, 0, len(s.StudySessions))
		for _, ss := range s.StudySessions {
			items = append(items, map[string]any{"id": ss.ID, "study_id": ss.StudyID})
		}
		r["study_sessions"] = items
	}
	if s.ActiveStudySessionID != nil {
		r["active_study_session_id"] = *s.ActiveStudySessionID
	}
	if start, ok := domain.StartTimeOf(s.State); ok {
		r["start_time"] = start
	}
	if end, ok := domain.EndTimeOf(s.State); ok {
		r["end_time"] = end
	}
	if d, ok := domain.DurationSecondsOf(s.State); ok {
		r["duration_seconds"] = d
	}
	return r
}

// expandGoal reconstructs a goal; ok=false means a required field is
// missing and the record should be dropped.
func expandGoal(r Record) (domain.Goal, bool) {
	id, okID := stringField(r, "id")
	name, okName := stringField(r, "name")
	if !okID || !okName || id == "" || name == "" {
		return domain.Goal{}, false
	}

	g := domain.Goal{
		ID:          id,
		Name:        name,
		Description: optStringField(r, "description"),
		StartDate:   optStringField(r, "start_date"),
		TargetDate:  optStringField(r, "target_date"),
		StudyIDs:    stringSliceField(r, "study_ids"),
	}
	if status, ok := stringField(r, "status"); ok {
		if parsed, ok := domain.ParseGoalStatus(status); ok {
			g.Status = parsed
		}
	}
	if tempo, ok := intField(r, "tempo_target"); ok {
		t := int(tempo)
		g.TempoTarget = &t
	}
	return g, true
}

func expandStudy(r Record) (domain.Study, bool) {
	id, okID := stringField(r, "id")
	name, okName := stringField(r, "name")
	if !okID || !okName || id == "" || name == "" {
		return domain.Study{}, false
	}
	return domain.Study{
		ID:          id,
		Name:        name,
		Description: optStringField(r, "description"),
	}, true
}

// expandSession reconstructs a session from flattened scalars.
//
// State priority order, which must not be reordered: the is_ended flag
// wins over the mere presence of both timestamps, because a session
// pending reflection also carries both.
func expandSession(r Record) (domain.Session, bool) {
	id, okID := stringField(r, "id")
	intention, okIntention := stringField(r, "intention")
	if !okID || !okIntention || id == "" || intention == "" {
		return domain.Session{}, false
	}

	s := domain.Session{
		ID:                   id,
		GoalIDs:              stringSliceField(r, "goal_ids"),
		Intention:            intention,
		Notes:                optStringField(r, "notes"),
		ActiveStudySessionID: optStringField(r, "active_study_session_id"),
	}
	if items, ok := r["study_sessions"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ssID, _ := stringField(m, "id")
			studyID, _ := stringField(m, "study_id")
			s.StudySessions = append(s.StudySessions, domain.StudySession{ID: ssID, StudyID: studyID})
		}
	}

	start, _ := stringField(r, "start_time")
	end, _ := stringField(r, "end_time")
	isEnded := boolField(r, "is_ended")
	switch {
	case isEnded && start != "" && end != "":
		ended := domain.Ended{StartTime: start, EndTime: end}
		if d, ok := intField(r, "duration_seconds"); ok {
			ended.DurationSeconds = &d
		}
		s.State = ended
	case start != "" && end != "":
		s.State = domain.PendingReflection{StartTime: start, EndTime: end}
	case start != "":
		s.State = domain.Started{StartTime: start}
	default:
		s.State = domain.NotStarted{}
	}
	return s, true
}

// SaveGoals persists the goal collection and bumps the last-sync
// bookkeeping timestamp.
func (s *Store) SaveGoals(ctx context.Context, goals []domain.Goal) error {
	records := make([]Record, 0, len(goals))
	for _, g := range goals {
		records = append(records, FlattenGoal(g))
	}
	return s.saveCollection(ctx, keyGoals, records)
}

// LoadGoals loads the goal collection. Records missing required fields
// are dropped, the rest load normally.
func (s *Store) LoadGoals(ctx context.Context) ([]domain.Goal, error) {
	records, err := s.loadCollection(ctx, keyGoals)
	if err != nil {
		return nil, err
	}
	var goals []domain.Goal
	for _, r := range records {
		g, ok := expandGoal(r)
		if !ok {
			slog.Debug("dropping invalid goal record", "key", keyGoals)
			continue
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// SaveStudies persists the study collection.
func (s *Store) SaveStudies(ctx context.Context, studies []domain.Study) error {
	records := make([]Record, 0, len(studies))
	for _, st := range studies {
		records = append(records, FlattenStudy(st))
	}
	return s.saveCollection(ctx, keyStudies, records)
}

// LoadStudies loads the study collection, dropping invalid records.
func (s *Store) LoadStudies(ctx context.Context) ([]domain.Study, error) {
	records, err := s.loadCollection(ctx, keyStudies)
	if err != nil {
		return nil, err
	}
	var studies []domain.Study
	for _, r := range records {
		st, ok := expandStudy(r)
		if !ok {
			slog.Debug("dropping invalid study record", "key", keyStudies)
			continue
		}
		studies = append(studies, st)
	}
	return studies, nil
}

// SaveSessions persists the session collection with flattened states.
func (s *Store) SaveSessions(ctx context.Context, sessions []domain.Session) error {
	records := make([]Record, 0, len(sessions))
	for _, sess := range sessions {
		records = append(records, FlattenSession(sess))
	}
	return s.saveCollection(ctx, keySessions, records)
}

// LoadSessions loads the session collection, reconstructing each state
// from its flattened scalars and dropping invalid records.
func (s *Store) LoadSessions(ctx context.Context) ([]domain.Session, error) {
	records, err := s.loadCollection(ctx, keySessions)
	if err != nil {
		return nil, err
	}
	var sessions []domain.Session
	for _, r := range records {
		sess, ok := expandSession(r)
		if !ok {
			slog.Debug("dropping invalid session record", "key", keySessions)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// Snapshot reads all three collections as raw field maps. Used by the
// sync reconciler, which pushes records, not domain values.
//
// The three reads share one deferred transaction, so a save landing
// mid-snapshot cannot tear it: goals, studies, and sessions are all
// from the same moment.
func (s *Store) Snapshot(ctx context.Context) (goals, studies, sessions []Record, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if goals, err = loadCollectionFrom(ctx, tx, keyGoals); err != nil {
		return nil, nil, nil, err
	}
	if studies, err = loadCollectionFrom(ctx, tx, keyStudies); err != nil {
		return nil, nil, nil, err
	}
	if sessions, err = loadCollectionFrom(ctx, tx, keySessions); err != nil {
		return nil, nil, nil, err
	}
	return goals, studies, sessions, nil
}

func (s *Store) saveCollection(ctx context.Context, key string, records []Record) error {
	text, err := marshalRecords(records)
	if err != nil {
		return err
	}
	if err := s.set(ctx, key, text); err != nil {
		return err
	}
	// Every save touches the bookkeeping timestamp, sync or not.
	return s.TouchLastSync(ctx)
}

func (s *Store) loadCollection(ctx context.Context, key string) ([]Record, error) {
	return loadCollectionFrom(ctx, s.db, key)
}

func loadCollectionFrom(ctx context.Context, q querier, key string) ([]Record, error) {
	text, ok, err := getFrom(ctx, q, key)
	if err != nil || !ok {
		return nil, err
	}
	return unmarshalRecords(text)
}
