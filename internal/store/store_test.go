package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/woodshed-app/woodshed/internal/domain"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestGoals_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tempo := 120
	desc := "daily scale work"
	goals := []domain.Goal{
		{
			ID:          "g1",
			Name:        "Scales",
			Description: &desc,
			Status:      domain.GoalInProgress,
			StudyIDs:    []string{"s1", "s2"},
			TempoTarget: &tempo,
		},
		{ID: "g2", Name: "Sight reading"},
	}

	if err := s.SaveGoals(ctx, goals); err != nil {
		t.Fatalf("SaveGoals() failed: %v", err)
	}
	loaded, err := s.LoadGoals(ctx)
	if err != nil {
		t.Fatalf("LoadGoals() failed: %v", err)
	}
	if !reflect.DeepEqual(goals, loaded) {
		t.Errorf("round trip mismatch:\n save: %+v\n load: %+v", goals, loaded)
	}
}

func TestStudies_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	studies := []domain.Study{
		{ID: "s1", Name: "Major scales"},
		{ID: "s2", Name: "Chromatic runs"},
	}

	if err := s.SaveStudies(ctx, studies); err != nil {
		t.Fatalf("SaveStudies() failed: %v", err)
	}
	loaded, err := s.LoadStudies(ctx)
	if err != nil {
		t.Fatalf("LoadStudies() failed: %v", err)
	}
	if !reflect.DeepEqual(studies, loaded) {
		t.Errorf("round trip mismatch:\n save: %+v\n load: %+v", studies, loaded)
	}
}

func TestSessions_SaveLoadRoundTrip_AllStates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	duration := int64(1500)
	notes := "bridge finally clean"
	sessions := []domain.Session{
		{ID: "p1", Intention: "warmup", State: domain.NotStarted{}},
		{ID: "p2", Intention: "tempo push", State: domain.Started{StartTime: "2025-01-01T10:00:00Z"}},
		{
			ID:        "p3",
			Intention: "bridge",
			State:     domain.PendingReflection{StartTime: "2025-01-01T10:00:00Z", EndTime: "2025-01-01T10:25:00Z"},
		},
		{
			ID:        "p4",
			GoalIDs:   []string{"g1"},
			Intention: "run-through",
			Notes:     &notes,
			State: domain.Ended{
				StartTime:       "2025-01-01T10:00:00Z",
				EndTime:         "2025-01-01T10:25:00Z",
				DurationSeconds: &duration,
			},
		},
	}

	if err := s.SaveSessions(ctx, sessions); err != nil {
		t.Fatalf("SaveSessions() failed: %v", err)
	}
	loaded, err := s.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions() failed: %v", err)
	}
	if !reflect.DeepEqual(sessions, loaded) {
		t.Errorf("round trip mismatch:\n save: %+v\n load: %+v", sessions, loaded)
	}
}

func TestSessions_ReconstructionPriority(t *testing.T) {
	// A pending-reflection session carries both timestamps too, so the
	// is_ended flag must decide, not timestamp presence.
	withFlag := Record{
		"id":         "p1",
		"intention":  "bridge",
		"start_time": "2025-01-01T10:00:00Z",
		"end_time":   "2025-01-01T10:25:00Z",
		"is_ended":   true,
	}
	withoutFlag := Record{
		"id":         "p1",
		"intention":  "bridge",
		"start_time": "2025-01-01T10:00:00Z",
		"end_time":   "2025-01-01T10:25:00Z",
		"is_ended":   false,
	}

	got, ok := expandSession(withFlag)
	if !ok {
		t.Fatal("expandSession(withFlag) dropped the record")
	}
	if _, isEnded := got.State.(domain.Ended); !isEnded {
		t.Errorf("is_ended=true reconstructed as %T, want Ended", got.State)
	}

	got, ok = expandSession(withoutFlag)
	if !ok {
		t.Fatal("expandSession(withoutFlag) dropped the record")
	}
	if _, isPending := got.State.(domain.PendingReflection); !isPending {
		t.Errorf("is_ended=false reconstructed as %T, want PendingReflection", got.State)
	}
}

func TestSessions_ReconstructionStartedAndNotStarted(t *testing.T) {
	started, ok := expandSession(Record{
		"id":         "p1",
		"intention":  "bridge",
		"start_time": "2025-01-01T10:00:00Z",
	})
	if !ok {
		t.Fatal("expandSession dropped start-only record")
	}
	if _, isStarted := started.State.(domain.Started); !isStarted {
		t.Errorf("start-only record reconstructed as %T, want Started", started.State)
	}

	fresh, ok := expandSession(Record{"id": "p1", "intention": "bridge"})
	if !ok {
		t.Fatal("expandSession dropped bare record")
	}
	if _, isFresh := fresh.State.(domain.NotStarted); !isFresh {
		t.Errorf("bare record reconstructed as %T, want NotStarted", fresh.State)
	}
}

func TestSessions_EndedWithoutDurationStaysUnknown(t *testing.T) {
	got, ok := expandSession(Record{
		"id":         "p1",
		"intention":  "bridge",
		"start_time": "not-a-timestamp",
		"end_time":   "also-not",
		"is_ended":   true,
	})
	if !ok {
		t.Fatal("expandSession dropped the record")
	}
	ended, isEnded := got.State.(domain.Ended)
	if !isEnded {
		t.Fatalf("reconstructed as %T, want Ended", got.State)
	}
	if ended.DurationSeconds != nil {
		t.Errorf("duration = %d, want unknown", *ended.DurationSeconds)
	}
}

func TestLoadGoals_DropsRecordMissingName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// Write the raw collection text directly so the bad record bypasses
	// the flattening path.
	text, err := marshalRecords([]Record{
		{"id": "g1", "name": "Scales"},
		{"id": "g2"},
		{"id": "g3", "name": "Repertoire"},
	})
	if err != nil {
		t.Fatalf("marshalRecords() failed: %v", err)
	}
	if err := s.set(ctx, keyGoals, text); err != nil {
		t.Fatalf("set() failed: %v", err)
	}

	loaded, err := s.LoadGoals(ctx)
	if err != nil {
		t.Fatalf("LoadGoals() failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d goals, want 2", len(loaded))
	}
	if loaded[0].ID != "g1" || loaded[1].ID != "g3" {
		t.Errorf("wrong survivors: %q, %q", loaded[0].ID, loaded[1].ID)
	}
}

func TestLoadSessions_DropsRecordMissingIntention(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	text, err := marshalRecords([]Record{
		{"id": "p1", "intention": "", "is_ended": false},
		{"id": "p2", "intention": "bridge", "start_time": "2025-01-01T10:00:00Z"},
		{"intention": "no id"},
	})
	if err != nil {
		t.Fatalf("marshalRecords() failed: %v", err)
	}
	if err := s.set(ctx, keySessions, text); err != nil {
		t.Fatalf("set() failed: %v", err)
	}

	loaded, err := s.LoadSessions(ctx)
	if err != nil {
		t.Fatalf("LoadSessions() failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d sessions, want 1", len(loaded))
	}
	if loaded[0].ID != "p2" {
		t.Errorf("wrong survivor: %q", loaded[0].ID)
	}
}

func TestSnapshot_ReadsAllCollectionsAsRecords(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.SaveGoals(ctx, []domain.Goal{{ID: "g1", Name: "Scales"}}); err != nil {
		t.Fatalf("SaveGoals() failed: %v", err)
	}
	if err := s.SaveStudies(ctx, []domain.Study{{ID: "s1", Name: "Runs"}}); err != nil {
		t.Fatalf("SaveStudies() failed: %v", err)
	}
	if err := s.SaveSessions(ctx, []domain.Session{
		{ID: "p1", Intention: "bridge", State: domain.NotStarted{}},
	}); err != nil {
		t.Fatalf("SaveSessions() failed: %v", err)
	}

	goals, studies, sessions, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if len(goals) != 1 || len(studies) != 1 || len(sessions) != 1 {
		t.Fatalf("snapshot sizes = %d/%d/%d, want 1/1/1", len(goals), len(studies), len(sessions))
	}
	if goals[0]["name"] != "Scales" {
		t.Errorf("goal record = %+v", goals[0])
	}

	// The snapshot is a read; further saves still work and the next
	// snapshot sees them.
	if err := s.SaveGoals(ctx, []domain.Goal{
		{ID: "g1", Name: "Scales"},
		{ID: "g2", Name: "Repertoire"},
	}); err != nil {
		t.Fatalf("SaveGoals() failed: %v", err)
	}
	goals, _, _, err = s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("second Snapshot() failed: %v", err)
	}
	if len(goals) != 2 {
		t.Errorf("second snapshot has %d goals, want 2", len(goals))
	}
}

func TestLoad_EmptyStoreIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	goals, err := s.LoadGoals(ctx)
	if err != nil {
		t.Fatalf("LoadGoals() failed: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("fresh store loaded %d goals, want 0", len(goals))
	}
}

func TestSave_BumpsLastSyncTime(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := openTestStore(t, WithNow(func() time.Time { return now }))

	if _, ok, err := s.LastSyncTime(ctx); err != nil || ok {
		t.Fatalf("fresh store: ts ok=%v err=%v, want unset", ok, err)
	}

	if err := s.SaveGoals(ctx, nil); err != nil {
		t.Fatalf("SaveGoals() failed: %v", err)
	}
	ts, ok, err := s.LastSyncTime(ctx)
	if err != nil || !ok {
		t.Fatalf("after save: ts ok=%v err=%v, want set", ok, err)
	}
	if ts != now.Unix() {
		t.Errorf("last_sync_time = %d, want %d", ts, now.Unix())
	}

	// Second save with a later clock moves it forward.
	now = now.Add(42 * time.Second)
	if err := s.SaveStudies(ctx, nil); err != nil {
		t.Fatalf("SaveStudies() failed: %v", err)
	}
	ts, _, _ = s.LastSyncTime(ctx)
	if ts != now.Unix() {
		t.Errorf("last_sync_time = %d, want %d", ts, now.Unix())
	}
}

func TestMigrationCompletedFlag(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	done, err := s.MigrationCompleted(ctx)
	if err != nil {
		t.Fatalf("MigrationCompleted() failed: %v", err)
	}
	if done {
		t.Error("fresh store reports migration completed")
	}

	if err := s.SetMigrationCompleted(ctx); err != nil {
		t.Fatalf("SetMigrationCompleted() failed: %v", err)
	}
	done, err = s.MigrationCompleted(ctx)
	if err != nil {
		t.Fatalf("MigrationCompleted() failed: %v", err)
	}
	if !done {
		t.Error("flag did not stick")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.SaveGoals(ctx, []domain.Goal{{ID: "g1", Name: "Scales"}}); err != nil {
		t.Fatalf("SaveGoals() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()
	loaded, err := s2.LoadGoals(ctx)
	if err != nil {
		t.Fatalf("LoadGoals() failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Scales" {
		t.Errorf("reopened store loaded %+v", loaded)
	}
}
