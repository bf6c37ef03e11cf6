package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/woodshed-app/woodshed/internal/store"
)

// DefaultInterval is how long local state may go unpushed before a sync
// is due.
const DefaultInterval = time.Hour

// Clock abstracts the wall clock for the due-check.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Reconciler decides when a sync is due and pushes the full local cache
// to the remote store, one upsert per record.
type Reconciler struct {
	store    *store.Store
	remote   RemoteStore
	clock    Clock
	interval time.Duration
	logger   *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the wall clock used for the due-check.
func WithClock(c Clock) Option {
	return func(r *Reconciler) { r.clock = c }
}

// WithInterval overrides the due-check interval.
func WithInterval(d time.Duration) Option {
	return func(r *Reconciler) { r.interval = d }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// New creates a Reconciler. A nil remote means the integration is
// unconfigured: NeedsSync is always false and Sync is a no-op.
func New(s *store.Store, remote RemoteStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    s,
		remote:   remote,
		clock:    systemClock{},
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NeedsSync reports whether a sync cycle is due: false when the remote
// integration is unconfigured, true when more than the interval has
// elapsed since the last bookkeeping timestamp (or no timestamp exists).
func (r *Reconciler) NeedsSync(ctx context.Context) (bool, error) {
	if r.remote == nil {
		return false, nil
	}
	last, ok, err := r.store.LastSyncTime(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return r.clock.Now().Sub(time.Unix(last, 0)) > r.interval, nil
}

// Sync pushes every record of every collection to the remote store, one
// upsert at a time. A failure abandons the rest of that collection for
// this cycle and is logged; the remaining collections are still
// attempted. The bookkeeping timestamps move only when every collection
// pushed cleanly, so a partial cycle is retried on the next due-check.
func (r *Reconciler) Sync(ctx context.Context) error {
	if r.remote == nil {
		return nil
	}

	goals, studies, sessions, err := r.store.Snapshot(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, c := range []struct {
		name    string
		records []store.Record
	}{
		{CollectionGoals, goals},
		{CollectionStudies, studies},
		{CollectionSessions, sessions},
	} {
		if err := r.pushCollection(ctx, c.name, c.records); err != nil {
			r.logger.Error("sync collection failed", "collection", c.name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.logger.Debug("collection pushed", "collection", c.name, "records", len(c.records))
	}
	if firstErr != nil {
		return firstErr
	}

	if err := r.store.TouchLastSync(ctx); err != nil {
		return err
	}
	return r.store.TouchLastRemoteSync(ctx)
}

// pushCollection upserts records in order and stops at the first
// failure.
func (r *Reconciler) pushCollection(ctx context.Context, collection string, records []store.Record) error {
	for _, record := range records {
		id, ok := record["id"].(string)
		if !ok || id == "" {
			// A record with no id cannot be addressed remotely; skip it
			// the same way the local load drops it.
			continue
		}
		if err := r.upsert(ctx, collection, id, record); err != nil {
			return &SyncError{Collection: collection, RecordID: id, Err: err}
		}
	}
	return nil
}

func (r *Reconciler) upsert(ctx context.Context, collection, id string, record store.Record) error {
	err := r.remote.Update(ctx, collection, id, record)
	if errors.Is(err, ErrNotFound) {
		return r.remote.Create(ctx, collection, id, record)
	}
	return err
}
