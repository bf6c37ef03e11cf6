// Package reconcile pushes the local cache to a remote document store on
// a time-based schedule. One-way, last-write-wins: whichever device
// writes a record last owns it.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/woodshed-app/woodshed/internal/store"
)

// Collection names shared with the persisted layout.
const (
	CollectionGoals    = "goals"
	CollectionStudies  = "studies"
	CollectionSessions = "sessions"
)

// ErrNotFound is returned by Update and Delete when the record does not
// exist remotely. The reconciler falls back to Create on it.
var ErrNotFound = errors.New("record not found")

// RemoteStore is the document-oriented remote collaborator. Records are
// the same string-keyed field maps the local store flattens to, keyed by
// the same ids as the domain model.
type RemoteStore interface {
	List(ctx context.Context, collection string) ([]store.Record, error)
	Create(ctx context.Context, collection, id string, record store.Record) error
	Update(ctx context.Context, collection, id string, record store.Record) error
	Delete(ctx context.Context, collection, id string) error
}

// SyncError wraps a remote failure with the collection and record it
// interrupted. One SyncError aborts the rest of that collection for the
// cycle; it is logged, never propagated to the user.
type SyncError struct {
	Collection string
	RecordID   string
	Err        error
}

func (e *SyncError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("sync %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("sync %s/%s: %v", e.Collection, e.RecordID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
