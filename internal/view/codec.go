package view

import (
	"github.com/woodshed-app/woodshed/internal/domain"
	"github.com/woodshed-app/woodshed/internal/wire"
)

// Snapshot wire layout: goals, studies, sessions, current-session
// option, can-start bool, can-end bool, in that order. Same append-only
// discipline as every other schema on the wire.

// EncodeSnapshot writes a snapshot.
func EncodeSnapshot(e *wire.Encoder, s Snapshot) error {
	if err := e.Enter(); err != nil {
		return err
	}
	defer e.Leave()
	if err := e.WriteLen(len(s.Goals)); err != nil {
		return err
	}
	for _, g := range s.Goals {
		if err := domain.EncodeGoal(e, g); err != nil {
			return err
		}
	}
	if err := e.WriteLen(len(s.Studies)); err != nil {
		return err
	}
	for _, st := range s.Studies {
		if err := domain.EncodeStudy(e, st); err != nil {
			return err
		}
	}
	if err := e.WriteLen(len(s.Sessions)); err != nil {
		return err
	}
	for _, sess := range s.Sessions {
		if err := domain.EncodeSession(e, sess); err != nil {
			return err
		}
	}
	e.WriteOption(s.CurrentSessionID != nil)
	if s.CurrentSessionID != nil {
		e.WriteString(*s.CurrentSessionID)
	}
	e.WriteBool(s.CanStartSession)
	e.WriteBool(s.CanEndSession)
	return nil
}

// DecodeSnapshot reads a snapshot.
func DecodeSnapshot(d *wire.Decoder) (Snapshot, error) {
	if err := d.Enter(); err != nil {
		return Snapshot{}, err
	}
	defer d.Leave()
	var s Snapshot

	n, err := d.ReadLen()
	if err != nil {
		return Snapshot{}, err
	}
	for i := 0; i < n; i++ {
		g, err := domain.DecodeGoal(d)
		if err != nil {
			return Snapshot{}, err
		}
		s.Goals = append(s.Goals, g)
	}

	if n, err = d.ReadLen(); err != nil {
		return Snapshot{}, err
	}
	for i := 0; i < n; i++ {
		st, err := domain.DecodeStudy(d)
		if err != nil {
			return Snapshot{}, err
		}
		s.Studies = append(s.Studies, st)
	}

	if n, err = d.ReadLen(); err != nil {
		return Snapshot{}, err
	}
	for i := 0; i < n; i++ {
		sess, err := domain.DecodeSession(d)
		if err != nil {
			return Snapshot{}, err
		}
		s.Sessions = append(s.Sessions, sess)
	}

	present, err := d.ReadOption()
	if err != nil {
		return Snapshot{}, err
	}
	if present {
		id, err := d.ReadString()
		if err != nil {
			return Snapshot{}, err
		}
		s.CurrentSessionID = &id
	}
	if s.CanStartSession, err = d.ReadBool(); err != nil {
		return Snapshot{}, err
	}
	if s.CanEndSession, err = d.ReadBool(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// MarshalSnapshot is the []byte convenience over EncodeSnapshot.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	e := wire.NewEncoder()
	if err := EncodeSnapshot(e, s); err != nil {
		return nil, err
	}
	return e.Data(), nil
}

// UnmarshalSnapshot is the []byte convenience over DecodeSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	d := wire.NewDecoder(data)
	return DecodeSnapshot(d)
}
