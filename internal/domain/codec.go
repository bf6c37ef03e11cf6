package domain

import (
	"fmt"

	"github.com/woodshed-app/woodshed/internal/wire"
)

// This file is the schema layer riding on the wire codec: field order and
// variant order here ARE the cross-boundary contract. Fields encode in
// struct declaration order; unions encode their positional variant index.
// Append, never reorder.

// SessionState variant indices, in declaration order.
const (
	stateNotStarted uint32 = iota
	stateStarted
	statePendingReflection
	stateEnded

	numStateVariants = iota
)

// EncodeGoal writes a goal record.
func EncodeGoal(e *wire.Encoder, g Goal) error {
	e.WriteString(g.ID)
	e.WriteString(g.Name)
	encodeOptString(e, g.Description)
	e.WriteVariant(uint32(g.Status))
	encodeOptString(e, g.StartDate)
	encodeOptString(e, g.TargetDate)
	if err := encodeStringSeq(e, g.StudyIDs); err != nil {
		return err
	}
	return encodeOptTempo(e, g.TempoTarget)
}

// DecodeGoal reads a goal record.
func DecodeGoal(d *wire.Decoder) (Goal, error) {
	var g Goal
	var err error
	if g.ID, err = d.ReadString(); err != nil {
		return Goal{}, err
	}
	if g.Name, err = d.ReadString(); err != nil {
		return Goal{}, err
	}
	if g.Description, err = decodeOptString(d); err != nil {
		return Goal{}, err
	}
	status, err := d.ReadVariant(uint32(numGoalStatuses))
	if err != nil {
		return Goal{}, err
	}
	g.Status = GoalStatus(status)
	if g.StartDate, err = decodeOptString(d); err != nil {
		return Goal{}, err
	}
	if g.TargetDate, err = decodeOptString(d); err != nil {
		return Goal{}, err
	}
	if g.StudyIDs, err = decodeStringSeq(d); err != nil {
		return Goal{}, err
	}
	if g.TempoTarget, err = decodeOptTempo(d); err != nil {
		return Goal{}, err
	}
	return g, nil
}

// EncodeStudy writes a study record.
func EncodeStudy(e *wire.Encoder, s Study) error {
	e.WriteString(s.ID)
	e.WriteString(s.Name)
	encodeOptString(e, s.Description)
	return nil
}

// DecodeStudy reads a study record.
func DecodeStudy(d *wire.Decoder) (Study, error) {
	var s Study
	var err error
	if s.ID, err = d.ReadString(); err != nil {
		return Study{}, err
	}
	if s.Name, err = d.ReadString(); err != nil {
		return Study{}, err
	}
	if s.Description, err = decodeOptString(d); err != nil {
		return Study{}, err
	}
	return s, nil
}

// EncodeSession writes a session record, state machine included.
func EncodeSession(e *wire.Encoder, s Session) error {
	e.WriteString(s.ID)
	if err := encodeStringSeq(e, s.GoalIDs); err != nil {
		return err
	}
	e.WriteString(s.Intention)
	encodeOptString(e, s.Notes)
	if err := e.Enter(); err != nil {
		return err
	}
	if err := e.WriteLen(len(s.StudySessions)); err != nil {
		return err
	}
	for _, ss := range s.StudySessions {
		e.WriteString(ss.ID)
		e.WriteString(ss.StudyID)
	}
	e.Leave()
	encodeOptString(e, s.ActiveStudySessionID)
	return EncodeSessionState(e, s.State)
}

// DecodeSession reads a session record.
func DecodeSession(d *wire.Decoder) (Session, error) {
	var s Session
	var err error
	if s.ID, err = d.ReadString(); err != nil {
		return Session{}, err
	}
	if s.GoalIDs, err = decodeStringSeq(d); err != nil {
		return Session{}, err
	}
	if s.Intention, err = d.ReadString(); err != nil {
		return Session{}, err
	}
	if s.Notes, err = decodeOptString(d); err != nil {
		return Session{}, err
	}
	if err := d.Enter(); err != nil {
		return Session{}, err
	}
	n, err := d.ReadLen()
	if err != nil {
		return Session{}, err
	}
	for i := 0; i < n; i++ {
		var ss StudySession
		if ss.ID, err = d.ReadString(); err != nil {
			return Session{}, err
		}
		if ss.StudyID, err = d.ReadString(); err != nil {
			return Session{}, err
		}
		s.StudySessions = append(s.StudySessions, ss)
	}
	d.Leave()
	if s.ActiveStudySessionID, err = decodeOptString(d); err != nil {
		return Session{}, err
	}
	if s.State, err = DecodeSessionState(d); err != nil {
		return Session{}, err
	}
	return s, nil
}

// EncodeSessionState writes the lifecycle union.
func EncodeSessionState(e *wire.Encoder, s SessionState) error {
	if err := e.Enter(); err != nil {
		return err
	}
	defer e.Leave()
	switch st := s.(type) {
	case NotStarted:
		e.WriteVariant(stateNotStarted)
	case Started:
		e.WriteVariant(stateStarted)
		e.WriteString(st.StartTime)
	case PendingReflection:
		e.WriteVariant(statePendingReflection)
		e.WriteString(st.StartTime)
		e.WriteString(st.EndTime)
	case Ended:
		e.WriteVariant(stateEnded)
		e.WriteString(st.StartTime)
		e.WriteString(st.EndTime)
		e.WriteOption(st.DurationSeconds != nil)
		if st.DurationSeconds != nil {
			e.WriteInt64(*st.DurationSeconds)
		}
	default:
		return fmt.Errorf("unencodable session state %T", s)
	}
	return nil
}

// DecodeSessionState reads the lifecycle union.
func DecodeSessionState(d *wire.Decoder) (SessionState, error) {
	if err := d.Enter(); err != nil {
		return nil, err
	}
	defer d.Leave()
	tag, err := d.ReadVariant(numStateVariants)
	if err != nil {
		return nil, err
	}
	switch tag {
	case stateNotStarted:
		return NotStarted{}, nil
	case stateStarted:
		start, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return Started{StartTime: start}, nil
	case statePendingReflection:
		start, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		end, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return PendingReflection{StartTime: start, EndTime: end}, nil
	default: // stateEnded
		var ended Ended
		if ended.StartTime, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ended.EndTime, err = d.ReadString(); err != nil {
			return nil, err
		}
		present, err := d.ReadOption()
		if err != nil {
			return nil, err
		}
		if present {
			v, err := d.ReadInt64()
			if err != nil {
				return nil, err
			}
			ended.DurationSeconds = &v
		}
		return ended, nil
	}
}

// EncodeEvent writes an event with its positional variant tag.
func EncodeEvent(e *wire.Encoder, ev Event) error {
	if err := e.Enter(); err != nil {
		return err
	}
	defer e.Leave()
	switch v := ev.(type) {
	case CreateGoal:
		e.WriteVariant(eventCreateGoal)
		e.WriteString(v.Name)
		encodeOptString(e, v.Description)
		encodeOptString(e, v.StartDate)
		encodeOptString(e, v.TargetDate)
		if err := encodeStringSeq(e, v.StudyIDs); err != nil {
			return err
		}
		return encodeOptTempo(e, v.TempoTarget)
	case UpdateGoal:
		e.WriteVariant(eventUpdateGoal)
		return EncodeGoal(e, v.Goal)
	case DeleteGoal:
		e.WriteVariant(eventDeleteGoal)
		e.WriteString(v.ID)
	case CreateStudy:
		e.WriteVariant(eventCreateStudy)
		e.WriteString(v.Name)
		encodeOptString(e, v.Description)
	case UpdateStudy:
		e.WriteVariant(eventUpdateStudy)
		return EncodeStudy(e, v.Study)
	case DeleteStudy:
		e.WriteVariant(eventDeleteStudy)
		e.WriteString(v.ID)
	case CreateSession:
		e.WriteVariant(eventCreateSession)
		if err := encodeStringSeq(e, v.GoalIDs); err != nil {
			return err
		}
		e.WriteString(v.Intention)
		encodeOptString(e, v.Notes)
	case StartSession:
		e.WriteVariant(eventStartSession)
		e.WriteString(v.ID)
		e.WriteString(v.StartTime)
	case EndSession:
		e.WriteVariant(eventEndSession)
		e.WriteString(v.ID)
		e.WriteString(v.EndTime)
	case SaveReflection:
		e.WriteVariant(eventSaveReflection)
		e.WriteString(v.ID)
		encodeOptString(e, v.Notes)
	case EditSessionNotes:
		e.WriteVariant(eventEditSessionNotes)
		e.WriteString(v.ID)
		encodeOptString(e, v.Notes)
	case DeleteSession:
		e.WriteVariant(eventDeleteSession)
		e.WriteString(v.ID)
	case SeedDemoData:
		e.WriteVariant(eventSeedDemoData)
	default:
		return fmt.Errorf("unencodable event %T", ev)
	}
	return nil
}

// DecodeEvent reads an event. An unknown variant tag is an unrecoverable
// decode error; it never reaches the update engine.
func DecodeEvent(d *wire.Decoder) (Event, error) {
	if err := d.Enter(); err != nil {
		return nil, err
	}
	defer d.Leave()
	tag, err := d.ReadVariant(numEventVariants)
	if err != nil {
		return nil, err
	}
	switch tag {
	case eventCreateGoal:
		var ev CreateGoal
		if ev.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Description, err = decodeOptString(d); err != nil {
			return nil, err
		}
		if ev.StartDate, err = decodeOptString(d); err != nil {
			return nil, err
		}
		if ev.TargetDate, err = decodeOptString(d); err != nil {
			return nil, err
		}
		if ev.StudyIDs, err = decodeStringSeq(d); err != nil {
			return nil, err
		}
		if ev.TempoTarget, err = decodeOptTempo(d); err != nil {
			return nil, err
		}
		return ev, nil
	case eventUpdateGoal:
		g, err := DecodeGoal(d)
		if err != nil {
			return nil, err
		}
		return UpdateGoal{Goal: g}, nil
	case eventDeleteGoal:
		id, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return DeleteGoal{ID: id}, nil
	case eventCreateStudy:
		var ev CreateStudy
		if ev.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Description, err = decodeOptString(d); err != nil {
			return nil, err
		}
		return ev, nil
	case eventUpdateStudy:
		s, err := DecodeStudy(d)
		if err != nil {
			return nil, err
		}
		return UpdateStudy{Study: s}, nil
	case eventDeleteStudy:
		id, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return DeleteStudy{ID: id}, nil
	case eventCreateSession:
		var ev CreateSession
		if ev.GoalIDs, err = decodeStringSeq(d); err != nil {
			return nil, err
		}
		if ev.Intention, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Notes, err = decodeOptString(d); err != nil {
			return nil, err
		}
		return ev, nil
	case eventStartSession:
		var ev StartSession
		if ev.ID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.StartTime, err = d.ReadString(); err != nil {
			return nil, err
		}
		return ev, nil
	case eventEndSession:
		var ev EndSession
		if ev.ID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.EndTime, err = d.ReadString(); err != nil {
			return nil, err
		}
		return ev, nil
	case eventSaveReflection:
		var ev SaveReflection
		if ev.ID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Notes, err = decodeOptString(d); err != nil {
			return nil, err
		}
		return ev, nil
	case eventEditSessionNotes:
		var ev EditSessionNotes
		if ev.ID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Notes, err = decodeOptString(d); err != nil {
			return nil, err
		}
		return ev, nil
	case eventDeleteSession:
		id, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return DeleteSession{ID: id}, nil
	default: // eventSeedDemoData
		return SeedDemoData{}, nil
	}
}

// EncodeEffects writes an effect list with a u64 count prefix.
func EncodeEffects(e *wire.Encoder, effects []Effect) error {
	if err := e.Enter(); err != nil {
		return err
	}
	defer e.Leave()
	if err := e.WriteLen(len(effects)); err != nil {
		return err
	}
	for _, eff := range effects {
		switch eff.(type) {
		case Render:
			e.WriteVariant(effectRender)
		default:
			return fmt.Errorf("unencodable effect %T", eff)
		}
	}
	return nil
}

// DecodeEffects reads an effect list.
func DecodeEffects(d *wire.Decoder) ([]Effect, error) {
	if err := d.Enter(); err != nil {
		return nil, err
	}
	defer d.Leave()
	n, err := d.ReadLen()
	if err != nil {
		return nil, err
	}
	effects := make([]Effect, 0, n)
	for i := 0; i < n; i++ {
		if _, err := d.ReadVariant(numEffectVariants); err != nil {
			return nil, err
		}
		// Render is the union's only variant today.
		effects = append(effects, Render{})
	}
	return effects, nil
}

// MarshalEvent is the []byte convenience over EncodeEvent.
func MarshalEvent(ev Event) ([]byte, error) {
	e := wire.NewEncoder()
	if err := EncodeEvent(e, ev); err != nil {
		return nil, err
	}
	return e.Data(), nil
}

// UnmarshalEvent is the []byte convenience over DecodeEvent.
func UnmarshalEvent(data []byte) (Event, error) {
	d := wire.NewDecoder(data)
	return DecodeEvent(d)
}

// MarshalEffects is the []byte convenience over EncodeEffects.
func MarshalEffects(effects []Effect) ([]byte, error) {
	e := wire.NewEncoder()
	if err := EncodeEffects(e, effects); err != nil {
		return nil, err
	}
	return e.Data(), nil
}

// UnmarshalEffects is the []byte convenience over DecodeEffects.
func UnmarshalEffects(data []byte) ([]Effect, error) {
	d := wire.NewDecoder(data)
	return DecodeEffects(d)
}

func encodeOptString(e *wire.Encoder, v *string) {
	e.WriteOption(v != nil)
	if v != nil {
		e.WriteString(*v)
	}
}

func decodeOptString(d *wire.Decoder) (*string, error) {
	present, err := d.ReadOption()
	if err != nil || !present {
		return nil, err
	}
	s, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// encodeOptTempo range-checks before writing: the wire slot is u32 and
// the contract rejects unfitting integers ahead of encoding.
func encodeOptTempo(e *wire.Encoder, v *int) error {
	e.WriteOption(v != nil)
	if v == nil {
		return nil
	}
	return e.WriteUintAs32(*v)
}

func decodeOptTempo(d *wire.Decoder) (*int, error) {
	present, err := d.ReadOption()
	if err != nil || !present {
		return nil, err
	}
	v, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	t := int(v)
	return &t, nil
}

func encodeStringSeq(e *wire.Encoder, vs []string) error {
	if err := e.Enter(); err != nil {
		return err
	}
	defer e.Leave()
	if err := e.WriteLen(len(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		e.WriteString(v)
	}
	return nil
}

func decodeStringSeq(d *wire.Decoder) ([]string, error) {
	if err := d.Enter(); err != nil {
		return nil, err
	}
	defer d.Leave()
	n, err := d.ReadLen()
	if err != nil {
		return nil, err
	}
	var vs []string
	for i := 0; i < n; i++ {
		v, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}
