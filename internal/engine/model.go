package engine

import "github.com/woodshed-app/woodshed/internal/domain"

// Model is the domain state owned exclusively by the Engine. Collections
// keep insertion order; all mutation goes through Engine.Update.
type Model struct {
	Goals    []domain.Goal
	Studies  []domain.Study
	Sessions []domain.Session
}

func (m *Model) findGoal(id string) *domain.Goal {
	for i := range m.Goals {
		if m.Goals[i].ID == id {
			return &m.Goals[i]
		}
	}
	return nil
}

func (m *Model) findStudy(id string) *domain.Study {
	for i := range m.Studies {
		if m.Studies[i].ID == id {
			return &m.Studies[i]
		}
	}
	return nil
}

func (m *Model) findSession(id string) *domain.Session {
	for i := range m.Sessions {
		if m.Sessions[i].ID == id {
			return &m.Sessions[i]
		}
	}
	return nil
}

func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	out := items[:0]
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out
}
