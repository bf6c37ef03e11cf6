package engine

import "github.com/woodshed-app/woodshed/internal/domain"

// seed populates the model with development fixtures. Idempotent-ish in
// the only way that matters for a dev command: it refuses to stack seed
// data on top of existing records.
func (e *Engine) seed() {
	if len(e.model.Goals) > 0 || len(e.model.Studies) > 0 || len(e.model.Sessions) > 0 {
		return
	}

	desc := "hands separately, then together"
	tempo := 96
	scaleStudy := domain.Study{ID: e.ids.Generate(), Name: "Major scales"}
	runStudy := domain.Study{ID: e.ids.Generate(), Name: "Chromatic runs", Description: &desc}
	e.model.Studies = append(e.model.Studies, scaleStudy, runStudy)

	start := "2025-01-01"
	e.model.Goals = append(e.model.Goals, domain.Goal{
		ID:          e.ids.Generate(),
		Name:        "Technique foundation",
		Status:      domain.GoalInProgress,
		StartDate:   &start,
		StudyIDs:    []string{scaleStudy.ID, runStudy.ID},
		TempoTarget: &tempo,
	})

	e.model.Sessions = append(e.model.Sessions, domain.Session{
		ID:        e.ids.Generate(),
		GoalIDs:   []string{e.model.Goals[0].ID},
		Intention: "Slow pass through all twelve keys",
		State:     domain.NotStarted{},
	})
}
