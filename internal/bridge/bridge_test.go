package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodshed-app/woodshed/internal/domain"
	"github.com/woodshed-app/woodshed/internal/engine"
	"github.com/woodshed-app/woodshed/internal/view"
	"github.com/woodshed-app/woodshed/internal/wire"
)

func newTestCore(ids ...string) *Core {
	return New(engine.WithIDGenerator(engine.NewFixedGenerator(ids...)))
}

func process(t *testing.T, c *Core, ev domain.Event) []domain.Effect {
	t.Helper()
	eventBytes, err := domain.MarshalEvent(ev)
	require.NoError(t, err)
	effectBytes, err := c.ProcessEvent(eventBytes)
	require.NoError(t, err)
	effects, err := domain.UnmarshalEffects(effectBytes)
	require.NoError(t, err)
	return effects
}

func TestProcessEvent_RoundTripThroughBytes(t *testing.T) {
	c := newTestCore("g1")

	effects := process(t, c, domain.CreateGoal{Name: "Scales"})
	assert.Equal(t, []domain.Effect{domain.Render{}}, effects)

	viewBytes, err := c.View()
	require.NoError(t, err)
	snap, err := view.UnmarshalSnapshot(viewBytes)
	require.NoError(t, err)
	require.Len(t, snap.Goals, 1)
	assert.Equal(t, "Scales", snap.Goals[0].Name)
}

func TestProcessEvent_DecodeFailureSurfacesAndSkipsEngine(t *testing.T) {
	c := newTestCore()

	_, err := c.ProcessEvent([]byte{0xFF, 0xFF})
	require.Error(t, err)
	var de *wire.DecodeError
	assert.ErrorAs(t, err, &de, "protocol mismatch must be typed, never swallowed")

	viewBytes, err := c.View()
	require.NoError(t, err)
	snap, err := view.UnmarshalSnapshot(viewBytes)
	require.NoError(t, err)
	assert.Empty(t, snap.Goals, "malformed event must not reach the model")
}

func TestProcessEvent_ValidationFailureLeavesModelUntouched(t *testing.T) {
	c := newTestCore("g1")
	tempo := 301
	eventBytes, err := domain.MarshalEvent(domain.CreateGoal{Name: "Scales", TempoTarget: &tempo})
	require.NoError(t, err)

	_, err = c.ProcessEvent(eventBytes)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	viewBytes, err := c.View()
	require.NoError(t, err)
	snap, err := view.UnmarshalSnapshot(viewBytes)
	require.NoError(t, err)
	assert.Empty(t, snap.Goals)
}

func TestView_IdempotentBetweenEvents(t *testing.T) {
	c := newTestCore("g1")
	process(t, c, domain.CreateGoal{Name: "Scales"})

	first, err := c.View()
	require.NoError(t, err)
	second, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFullSessionFlowOverTheBoundary(t *testing.T) {
	c := newTestCore("p1")
	notes := "clean at 96"

	process(t, c, domain.CreateSession{Intention: "Nail the bridge"})
	process(t, c, domain.StartSession{ID: "p1", StartTime: "2025-01-01T10:00:00Z"})
	process(t, c, domain.EndSession{ID: "p1", EndTime: "2025-01-01T10:25:00Z"})
	process(t, c, domain.SaveReflection{ID: "p1", Notes: &notes})

	viewBytes, err := c.View()
	require.NoError(t, err)
	snap, err := view.UnmarshalSnapshot(viewBytes)
	require.NoError(t, err)

	require.Len(t, snap.Sessions, 1)
	ended, ok := snap.Sessions[0].State.(domain.Ended)
	require.True(t, ok)
	require.NotNil(t, ended.DurationSeconds)
	assert.Equal(t, int64(1500), *ended.DurationSeconds)
	assert.True(t, snap.CanStartSession)
}
