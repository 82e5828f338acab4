package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardenvale/illuminator-go/internal/jobs"
	"github.com/ardenvale/illuminator-go/internal/store"
	"github.com/ardenvale/illuminator-go/internal/testutil"
	"github.com/ardenvale/illuminator-go/internal/websocket"
)

func TestRunCohesionSweep(t *testing.T) {
	database := testutil.SetupTestDB(t)
	st := store.New(database)

	hub := websocket.NewHub()
	go hub.Run()

	_, err := st.UpsertEntity("Harbor of Veils", "place", "Second Dawn")
	require.NoError(t, err)

	// One chronicle references a known entity, one references a ghost.
	_, err = st.UpsertChronicle("Founding", "The [[Harbor of Veils]] was raised from the shallows.", "Second Dawn")
	require.NoError(t, err)
	ghostID, err := st.UpsertChronicle("Betrayal", "It was [[King Ozren]] who sealed the gates.", "Second Dawn")
	require.NoError(t, err)

	ctx := &fakeJobContext{db: database, cfg: testutil.TestConfig(), ws: hub}
	jobs.RunCohesionSweep(ctx)

	issues, err := st.ListCohesionIssues(false)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, ghostID, issues[0].ChronicleID)
	assert.Equal(t, "King Ozren", issues[0].EntityName)

	// Re-running the sweep must not duplicate the issue.
	jobs.RunCohesionSweep(ctx)
	issues, err = st.ListCohesionIssues(false)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestRunCohesionSweepResolvedIssuesStayHidden(t *testing.T) {
	database := testutil.SetupTestDB(t)
	st := store.New(database)

	hub := websocket.NewHub()
	go hub.Run()

	_, err := st.UpsertChronicle("Betrayal", "It was [[King Ozren]] who sealed the gates.", "Second Dawn")
	require.NoError(t, err)

	ctx := &fakeJobContext{db: database, cfg: testutil.TestConfig(), ws: hub}
	jobs.RunCohesionSweep(ctx)

	issues, err := st.ListCohesionIssues(false)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.NoError(t, st.ResolveCohesionIssue(issues[0].ID))

	open, err := st.ListCohesionIssues(false)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := st.ListCohesionIssues(true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
