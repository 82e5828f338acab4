package worldimport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardenvale/illuminator-go/internal/store"
	"github.com/ardenvale/illuminator-go/internal/testutil"
	"github.com/ardenvale/illuminator-go/internal/worldimport"
)

const schemaConstraint = ">= 1.0.0, < 2.0.0"

func writeSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportFile(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	dir := t.TempDir()

	path := writeSnapshot(t, dir, "export.json", `{
		"schema_version": "1.2.0",
		"entities": [
			{"name": "Vessa", "kind": "person", "era": "The First Dawn"},
			{"name": "", "kind": "person", "era": "x"}
		],
		"chronicles": [
			{"title": "Founding", "body": "<p>The harbor was <em>raised</em>.</p>", "era": "Second Dawn"}
		]
	}`)

	res, err := worldimport.ImportFile(st, path, schemaConstraint)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entities)
	assert.Equal(t, 1, res.Chronicles)
	assert.Equal(t, 1, res.Skipped) // the nameless entity

	chronicles, err := st.ListChronicles()
	require.NoError(t, err)
	require.Len(t, chronicles, 1)
	// HTML markup is flattened to plain text on import.
	assert.Equal(t, "The harbor was raised.", chronicles[0].Body)
}

func TestImportFileRejectsWrongSchemaVersion(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	dir := t.TempDir()

	path := writeSnapshot(t, dir, "future.json", `{"schema_version": "2.0.0", "entities": [], "chronicles": []}`)
	_, err := worldimport.ImportFile(st, path, schemaConstraint)
	assert.Error(t, err)

	path = writeSnapshot(t, dir, "unversioned.json", `{"entities": [], "chronicles": []}`)
	_, err = worldimport.ImportFile(st, path, schemaConstraint)
	assert.Error(t, err)
}

func TestImportFileBadJSON(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	dir := t.TempDir()

	path := writeSnapshot(t, dir, "broken.json", `{not json`)
	_, err := worldimport.ImportFile(st, path, schemaConstraint)
	assert.Error(t, err)
}

func TestImportDirSkipsBadSnapshots(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	dir := t.TempDir()

	writeSnapshot(t, dir, "good.json", `{
		"schema_version": "1.0.0",
		"entities": [{"name": "Vessa", "kind": "person", "era": "x"}],
		"chronicles": []
	}`)
	writeSnapshot(t, dir, "bad.json", `{"schema_version": "9.9.9"}`)
	writeSnapshot(t, dir, "notes.txt", "not a snapshot")

	res, err := worldimport.ImportDir(st, dir, schemaConstraint)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 1, res.Entities)
	assert.Equal(t, 1, res.Skipped)

	entities, err := st.ListEntities()
	require.NoError(t, err)
	assert.Len(t, entities, 1)
}

func TestIsSnapshotFile(t *testing.T) {
	assert.True(t, worldimport.IsSnapshotFile("export.json"))
	assert.True(t, worldimport.IsSnapshotFile("EXPORT.JSON"))
	assert.False(t, worldimport.IsSnapshotFile("export.yaml"))
	assert.False(t, worldimport.IsSnapshotFile("json"))
}
