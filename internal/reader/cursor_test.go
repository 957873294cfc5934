package reader

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkohari/skillscope/schema"
)

// newStorageDir creates one workspaceStorage entry with a state.vscdb and a
// workspace.json sidecar, returning the path to the database.
func newStorageDir(t *testing.T, root, hash, folder string) string {
	t.Helper()
	dir := filepath.Join(root, "User", "workspaceStorage", hash)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if folder != "" {
		sidecar := fmt.Sprintf(`{"folder": "file://%s"}`, folder)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.json"), []byte(sidecar), 0o644))
	}
	return filepath.Join(dir, "state.vscdb")
}

func seedDiskKV(t *testing.T, dbPath string, payloads map[string]string) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(`CREATE TABLE cursorDiskKV (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)
	for id, payload := range payloads {
		_, err = db.Exec(`INSERT INTO cursorDiskKV (key, value) VALUES (?, ?)`, "composerData:"+id, payload)
		require.NoError(t, err)
	}
}

func seedItemTable(t *testing.T, dbPath, bundle string) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(`CREATE TABLE ItemTable (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ItemTable (key, value) VALUES ('composer.composerData', ?)`, bundle)
	require.NoError(t, err)
}

func composerPayload(id string, start time.Time) string {
	return fmt.Sprintf(`{
		"composerId": %q,
		"createdAt": %d,
		"lastUpdatedAt": %d,
		"conversation": [
			{"type": 1, "text": "refactor the config loader", "timestamp": %d},
			{"type": 2, "text": "Done, extracted a helper.", "timestamp": %d},
			{"type": 9, "text": "internal marker"}
		]
	}`, id, start.UnixMilli(), start.Add(10*time.Minute).UnixMilli(),
		start.UnixMilli(), start.Add(time.Minute).UnixMilli())
}

func TestCursorReaderDiskKV(t *testing.T) {
	root := t.TempDir()
	inWindow := time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	dbPath := newStorageDir(t, root, "a1b2c3", "/home/dev/myapp")
	seedDiskKV(t, dbPath, map[string]string{
		"comp-1": composerPayload("comp-1", inWindow),
		"comp-2": composerPayload("comp-2", outOfWindow),
	})

	r := NewCursorReader(root)
	convs, parseErrs, err := r.ReadSessions(t.Context(), testReaderWindow())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, convs, 1, "out-of-window session filtered")

	c := convs[0]
	assert.Equal(t, "comp-1", c.SessionID)
	assert.Equal(t, schema.CursorTool, c.Tool)
	assert.Equal(t, "/home/dev/myapp", c.WorkspacePath)
	assert.Equal(t, inWindow, c.StartTime)
	assert.Equal(t, inWindow.Add(10*time.Minute), c.EndTime)

	require.Len(t, c.Turns, 2, "unknown message types dropped")
	assert.Equal(t, schema.UserRole, c.Turns[0].Role)
	assert.Equal(t, schema.AssistantRole, c.Turns[1].Role)
	assert.Equal(t, schema.RefactoringSession, c.SessionType)
}

func TestCursorReaderItemTableFallback(t *testing.T) {
	root := t.TempDir()
	start := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)

	dbPath := newStorageDir(t, root, "d4e5f6", "/home/dev/legacy")
	bundle := fmt.Sprintf(`{"allComposers": [%s]}`, composerPayload("legacy-1", start))
	seedItemTable(t, dbPath, bundle)

	r := NewCursorReader(root)
	convs, parseErrs, err := r.ReadSessions(t.Context(), testReaderWindow())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, convs, 1)
	assert.Equal(t, "legacy-1", convs[0].SessionID)
	assert.Equal(t, "/home/dev/legacy", convs[0].WorkspacePath)
}

func TestCursorReaderCorruptPayloadDegrades(t *testing.T) {
	root := t.TempDir()
	start := time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC)

	badDB := newStorageDir(t, root, "bad000", "/home/dev/broken")
	seedDiskKV(t, badDB, map[string]string{"comp-x": `{"composerId": unquoted}`})

	goodDB := newStorageDir(t, root, "good00", "/home/dev/myapp")
	seedDiskKV(t, goodDB, map[string]string{"comp-1": composerPayload("comp-1", start)})

	r := NewCursorReader(root)
	convs, parseErrs, err := r.ReadSessions(t.Context(), testReaderWindow())
	require.NoError(t, err)

	require.Len(t, parseErrs, 1, "one error per corrupt database")
	assert.Contains(t, parseErrs[0].Path, "bad000")

	require.Len(t, convs, 1, "healthy databases still read")
	assert.Equal(t, "comp-1", convs[0].SessionID)
}

func TestCursorReaderMissingRoot(t *testing.T) {
	r := NewCursorReader(filepath.Join(t.TempDir(), "does-not-exist"))
	convs, parseErrs, err := r.ReadSessions(t.Context(), testReaderWindow())
	assert.NoError(t, err)
	assert.Empty(t, convs)
	assert.Empty(t, parseErrs)
}

func TestWorkspaceForStorageDir(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, workspaceForStorageDir(dir), "missing sidecar")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.json"),
		[]byte(`{"folder": "file:///home/dev/myapp"}`), 0o644))
	assert.Equal(t, "/home/dev/myapp", workspaceForStorageDir(dir))
}
