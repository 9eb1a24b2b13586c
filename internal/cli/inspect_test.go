package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/store"
)

func TestInspectText(t *testing.T) {
	db := checkpointDB(t, "morning", "evening")

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "morning")
	assert.Contains(t, out, "evening")
	assert.Less(t, strings.Index(out, "morning"), strings.Index(out, "evening"), "oldest first")
}

func TestInspectJSON(t *testing.T) {
	db := checkpointDB(t, "morning", "evening")

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string                 `json:"status"`
		Data   []store.CheckpointInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "morning", resp.Data[0].Label)
	assert.Equal(t, "evening", resp.Data[1].Label)
	assert.Equal(t, resp.Data[0].Digest, resp.Data[1].Digest, "same scenario, same state")
}

func TestInspectEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No checkpoints.")
}

func TestInspectMissingDatabase(t *testing.T) {
	_, _, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), "--db", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestShortDigest(t *testing.T) {
	assert.Equal(t, "abcdef012345", shortDigest("abcdef0123456789"))
	assert.Equal(t, "abc", shortDigest("abc"))
}

