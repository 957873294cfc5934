package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommitLog(t *testing.T) {
	out := "abc123|2026-08-20T10:00:00Z|Jo Dev|fix: handle empty window\n" +
		"def456|2026-08-19T09:30:00+02:00|Sam Dev|feat: export a|b matrices\n"

	commits, err := parseCommitLog(out)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123", commits[0].Hash)
	assert.Equal(t, "fix: handle empty window", commits[0].Subject)
	assert.Equal(t, "Jo Dev", commits[0].Author)
	assert.Equal(t, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), commits[0].Time)

	// Subjects keep embedded pipes; only the first three separators split.
	assert.Equal(t, "feat: export a|b matrices", commits[1].Subject)
	assert.Equal(t, "Sam Dev", commits[1].Author)
}

func TestParseCommitLogEmpty(t *testing.T) {
	commits, err := parseCommitLog("\n\n")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestParseCommitLogMalformed(t *testing.T) {
	_, err := parseCommitLog("abc123|not-enough-fields")
	assert.Error(t, err)

	_, err = parseCommitLog("abc|notadate|subject|author")
	assert.Error(t, err)
}
