//go:build integration

// Package integration contains integration tests for skillscope.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSkillscopeReportRecordShape runs a real analysis and verifies the JSON
// record carries exactly the four report fields.
func TestSkillscopeReportRecordShape(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "report.json")

	binPath := getSkillscopeBinary()
	cmd := exec.Command(binPath,
		"analyze",
		"--days", "7",
		"--no-store",
		"--output", "json",
		"--output-file", outputFile,
		"--color", "no",
	)
	cmd.Dir = "../"
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "analyze failed: %s", string(output))

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var record map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Len(t, record, 4)
	for _, key := range []string{"overall_score", "dimensions", "trends", "evidence"} {
		assert.Contains(t, record, key)
	}

	// Dimensions must always be present as an array, even with no sessions.
	var dims []json.RawMessage
	require.NoError(t, json.Unmarshal(record["dimensions"], &dims))
	assert.NotEmpty(t, dims)
}

// TestSkillscopeVersion smoke-tests the binary without any configuration.
func TestSkillscopeVersion(t *testing.T) {
	err := runSkillscopeCommand(t, "version")
	require.NoError(t, err)
}
