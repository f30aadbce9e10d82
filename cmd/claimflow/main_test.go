package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/claimflow/internal/config"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.EnvDefaultJob, "")
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunMissingJobExitsNonZero(t *testing.T) {
	root := t.TempDir()

	code, _, stderr := runCLI(t, "--root", root, "run")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "job "+config.DefaultJobID+": no data folder")
	assert.DirExists(t, filepath.Join(root, config.ClaimflowDir))
}

func TestStageCommandDefaultsToDefaultJob(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", config.DefaultJobID), 0o755))

	code, stdout, stderr := runCLI(t, "--root", root, "room-data")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "0 rooms available")
	assert.FileExists(t, filepath.Join(root, "out", config.DefaultJobID, config.DefaultJobID+"_room_data.csv"))
}

func TestStageCommandRejectsExtraArgs(t *testing.T) {
	code, _, stderr := runCLI(t, "--root", t.TempDir(), "estimate", "job-a", "job-b")

	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestStagesListsPipelineOrder(t *testing.T) {
	code, stdout, _ := runCLI(t, "--root", t.TempDir(), "stages")

	require.Equal(t, 0, code)
	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		ids = append(ids, strings.Fields(line)[0])
	}
	assert.Equal(t, []string{
		"claim-assumptions", "room-data", "estimate", "merge", "policy",
		"justify", "export", "preview", "collect",
	}, ids)
}
