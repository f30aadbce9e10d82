package collect

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/claim"
	"github.com/kingrea/claimflow/internal/modules/moduletest"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
}

func TestRunArchivesExistingOutputs(t *testing.T) {
	ctx := moduletest.NewContext(t)
	moduletest.WriteJSON(t, ctx, artifact.JobMetadata, map[string]any{"cause": "flood"})
	moduletest.WriteCSV(t, ctx, artifact.ImportCSV, claim.ImportHeader(), []string{"DRYRM2", "Living Room", "120 LF"})

	result, err := New(WithClock(fixedClock)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.NotEmpty(t, result.Warnings)

	dir := filepath.Join(ctx.Artifacts.Path(artifact.Archive), "20240501-093000")
	manifest, err := ReadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "job-0001", manifest.Job)
	assert.Equal(t, "2024-05-01T09:30:00Z", manifest.CreatedAt)
	require.Len(t, manifest.Files, 2)
	assert.Equal(t, artifact.JobMetadata.ID, manifest.Files[0].Artifact)
	assert.Equal(t, "estimate_xact_import.csv", manifest.Files[1].Name)

	copied, err := os.ReadFile(filepath.Join(dir, manifest.Files[1].Name))
	require.NoError(t, err)
	original, err := os.ReadFile(ctx.Artifacts.Path(artifact.ImportCSV))
	require.NoError(t, err)
	assert.Equal(t, original, copied)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256(original)), manifest.Files[1].SHA256)
}

func TestRunUsesPipelineRunID(t *testing.T) {
	ctx := moduletest.NewContext(t).WithRunID("run-abc")

	_, err := New(WithClock(fixedClock)).Run(ctx)
	require.NoError(t, err)

	manifest, err := ReadManifest(filepath.Join(ctx.Artifacts.Path(artifact.Archive), "run-abc", ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "run-abc", manifest.RunID)
	assert.Empty(t, manifest.Files)
}
