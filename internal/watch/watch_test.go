package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, dir string, opts ...Option) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(append([]Option{WithDebounce(50 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	batches := make(chan []string, 8)
	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		done <- w.Run(ctx, func(paths []string) { batches <- paths })
	}()
	return batches, cancel, done
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case paths := <-batches:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestRunDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	batches, cancel, done := startWatcher(t, dir)

	target := filepath.Join(dir, "job_metadata.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte(`{"cause":"flood"}`), 0o644))
	}
	assert.Equal(t, []string{target}, waitBatch(t, batches))

	cancel()
	require.NoError(t, <-done)
}

func TestRunIgnoresHiddenAndFilteredFiles(t *testing.T) {
	dir := t.TempDir()
	batches, cancel, done := startWatcher(t, dir, WithFilter(func(path string) bool {
		return filepath.Ext(path) == ".json"
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".policy_summary.json.123"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	policy := filepath.Join(dir, "policy_summary.json")
	require.NoError(t, os.WriteFile(policy, []byte("{}"), 0o644))

	assert.Equal(t, []string{policy}, waitBatch(t, batches))
	cancel()
	require.NoError(t, <-done)
}

func TestAddMissingDirFails(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "absent")))
}
