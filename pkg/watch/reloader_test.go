package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uitheme/pkg/theme"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func themeJSON(primary string) string {
	return `{"content": ["./src/**/*.html"], "theme": {"extend": {"colors": {"primary": {"500": "` + primary + `"}}}}}`
}

func setup(t *testing.T) (string, *Reloader) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	require.NoError(t, os.WriteFile(path, []byte(themeJSON("#0ea5e9")), 0o644))

	loader := theme.NewLoader(theme.WithLogger(testLogger()))
	t.Cleanup(func() { loader.Close() })

	r, err := New(path, loader, Options{Debounce: 20 * time.Millisecond, Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { r.Stop() })
	return path, r
}

func currentPrimary(r *Reloader) string {
	v, _ := r.Current().ResolveColor("primary.500")
	return v
}

func TestReloader_InitialLoad(t *testing.T) {
	_, r := setup(t)
	assert.Equal(t, "#0ea5e9", currentPrimary(r))
	assert.True(t, r.Stats().Running)
}

func TestReloader_ReloadsOnWrite(t *testing.T) {
	path, r := setup(t)

	var notified atomic.Int32
	r.Subscribe(func(cfg *theme.ThemeConfig) { notified.Add(1) })

	require.NoError(t, os.WriteFile(path, []byte(themeJSON("#111111")), 0o644))

	require.Eventually(t, func() bool {
		return currentPrimary(r) == "#111111"
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return notified.Load() >= 1 }, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, r.Stats().Reloads, int64(1))
}

func TestReloader_KeepsSnapshotOnInvalidReload(t *testing.T) {
	path, r := setup(t)

	require.NoError(t, os.WriteFile(path, []byte(`{"content": [`), 0o644))

	require.Eventually(t, func() bool {
		return r.Stats().Failures >= 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "#0ea5e9", currentPrimary(r))
	assert.NotEmpty(t, r.Stats().LastError)
}

func TestReloader_IgnoresOtherFiles(t *testing.T) {
	path, r := setup(t)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0o644))
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, r.Stats().Reloads)
	assert.Zero(t, r.Stats().Failures)
}

func TestReloader_InitialLoadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme": {}}`), 0o644))

	loader := theme.NewLoader(theme.WithLogger(testLogger()))
	defer loader.Close()

	_, err := New(path, loader, Options{Logger: testLogger()})
	assert.ErrorIs(t, err, theme.ErrSchema)
}

func TestReloader_StopIdempotent(t *testing.T) {
	_, r := setup(t)

	assert.NoError(t, r.Stop())
	assert.NoError(t, r.Stop())
	assert.False(t, r.Stats().Running)
}

func TestReloader_StopWaitsForRunningReload(t *testing.T) {
	path, r := setup(t)

	entered := make(chan struct{})
	var enterOnce sync.Once
	release := make(chan struct{})
	r.Subscribe(func(*theme.ThemeConfig) {
		enterOnce.Do(func() { close(entered) })
		<-release
	})

	require.NoError(t, os.WriteFile(path, []byte(themeJSON("#222222")), 0o644))
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not start")
	}

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()

	assert.Never(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 100*time.Millisecond, 10*time.Millisecond, "Stop returned while a reload was running")

	close(release)
	require.Eventually(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "#222222", currentPrimary(r))
}
