package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) (<-chan string, *Watcher) {
	t.Helper()

	paths := make(chan string, 8)
	w, err := New(dir, func(p string) { paths <- p })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	return paths, w
}

func TestWatcherReportsRenamedDownload(t *testing.T) {
	dir := t.TempDir()
	paths, _ := startWatcher(t, dir)

	inProgress := filepath.Join(dir, "video.mp4.crdownload")
	require.NoError(t, os.WriteFile(inProgress, []byte("partial"), 0o644))

	// The in-progress file must never be reported
	select {
	case p := <-paths:
		t.Fatalf("unexpected report for %s", p)
	case <-time.After(800 * time.Millisecond):
	}

	final := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.Rename(inProgress, final))

	select {
	case p := <-paths:
		assert.Equal(t, final, p)
	case <-time.After(3 * time.Second):
		t.Fatal("renamed download was never reported")
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	paths, _ := startWatcher(t, dir)

	target := filepath.Join(dir, "report.pdf")
	for i := 0; i < 3; i++ {
		f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.Write([]byte("chunk"))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		time.Sleep(100 * time.Millisecond)
	}

	select {
	case p := <-paths:
		assert.Equal(t, target, p)
	case <-time.After(3 * time.Second):
		t.Fatal("settled file was never reported")
	}

	// The burst of writes collapses into one report
	select {
	case p := <-paths:
		t.Fatalf("duplicate report for %s", p)
	case <-time.After(800 * time.Millisecond):
	}
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	paths, _ := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patch.tmp"), []byte("x"), 0o644))

	select {
	case p := <-paths:
		t.Fatalf("unexpected report for %s", p)
	case <-time.After(800 * time.Millisecond):
	}
}

func TestWatcherCloseStopsPendingReports(t *testing.T) {
	dir := t.TempDir()
	paths, w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.bin"), []byte("x"), 0o644))
	require.NoError(t, w.Close())

	select {
	case p := <-paths:
		t.Fatalf("report after close for %s", p)
	case <-time.After(800 * time.Millisecond):
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New("/nonexistent/spool", func(string) {})
	require.Error(t, err)
}
