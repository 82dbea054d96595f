package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_RebuildsOnChange(t *testing.T) {
	p := sampleProject(t)
	out := filepath.Join(p.SourceDir, "_build")
	b := newTestBuilder(p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Watch(ctx, out, 20*time.Millisecond) }()

	guide := filepath.Join(out, DefaultOutput)
	// The watcher may not be registered yet, so keep touching the file.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(p.SourceDir, "intro.md"), []byte("# Introduction\n\nChanged text\n"), 0o644)
		data, err := os.ReadFile(guide)
		return err == nil && strings.Contains(string(data), "Changed text")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
