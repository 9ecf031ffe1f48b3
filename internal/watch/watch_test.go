package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIgnored(t *testing.T) {
	w := &Watcher{ignores: append(defaultIgnores, "dist/**")}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"source file", "src/main.rs", false},
		{"git metadata", ".git/objects/ab/cdef", true},
		{"editor swap", "src/.main.rs.swp", true},
		{"backup file", "src/main.rs~", true},
		{"output directory", "dist/image.tar", true},
		{"root file", "Cargo.toml", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.ignored(tt.path); got != tt.want {
				t.Fatalf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func startWatcher(t *testing.T, root string, ignore []string) *Watcher {
	t.Helper()

	w, err := New(Config{Root: root, Ignore: ignore, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	return w
}

func awaitChange(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changes():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherReportsChange(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root, nil)

	if err := os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if !awaitChange(t, w, 2*time.Second) {
		t.Fatal("no change reported after write")
	}
}

func TestWatcherIgnoresOutputDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "dist"), 0755); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t, root, []string{"dist", "dist/**"})

	if err := os.WriteFile(filepath.Join(root, "dist", "image.tar"), []byte("tar"), 0644); err != nil {
		t.Fatal(err)
	}

	if awaitChange(t, w, 300*time.Millisecond) {
		t.Fatal("change reported for ignored output directory")
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root, nil)

	sub := filepath.Join(root, "src")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	// Creating the directory itself reports a change.
	if !awaitChange(t, w, 2*time.Second) {
		t.Fatal("no change reported after mkdir")
	}

	if err := os.WriteFile(filepath.Join(sub, "main.rs"), []byte("fn main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if !awaitChange(t, w, 2*time.Second) {
		t.Fatal("no change reported for file in new directory")
	}
}
