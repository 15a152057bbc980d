package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	desc := filepath.Join(dir, "gl.toml")
	if err := os.WriteFile(desc, []byte("name = \"gl\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := newInputWatcher([]string{desc})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// unrelated files in the same directory do not trigger a run
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(desc, []byte("name = \"gl\"\nheaders = [\"GL/gl.h\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runs := 0
	err = w.run(ctx, 20*time.Millisecond, func() error {
		runs++
		cancel()
		return nil
	}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}
