package executor

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecute(t *testing.T) {
	requireShell(t)
	e := New()

	out, err := e.Execute(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Execute() = %q, want %q", out, "hello")
	}
}

func TestExecuteFailureIncludesStderr(t *testing.T) {
	requireShell(t)
	e := New()

	_, err := e.Execute(context.Background(), "sh", "-c", "echo 'no subtitles' >&2; exit 3")
	if err == nil {
		t.Fatal("Execute() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "no subtitles") {
		t.Errorf("error = %q, want stderr text", err)
	}
}

func TestExecuteInDir(t *testing.T) {
	requireShell(t)
	e := New()
	dir := t.TempDir()

	out, err := e.ExecuteInDir(context.Background(), dir, "sh", "-c", "pwd")
	if err != nil {
		t.Fatalf("ExecuteInDir() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(out))
	if got != want {
		t.Errorf("working dir = %q, want %q", got, want)
	}
}

func TestTail(t *testing.T) {
	if got := tail("short", 10); got != "short" {
		t.Errorf("tail() = %q", got)
	}
	if got := tail("0123456789", 4); got != "...6789" {
		t.Errorf("tail() = %q, want %q", got, "...6789")
	}
}
