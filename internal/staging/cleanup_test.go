package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/testsupport"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Failures) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldWorkspaces(t *testing.T) {
	stagingDir := t.TempDir()

	oldWorkspace := filepath.Join(stagingDir, "3-harbor-lights")
	if err := os.Mkdir(oldWorkspace, 0o755); err != nil {
		t.Fatalf("create old workspace: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldWorkspace, oldTime, oldTime); err != nil {
		t.Fatalf("age workspace: %v", err)
	}

	freshWorkspace := filepath.Join(stagingDir, "4-quiet-mountain")
	if err := os.Mkdir(freshWorkspace, 0o755); err != nil {
		t.Fatalf("create fresh workspace: %v", err)
	}

	result := CleanStale(context.Background(), stagingDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldWorkspace {
		t.Fatalf("removed = %v, want just %s", result.Removed, oldWorkspace)
	}
	if _, err := os.Stat(oldWorkspace); !os.IsNotExist(err) {
		t.Error("old workspace should be gone")
	}
	if _, err := os.Stat(freshWorkspace); err != nil {
		t.Error("fresh workspace should survive the sweep")
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	stagingDir := t.TempDir()

	strayFile := filepath.Join(stagingDir, "leftover.log")
	testsupport.Touch(t, strayFile, time.Now().Add(-2*time.Hour))

	result := CleanStale(context.Background(), stagingDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for plain files, got %v", result.Removed)
	}
	if _, err := os.Stat(strayFile); err != nil {
		t.Error("stray file should not have been removed")
	}
}

func TestListWorkspacesInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/12345"} {
		workspaces, err := ListWorkspaces(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", path, err)
		}
		if workspaces != nil {
			t.Errorf("expected nil listing for %q, got %v", path, workspaces)
		}
	}
}

func TestListWorkspacesOldestFirstWithSizes(t *testing.T) {
	stagingDir := t.TempDir()

	newer := filepath.Join(stagingDir, "2-second-story")
	if err := os.MkdirAll(filepath.Join(newer, "clips"), 0o755); err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(newer, "clips", "scene_clip_01.mp4"), 2048)

	older := filepath.Join(stagingDir, "1-first-story")
	if err := os.Mkdir(older, 0o755); err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(older, "full_narration.txt"), 64)
	oldTime := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, oldTime, oldTime); err != nil {
		t.Fatalf("age workspace: %v", err)
	}

	// A loose file in the staging root is not a workspace.
	testsupport.WriteFile(t, filepath.Join(stagingDir, "notes.txt"), 8)

	workspaces, err := ListWorkspaces(stagingDir)
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(workspaces) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(workspaces))
	}
	if workspaces[0].Name != "1-first-story" || workspaces[1].Name != "2-second-story" {
		t.Errorf("listing not oldest first: %s, %s", workspaces[0].Name, workspaces[1].Name)
	}
	if workspaces[0].Size != 64 {
		t.Errorf("first workspace size = %d, want 64", workspaces[0].Size)
	}
	if workspaces[1].Size != 2048 {
		t.Errorf("second workspace size = %d, want 2048", workspaces[1].Size)
	}
}
