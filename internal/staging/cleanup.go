package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storyreel/internal/logging"
)

// CleanResult reports which workspaces a cleanup pass removed and which it
// could not.
type CleanResult struct {
	Removed  []string
	Failures []CleanFailure
}

// CleanFailure pairs a workspace path with the error that kept it in place.
type CleanFailure struct {
	Path string
	Err  error
}

// CleanStale removes job workspaces whose last modification is older than
// maxAge. Completed jobs leave their workspace behind for inspection, so this
// sweep is how the scratch space eventually gets reclaimed. Failures are
// collected rather than fatal; one undeletable workspace does not stop the
// pass.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	var result CleanResult

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Failures = append(result.Failures, CleanFailure{Path: stagingDir, Err: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			// Stray files next to the workspaces are not ours to delete.
			continue
		}
		workspacePath := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Failures = append(result.Failures, CleanFailure{Path: workspacePath, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(workspacePath); err != nil {
			result.Failures = append(result.Failures, CleanFailure{Path: workspacePath, Err: err})
			if logger != nil {
				logger.Warn("failed to remove stale workspace",
					logging.String("path", workspacePath),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, workspacePath)
		if logger != nil {
			logger.Info("removed stale workspace",
				logging.String("path", workspacePath),
				logging.Duration("age", time.Since(info.ModTime())),
			)
		}
	}

	return result
}

// WorkspaceInfo describes one entry under the staging root for the
// clean --list view.
type WorkspaceInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListWorkspaces returns every workspace under the staging root with its size
// and last modification, oldest first. A missing staging root yields an empty
// listing, not an error.
func ListWorkspaces(stagingDir string) ([]WorkspaceInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var workspaces []WorkspaceInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(stagingDir, entry.Name())
		size, _ := workspaceSize(path)
		workspaces = append(workspaces, WorkspaceInfo{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	sort.Slice(workspaces, func(i, j int) bool {
		return workspaces[i].ModTime.Before(workspaces[j].ModTime)
	})
	return workspaces, nil
}

// workspaceSize totals the files under a workspace, best effort: unreadable
// entries count as zero rather than failing the listing.
func workspaceSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
