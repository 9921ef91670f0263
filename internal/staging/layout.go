// Package staging lays out the per-job working directories that hold
// narration audio, recognizer transcripts and intermediate scene clips, and
// cleans them up when they go stale. Final outputs land in the project
// directory, not here.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Workspace is one job's scratch area under the configured staging root.
type Workspace struct {
	Root string
}

// ItemWorkspace derives the scratch directory for a queue item. The item ID
// keeps the path unique even when two projects share a title.
func ItemWorkspace(stagingDir string, itemID int64, title string) Workspace {
	slug := slugUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "job"
	}
	return Workspace{Root: filepath.Join(stagingDir, fmt.Sprintf("%d-%s", itemID, slug))}
}

// Ensure creates the workspace directory tree.
func (w Workspace) Ensure() error {
	for _, dir := range []string{w.Root, w.NarrationDir(), w.TranscriptDir(), w.ClipsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create staging directory %s: %w", dir, err)
		}
	}
	return nil
}

// NarrationDir holds per-scene synthesized audio.
func (w Workspace) NarrationDir() string {
	return filepath.Join(w.Root, "narration")
}

// SceneAudio is the synthesized narration file for one scene.
func (w Workspace) SceneAudio(ordinal int) string {
	return filepath.Join(w.NarrationDir(), fmt.Sprintf("scene_%02d.mp3", ordinal))
}

// NarrationText is the concatenated script text dumped for reference.
func (w Workspace) NarrationText() string {
	return filepath.Join(w.Root, "full_narration.txt")
}

// TranscriptDir holds recognizer JSON output.
func (w Workspace) TranscriptDir() string {
	return filepath.Join(w.Root, "transcripts")
}

// ClipsDir holds intermediate per-scene clips.
func (w Workspace) ClipsDir() string {
	return filepath.Join(w.Root, "clips")
}

// SceneClip is the rendered clip for one scene.
func (w Workspace) SceneClip(ordinal int) string {
	return filepath.Join(w.ClipsDir(), fmt.Sprintf("scene_clip_%02d.mp4", ordinal))
}

// ConcatOutput is the concatenated video before caption burn-in.
func (w Workspace) ConcatOutput() string {
	return filepath.Join(w.ClipsDir(), "combined.mp4")
}

// CaptionFile is the generated caption document for the given format.
func (w Workspace) CaptionFile(format string) string {
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if ext == "" {
		ext = "srt"
	}
	return filepath.Join(w.Root, "captions."+ext)
}

// FinalOutput is where the finished video lands inside the project
// directory. The prefix keeps rescans of the project from treating the
// output as a source asset.
func FinalOutput(projectDir string) string {
	return filepath.Join(projectDir, "final_video.mp4")
}

// CancelSentinel is the file operators drop into a project directory to
// request cooperative cancellation of its running job.
func CancelSentinel(projectDir string) string {
	return filepath.Join(projectDir, ".cancel")
}

// CancelRequested reports whether the cancel sentinel exists.
func CancelRequested(projectDir string) bool {
	if strings.TrimSpace(projectDir) == "" {
		return false
	}
	_, err := os.Stat(CancelSentinel(projectDir))
	return err == nil
}
