package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// assetSubdirs are project subdirectories scanned in addition to the root.
var assetSubdirs = []string{"images", "videos"}

// skipPrefixes mark files the pipeline itself writes into the project
// directory; they must never be picked up as source assets.
var skipPrefixes = []string{"final_", "scene_clip_", "thumbnail"}

// Scan discovers visual assets in a project directory. It inspects the root
// and the conventional images/ and videos/ subdirectories, non-recursively,
// classifying files by extension and deriving each asset's sequence key from
// its name and modification time. Hidden files and generated outputs are
// skipped. The returned slice is unsorted; callers order it with Sort.
func Scan(projectDir string) ([]Asset, error) {
	info, err := os.Stat(projectDir)
	if err != nil {
		return nil, fmt.Errorf("stat project dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %q is not a directory", projectDir)
	}

	dirs := []string{projectDir}
	for _, sub := range assetSubdirs {
		dirs = append(dirs, filepath.Join(projectDir, sub))
	}

	var assets []Asset
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if skipEntry(name) {
				continue
			}
			kind, ok := KindForPath(name)
			if !ok {
				continue
			}
			fi, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", name, err)
			}
			tiebreak := float64(fi.ModTime().UnixMilli()) / 1000.0
			assets = append(assets, Asset{
				Path: filepath.Join(dir, name),
				Kind: kind,
				Key:  ExtractSequenceKey(name, tiebreak),
			})
		}
	}

	return assets, nil
}

func skipEntry(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
