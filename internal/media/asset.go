package media

import (
	"path/filepath"
	"strings"
)

// Kind distinguishes still images from video clips.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is a visual file discovered in a project directory. Assets are
// immutable once discovered.
type Asset struct {
	Path     string      `json:"path"`
	Kind     Kind        `json:"kind"`
	Key      SequenceKey `json:"key"`
	Duration float64     `json:"duration,omitempty"`
}

// Name returns the base file name of the asset.
func (a Asset) Name() string {
	return filepath.Base(a.Path)
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".bmp":  {},
	".gif":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".avi":  {},
	".webm": {},
	".m4v":  {},
}

// KindForPath classifies a file by extension. The second return value is
// false for files that are not visual assets.
func KindForPath(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo, true
	}
	return "", false
}
