package media_test

import (
	"path/filepath"
	"testing"
	"time"

	"storyreel/internal/media"
	"storyreel/internal/testsupport"
)

func TestScanFindsAssetsInRootAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	testsupport.Touch(t, filepath.Join(dir, "01.jpg"), base)
	testsupport.Touch(t, filepath.Join(dir, "images", "02.png"), base.Add(time.Minute))
	testsupport.Touch(t, filepath.Join(dir, "videos", "03.mp4"), base.Add(2*time.Minute))
	// Non-media and generated files are ignored.
	testsupport.Touch(t, filepath.Join(dir, "story.json"), base)
	testsupport.Touch(t, filepath.Join(dir, "notes.txt"), base)
	testsupport.Touch(t, filepath.Join(dir, "final_output.mp4"), base)
	testsupport.Touch(t, filepath.Join(dir, "scene_clip_01.mp4"), base)
	testsupport.Touch(t, filepath.Join(dir, ".hidden.jpg"), base)

	assets, err := media.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("found %d assets, want 3: %v", len(assets), assets)
	}

	media.Sort(assets)
	wantNames := []string{"01.jpg", "02.png", "03.mp4"}
	for i, want := range wantNames {
		if assets[i].Name() != want {
			t.Errorf("asset %d = %s, want %s", i, assets[i].Name(), want)
		}
	}
	if assets[0].Kind != media.KindImage || assets[2].Kind != media.KindVideo {
		t.Errorf("kinds = %v %v", assets[0].Kind, assets[2].Kind)
	}
}

func TestScanTiebreakTracksModTime(t *testing.T) {
	dir := t.TempDir()
	older := time.Now().Add(-2 * time.Hour)
	newer := time.Now().Add(-time.Hour)
	testsupport.Touch(t, filepath.Join(dir, "beach.mp4"), newer)
	testsupport.Touch(t, filepath.Join(dir, "sunset.jpg"), older)

	assets, err := media.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	media.Sort(assets)
	if assets[0].Name() != "sunset.jpg" {
		t.Errorf("oldest rankless file should sort first, got %s", assets[0].Name())
	}
}

func TestScanMissingDirFails(t *testing.T) {
	if _, err := media.Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
