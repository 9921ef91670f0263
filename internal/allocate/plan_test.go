package allocate_test

import (
	"errors"
	"fmt"
	"testing"

	"storyreel/internal/allocate"
	"storyreel/internal/media"
	"storyreel/internal/script"
)

func makeScenes(n int) []script.Scene {
	scenes := make([]script.Scene, n)
	for i := range scenes {
		scenes[i] = script.Scene{Ordinal: i + 1, Narration: fmt.Sprintf("Scene %d.", i+1)}
	}
	return scenes
}

func makeAssets(n int) []media.Asset {
	assets := make([]media.Asset, n)
	for i := range assets {
		assets[i] = media.Asset{
			Path: fmt.Sprintf("/p/scene_%02d.mp4", i+1),
			Kind: media.KindVideo,
			Key:  media.SequenceKey{Rank: i + 1, HasRank: true},
		}
	}
	return assets
}

func TestBuildOneToOne(t *testing.T) {
	plan, err := allocate.Build(makeScenes(3), makeAssets(3))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Assignments) != 3 || plan.UnusedAssets != 0 {
		t.Fatalf("plan = %+v", plan)
	}
	for i, a := range plan.Assignments {
		if a.SceneOrdinal != i+1 || a.Asset.Path != fmt.Sprintf("/p/scene_%02d.mp4", i+1) {
			t.Errorf("assignment %d = %+v", i, a)
		}
	}
}

func TestBuildSurplusAssetsReported(t *testing.T) {
	plan, err := allocate.Build(makeScenes(2), makeAssets(5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Assignments) != 2 {
		t.Fatalf("assignments = %d", len(plan.Assignments))
	}
	if plan.UnusedAssets != 3 {
		t.Errorf("unused = %d, want 3", plan.UnusedAssets)
	}
}

func TestBuildEvenDistributionRemainderFirst(t *testing.T) {
	// 5 scenes across 3 assets: first asset carries scenes 1-2, second 3-4,
	// third scene 5.
	plan, err := allocate.Build(makeScenes(5), makeAssets(3))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[int]string{
		1: "/p/scene_01.mp4",
		2: "/p/scene_01.mp4",
		3: "/p/scene_02.mp4",
		4: "/p/scene_02.mp4",
		5: "/p/scene_03.mp4",
	}
	for ordinal, path := range want {
		asset, ok := plan.AssetFor(ordinal)
		if !ok || asset.Path != path {
			t.Errorf("scene %d -> %q (ok=%v), want %q", ordinal, asset.Path, ok, path)
		}
	}
}

func TestBuildConservation(t *testing.T) {
	for _, tc := range []struct{ n, m int }{{1, 1}, {7, 3}, {10, 4}, {9, 9}, {3, 8}, {100, 7}} {
		plan, err := allocate.Build(makeScenes(tc.n), makeAssets(tc.m))
		if err != nil {
			t.Fatalf("Build(%d,%d): %v", tc.n, tc.m, err)
		}
		if len(plan.Assignments) != tc.n {
			t.Errorf("N=%d M=%d: %d assignments", tc.n, tc.m, len(plan.Assignments))
		}
		seen := make(map[int]int)
		for _, a := range plan.Assignments {
			seen[a.SceneOrdinal]++
		}
		for ordinal := 1; ordinal <= tc.n; ordinal++ {
			if seen[ordinal] != 1 {
				t.Errorf("N=%d M=%d: scene %d assigned %d times", tc.n, tc.m, ordinal, seen[ordinal])
			}
		}
		if tc.m < tc.n {
			counts := plan.SceneCounts()
			minCount, maxCount := tc.n, 0
			total := 0
			for _, c := range counts {
				total += c
				if c < minCount {
					minCount = c
				}
				if c > maxCount {
					maxCount = c
				}
			}
			if total != tc.n {
				t.Errorf("N=%d M=%d: counts sum to %d", tc.n, tc.m, total)
			}
			if maxCount-minCount > 1 {
				t.Errorf("N=%d M=%d: uneven distribution %v", tc.n, tc.m, counts)
			}
		}
	}
}

func TestBuildNoAssets(t *testing.T) {
	_, err := allocate.Build(makeScenes(3), nil)
	if !errors.Is(err, allocate.ErrNoMedia) {
		t.Fatalf("err = %v, want ErrNoMedia", err)
	}
}

func TestBuildNoScenes(t *testing.T) {
	if _, err := allocate.Build(nil, makeAssets(2)); err == nil {
		t.Fatal("expected error")
	}
}
