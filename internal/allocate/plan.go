// Package allocate maps narrative scenes onto the sorted visual assets.
package allocate

import (
	"errors"
	"fmt"

	"storyreel/internal/media"
	"storyreel/internal/script"
)

// ErrNoMedia indicates allocation was attempted with zero assets. This is
// fatal to the assembly run.
var ErrNoMedia = errors.New("no media available for allocation")

// Assignment binds one scene to the asset that will carry its visuals.
type Assignment struct {
	SceneOrdinal int         `json:"scene_ordinal"`
	Asset        media.Asset `json:"asset"`
}

// Plan is the full scene-to-asset mapping for a run. Every scene has exactly
// one assignment; an asset may carry several consecutive scenes when assets
// are scarce. Surplus assets are never dropped silently, they are counted.
type Plan struct {
	Assignments  []Assignment `json:"assignments"`
	UnusedAssets int          `json:"unused_assets"`
}

// Build allocates N scenes across M sorted assets.
//
//   - N == M: one-to-one by position.
//   - N < M: one-to-one for the first N assets; the surplus is reported.
//   - N > M: even distribution. base = N/M scenes per asset, and the first
//     N%M assets carry one extra consecutive scene each, consuming scenes in
//     authoring order.
func Build(scenes []script.Scene, assets []media.Asset) (Plan, error) {
	if len(scenes) == 0 {
		return Plan{}, errors.New("no scenes to allocate")
	}
	if len(assets) == 0 {
		return Plan{}, fmt.Errorf("%w: %d scenes need visuals", ErrNoMedia, len(scenes))
	}

	n, m := len(scenes), len(assets)
	plan := Plan{Assignments: make([]Assignment, 0, n)}

	if n <= m {
		for i, scene := range scenes {
			plan.Assignments = append(plan.Assignments, Assignment{
				SceneOrdinal: scene.Ordinal,
				Asset:        assets[i],
			})
		}
		plan.UnusedAssets = m - n
		return plan, nil
	}

	base := n / m
	remainder := n % m
	sceneIdx := 0
	for assetIdx, asset := range assets {
		count := base
		if assetIdx < remainder {
			count++
		}
		for i := 0; i < count && sceneIdx < n; i++ {
			plan.Assignments = append(plan.Assignments, Assignment{
				SceneOrdinal: scenes[sceneIdx].Ordinal,
				Asset:        asset,
			})
			sceneIdx++
		}
	}

	return plan, nil
}

// AssetFor returns the assignment for a scene ordinal.
func (p Plan) AssetFor(ordinal int) (media.Asset, bool) {
	for _, a := range p.Assignments {
		if a.SceneOrdinal == ordinal {
			return a.Asset, true
		}
	}
	return media.Asset{}, false
}

// SceneCounts returns how many scenes each asset path carries.
func (p Plan) SceneCounts() map[string]int {
	counts := make(map[string]int)
	for _, a := range p.Assignments {
		counts[a.Asset.Path]++
	}
	return counts
}
