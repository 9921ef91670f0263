package media

import "sort"

// Sort orders assets in place by sequence key: ranked assets before rankless
// ones, equal ranks by oldest modification time, rankless assets among
// themselves by oldest modification time. The sort is stable, so exact key
// ties keep their input order. Asset kind never participates in ordering;
// images and videos interleave purely by key, and callers must carry the
// result through as a single ordered collection rather than partitioning it
// by kind.
func Sort(assets []Asset) {
	sort.SliceStable(assets, func(i, j int) bool {
		return Less(assets[i].Key, assets[j].Key)
	})
}

// Less reports whether key a orders before key b.
func Less(a, b SequenceKey) bool {
	if a.HasRank != b.HasRank {
		return a.HasRank
	}
	if a.HasRank && a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.Tiebreak < b.Tiebreak
}
