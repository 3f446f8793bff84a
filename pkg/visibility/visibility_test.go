package visibility

import (
	"testing"

	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/world"
)

func testStore(t *testing.T) *world.Store {
	t.Helper()
	reg := block.NewRegistry(block.DefaultCatalog())
	store := world.NewStore(reg)
	store.LoadChunk(world.ChunkPos{X: 0, Z: 0})
	return store
}

type alwaysInside struct{}

func (alwaysInside) Contains(min, max [3]float64) Relation { return Inside }

type alwaysOutside struct{}

func (alwaysOutside) Contains(min, max [3]float64) Relation { return Outside }

func TestEnumerateIncludesStartSection(t *testing.T) {
	store := testStore(t)
	store.SetSectionCullInfo(world.ChunkPos{X: 0, Z: 0}, 5, uint64(AllVisibleCullInfo()))

	out := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysInside{}, 1)

	found := false
	for _, c := range out {
		if c.Chunk == (world.ChunkPos{X: 0, Z: 0}) && c.Section == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("Enumerate(%v) = %v, want start section included", out, out)
	}
}

func TestEnumerateWalksThroughEmptySectionsWithoutDrawingThem(t *testing.T) {
	store := testStore(t)
	// Section 5 (start) is never given a Section via SetSectionCullInfo,
	// so it's an empty air slot in an otherwise loaded column: the BFS
	// should still traverse it (column is loaded) but never add it to
	// the draw list, and it should still expand to its neighbors.
	store.SetSectionCullInfo(world.ChunkPos{X: 1, Z: 0}, 5, uint64(AllVisibleCullInfo()))

	out := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysInside{}, 1)

	for _, c := range out {
		if c.Chunk == (world.ChunkPos{X: 0, Z: 0}) {
			t.Errorf("Enumerate(%v) drew the empty start section", out)
		}
	}
	foundNeighbor := false
	for _, c := range out {
		if c.Chunk == (world.ChunkPos{X: 1, Z: 0}) && c.Section == 5 {
			foundNeighbor = true
		}
	}
	if !foundNeighbor {
		t.Errorf("Enumerate(%v) never reached the neighbor past the empty start section", out)
	}
}

func TestEnumerateSkipsUnloadedChunks(t *testing.T) {
	store := testStore(t)
	out := Enumerate(store, Pose{X: 1000, Y: 88, Z: 1000}, alwaysInside{}, 1)
	if len(out) != 0 {
		t.Errorf("Enumerate from an unloaded position = %v, want empty", out)
	}
}

func TestEnumerateDoesNotRevisitSameFrame(t *testing.T) {
	store := testStore(t)
	store.SetSectionCullInfo(world.ChunkPos{X: 0, Z: 0}, 5, uint64(AllVisibleCullInfo()))

	first := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysInside{}, 7)
	second := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysInside{}, 7)

	if len(second) != 0 {
		t.Errorf("re-running Enumerate with the same frameID = %v, want empty (already marked rendered)", second)
	}
	third := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysInside{}, 8)
	if len(third) == 0 {
		t.Errorf("Enumerate with a fresh frameID should revisit, got empty")
	}
	_ = first
}

func TestEnumeratePrunesOutsideFrustumBeyondOrigin(t *testing.T) {
	store := testStore(t)
	store.SetSectionCullInfo(world.ChunkPos{X: 0, Z: 0}, 5, uint64(AllVisibleCullInfo()))
	store.SetSectionCullInfo(world.ChunkPos{X: 1, Z: 0}, 5, uint64(AllVisibleCullInfo()))

	out := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysOutside{}, 1)

	if len(out) != 1 {
		t.Errorf("Enumerate with an always-outside frustum = %v, want only the origin section", out)
	}
}

func TestEnumerateCullInfoBlocksPropagationPastNeighbor(t *testing.T) {
	store := testStore(t)
	store.Configure(80, 16) // only section 5 is in range, so no path leads around mid
	origin := world.ChunkPos{X: 0, Z: 0}
	mid := world.ChunkPos{X: 1, Z: 0}
	far := world.ChunkPos{X: 2, Z: 0}
	store.SetSectionCullInfo(origin, 5, uint64(AllVisibleCullInfo()))
	store.SetSectionCullInfo(mid, 5, 0) // opaque: no face pair visible
	store.SetSectionCullInfo(far, 5, uint64(AllVisibleCullInfo()))

	out := Enumerate(store, Pose{X: 8, Y: 88, Z: 8}, alwaysInside{}, 1)

	var reachedMid, reachedFar bool
	for _, c := range out {
		if c.Chunk == mid {
			reachedMid = true
		}
		if c.Chunk == far {
			reachedFar = true
		}
	}
	if !reachedMid {
		t.Errorf("Enumerate(%v) never reached mid; expansion from the origin entry should ignore cull info", out)
	}
	if reachedFar {
		t.Errorf("Enumerate(%v) reached far past mid's opaque cull info", out)
	}
}

func TestDirectionOppositeRoundTrips(t *testing.T) {
	for _, d := range sides {
		if got := d.Opposite().Opposite(); got != d {
			t.Errorf("Opposite(Opposite(%v)) = %v, want %v", d, got, d)
		}
	}
}
