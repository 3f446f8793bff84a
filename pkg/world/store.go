package world

import (
	"sync"

	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/mcerr"
)

// Store owns the CPos->Chunk map and implements spec §4.C's Chunk
// Store operations. Built once per connection via NewStore with an
// explicit *block.Registry handle (per spec §9, no package-level
// singleton) and, optionally, a LightQueue/BlockEntityQueue wired in
// after construction.
type Store struct {
	mu       sync.RWMutex
	registry *block.Registry
	chunks   map[ChunkPos]*Chunk

	minSection int32
	maxSection int32

	lightQueue LightQueue
	beQueue    BlockEntityQueue
}

// NewStore builds an empty Store for registry, defaulting to the
// classic 0..256 (sections 0..15) vertical range until Configure sets
// another one.
func NewStore(registry *block.Registry) *Store {
	return &Store{
		registry:   registry,
		chunks:     make(map[ChunkPos]*Chunk),
		minSection: 0,
		maxSection: 15,
	}
}

// Configure sets the valid vertical section range from a dimension's
// min_y/height (negative min_y supported, spec §1 "negative-Y worlds").
func (s *Store) Configure(minY, height int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minSection = sectionIndex(minY)
	s.maxSection = sectionIndex(minY+height-1)
}

// SetLightQueue wires in the lighting engine's update queue.
func (s *Store) SetLightQueue(q LightQueue) { s.lightQueue = q }

// SetBlockEntityQueue wires in the block-entity dispatcher's queue.
func (s *Store) SetBlockEntityQueue(q BlockEntityQueue) { s.beQueue = q }

// LoadChunk creates (or replaces) the chunk at pos, per spec's
// lifecycle: "created on explicit load... removed on explicit unload".
func (s *Store) LoadChunk(pos ChunkPos) *Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newChunk(pos)
	s.chunks[pos] = c
	return c
}

// UnloadChunk removes the chunk at pos, releasing its block-entities.
func (s *Store) UnloadChunk(pos ChunkPos) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[pos]; ok {
		for bePos := range c.BlockEntities {
			if s.beQueue != nil {
				s.beQueue.EnqueueRemove(bePos)
			}
		}
		delete(s.chunks, pos)
	}
}

// ChunkAt returns the chunk at pos, or nil if it is not loaded.
func (s *Store) ChunkAt(pos ChunkPos) *Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[pos]
}

// InBounds reports whether pos is within the store's configured
// vertical section range and its chunk is loaded, per spec §4.E's
// tick skip rule: "Skip positions in unloaded chunks or outside
// [0, height)".
func (s *Store) InBounds(pos block.Position) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secIdx := sectionIndex(pos.Y)
	if secIdx < s.minSection || secIdx > s.maxSection {
		return false
	}
	cx, cz := pos.ChunkPos()
	_, ok := s.chunks[ChunkPos{X: cx, Z: cz}]
	return ok
}

// MarkSectionDirty flags the section containing pos dirty, or does
// nothing if the chunk or section isn't loaded. The lighting engine
// calls this once per section of the 3x3x3 section neighborhood of a
// changed light value, per spec §4.E "mark the 3x3x3 section neighborhood
// dirty".
func (s *Store) MarkSectionDirty(pos block.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, secIdx, _, _, _ := localCoords(pos)
	chunk, ok := s.chunks[cp]
	if !ok {
		return
	}
	if sec, ok := chunk.Sections[secIdx]; ok {
		sec.Dirty = true
	}
}

// SectionRenderState reports what the visibility enumerator (pkg/visibility)
// needs to know about the section at cp/secIdx: whether its column is
// loaded at all, whether a Section exists at secIdx within it, and (if
// so) its CullInfo bitset. loaded=false means the BFS should not walk
// through this coordinate at all, per spec §4.G's underlying
// get_render_section_mut returning None.
func (s *Store) SectionRenderState(cp ChunkPos, secIdx int32) (loaded, exists bool, cullInfo uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if secIdx < s.minSection || secIdx > s.maxSection {
		return false, false, 0
	}
	chunk, ok := s.chunks[cp]
	if !ok {
		return false, false, 0
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		return true, false, 0
	}
	return true, true, sec.CullInfo
}

// MarkSectionRendered reports whether the section at cp/secIdx was
// already visited during frameID's visibility pass; if not, it records
// frameID as the new visitation marker and returns false. This is the
// per-chunk, per-y `sections_rendered_on` array the original keeps
// independent of whether a Section is actually allocated there, so the
// BFS doesn't revisit empty above/below slots within the same pass.
func (s *Store) MarkSectionRendered(cp ChunkPos, secIdx int32, frameID uint64) (alreadyRendered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[cp]
	if !ok {
		return false
	}
	if chunk.SectionsRenderedOn[secIdx] == frameID {
		return true
	}
	chunk.SectionsRenderedOn[secIdx] = frameID
	return false
}

// LoadDecodedColumn installs a fully-decoded column (pkg/chunkio's
// output) as the chunk at pos, replacing any chunk already loaded
// there — the wire-level equivalent of the "new chunk" case pkg/chunkio
// parses for.
func (s *Store) LoadDecodedColumn(pos ChunkPos, sections map[int32]*Section, biomes [256]byte) *Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newChunk(pos)
	c.Sections = sections
	c.Biomes = biomes
	for idx := range sections {
		sections[idx].Dirty = true
	}
	s.chunks[pos] = c
	return c
}

// SetSectionLight overwrites a section's light arrays wholesale,
// lazily creating the chunk/section if absent. Used by the "update
// light" packet handler (pkg/chunkio) rather than GetBlock/SetBlock's
// per-voxel light path, since a light update always replaces an entire
// section's array at once.
func (s *Store) SetSectionLight(cp ChunkPos, secIdx int32, blockLight, skyLight *bitstore.NibbleArray) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[cp]
	if !ok {
		chunk = newChunk(cp)
		s.chunks[cp] = chunk
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		sec = s.createSectionLocked(chunk, secIdx)
	}
	if blockLight != nil {
		sec.BlockLight = blockLight
	}
	if skyLight != nil {
		sec.SkyLight = skyLight
	}
}

// SetSectionCullInfo records the intra-section visibility bitset mesh
// building derives for the section at cp/secIdx, creating the section
// if it doesn't already exist. Read back by pkg/visibility's BFS
// through SectionRenderState.
func (s *Store) SetSectionCullInfo(cp ChunkPos, secIdx int32, cullInfo uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[cp]
	if !ok {
		chunk = newChunk(cp)
		s.chunks[cp] = chunk
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		sec = s.createSectionLocked(chunk, secIdx)
	}
	sec.CullInfo = cullInfo
}

func localCoords(pos block.Position) (cp ChunkPos, secIdx int32, lx, ly, lz int32) {
	cx, cz := pos.ChunkPos()
	cp = ChunkPos{X: cx, Z: cz}
	secIdx = sectionIndex(pos.Y)
	lx = pos.X & 0xF
	lz = pos.Z & 0xF
	ly = pos.Y - secIdx*16
	return
}

// GetBlock returns the block at pos, or the registry's Air block if
// the chunk or section is not loaded.
func (s *Store) GetBlock(pos block.Position) block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getBlockLocked(pos)
}

func (s *Store) getBlockLocked(pos block.Position) block.Block {
	cp, secIdx, lx, ly, lz := localCoords(pos)
	chunk, ok := s.chunks[cp]
	if !ok {
		return s.registry.AirBlock()
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		return s.registry.AirBlock()
	}
	id := sec.Blocks.Get(localIndex(lx, ly, lz))
	return s.registry.FromInternalID(id)
}

// BlockAt implements block.WorldView, letting update_state rules read
// neighbor blocks through the same Store they mutate.
func (s *Store) BlockAt(pos block.Position) block.Block { return s.GetBlock(pos) }

// GetBlockLight and GetSkyLight return the 0..15 light level at pos,
// per spec's lighting-engine invariants (§3 Section).
func (s *Store) GetBlockLight(pos block.Position) byte {
	return s.lightValue(pos, false)
}

func (s *Store) GetSkyLight(pos block.Position) byte {
	return s.lightValue(pos, true)
}

func (s *Store) lightValue(pos block.Position, sky bool) byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, secIdx, lx, ly, lz := localCoords(pos)
	chunk, ok := s.chunks[cp]
	if !ok {
		if sky {
			return 15
		}
		return 0
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		// Empty sections above the highest decoded section have sky
		// light 15 implicitly (spec §3 Section invariant).
		if highest, has := chunk.HighestDecodedSection(); sky && (!has || secIdx > highest) {
			return 15
		}
		return 0
	}
	idx := localIndex(lx, ly, lz)
	if sky {
		return sec.SkyLight.Get(idx)
	}
	return sec.BlockLight.Get(idx)
}

// SetBlockLight and SetSkyLight write the light level at pos; used by
// pkg/light's relaxation engine.
func (s *Store) SetBlockLight(pos block.Position, level byte) {
	s.setLight(pos, level, false)
}

func (s *Store) SetSkyLight(pos block.Position, level byte) {
	s.setLight(pos, level, true)
}

func (s *Store) setLight(pos block.Position, level byte, sky bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, secIdx, lx, ly, lz := localCoords(pos)
	chunk, ok := s.chunks[cp]
	if !ok {
		return
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		sec = s.createSectionLocked(chunk, secIdx)
	}
	idx := localIndex(lx, ly, lz)
	if sky {
		sec.SkyLight.Set(idx, level)
	} else {
		sec.BlockLight.Set(idx, level)
	}
}

// createSectionLocked allocates a section lazily, filling sky light
// per spec's policy: 15 if above any previously decoded section in
// this column, else 0.
func (s *Store) createSectionLocked(chunk *Chunk, secIdx int32) *Section {
	skyFill := byte(0)
	if highest, has := chunk.HighestDecodedSection(); !has || secIdx > highest {
		skyFill = 15
	}
	sec := NewSection(s.registry.InternalID(s.registry.AirBlock()), skyFill)
	chunk.Sections[secIdx] = sec
	return sec
}

// SetBlock implements spec §4.C's set_block: write-through, enqueue
// block-entity lifecycle, enqueue 3x3x3 update_state recomputation,
// enqueue 3x3x3 lighting update, mark 27 sections dirty.
func (s *Store) SetBlock(pos block.Position, b block.Block) {
	s.mu.Lock()

	cp, secIdx, lx, ly, lz := localCoords(pos)
	chunk, ok := s.chunks[cp]
	if !ok {
		chunk = newChunk(cp)
		s.chunks[cp] = chunk
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		sec = s.createSectionLocked(chunk, secIdx)
	}

	oldID := sec.Blocks.Get(localIndex(lx, ly, lz))
	oldBlock := s.registry.FromInternalID(oldID)
	newID := s.registry.InternalID(b)
	changed := sec.Blocks.Set(localIndex(lx, ly, lz), newID)

	if changed {
		if hasBlockEntity(oldBlock) && s.beQueue != nil {
			s.beQueue.EnqueueRemove(pos)
		}
		if hasBlockEntity(b) && s.beQueue != nil {
			s.beQueue.EnqueueCreate(pos, b)
		}
		s.markNeighborhoodDirtyLocked(pos)
	}

	s.mu.Unlock()

	if !changed {
		return
	}
	s.recomputeNeighborhoodUpdateState(pos)
	if s.lightQueue != nil {
		forEachNeighbor27(pos, func(p block.Position) {
			s.lightQueue.Enqueue(p)
		})
	}
}

// markNeighborhoodDirtyLocked marks the 27 sections of the 3x3x3
// section neighborhood around pos's section dirty (which includes every
// 6-neighbor section), per spec's "every 6-neighbor section is also
// marked dirty". Sections that are not allocated are skipped.
func (s *Store) markNeighborhoodDirtyLocked(pos block.Position) {
	forEachNeighbor27(pos, func(p block.Position) {
		sectionPos := block.Position{X: pos.X + (p.X-pos.X)*16, Y: pos.Y + (p.Y-pos.Y)*16, Z: pos.Z + (p.Z-pos.Z)*16}
		cp, secIdx, _, _, _ := localCoords(sectionPos)
		chunk, ok := s.chunks[cp]
		if !ok {
			return
		}
		if sec, ok := chunk.Sections[secIdx]; ok {
			sec.Dirty = true
		}
	})
}

// recomputeNeighborhoodUpdateState re-derives update_state for the
// 3x3x3 block neighborhood around pos. Performed synchronously rather
// than through a separate async queue (an accepted simplification
// recorded in DESIGN.md: update_state is pure and cheap, so batching
// it behind its own queue buys nothing observable at this scope).
func (s *Store) recomputeNeighborhoodUpdateState(pos block.Position) {
	forEachNeighbor27(pos, func(p block.Position) {
		s.mu.Lock()
		old := s.getBlockLocked(p)
		s.mu.Unlock()
		if old.IsMissing() {
			return
		}
		updated := s.registry.UpdateState(old, s, p)
		if updated != old {
			s.writeThroughOnly(p, updated)
		}
	})
}

// writeThroughOnly stores b at pos without re-triggering dirty
// marking, lighting, or update_state cascades (used internally by
// recomputeNeighborhoodUpdateState to avoid infinite recursion).
func (s *Store) writeThroughOnly(pos block.Position, b block.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, secIdx, lx, ly, lz := localCoords(pos)
	chunk, ok := s.chunks[cp]
	if !ok {
		return
	}
	sec, ok := chunk.Sections[secIdx]
	if !ok {
		return
	}
	sec.Blocks.Set(localIndex(lx, ly, lz), s.registry.InternalID(b))
}

func forEachNeighbor27(pos block.Position, fn func(block.Position)) {
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				fn(block.Position{X: pos.X + dx, Y: pos.Y + dy, Z: pos.Z + dz})
			}
		}
	}
}

// DirtySection identifies one dirty section for enumeration.
type DirtySection struct {
	Chunk   ChunkPos
	Section int32
}

// DirtySections enumerates every currently-dirty section across all
// loaded chunks, for the mesh-building worker pool to drain.
func (s *Store) DirtySections() []DirtySection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []DirtySection
	for cp, chunk := range s.chunks {
		for idx, sec := range chunk.Sections {
			if sec.Dirty {
				out = append(out, DirtySection{Chunk: cp, Section: idx})
			}
		}
	}
	return out
}

// ClearDirty resets a section's dirty flag after its mesh is rebuilt.
func (s *Store) ClearDirty(cp ChunkPos, secIdx int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chunk, ok := s.chunks[cp]; ok {
		if sec, ok := chunk.Sections[secIdx]; ok {
			sec.Dirty = false
		}
	}
}

// Snapshot is a rectangular copy-out of blocks and light for mesh
// building, insulated from concurrent world mutation (spec §4.C
// capture_snapshot).
type Snapshot struct {
	MinSection, MaxSection int32
	Sections               map[int32]*Section
}

// CaptureSnapshot copies every section in [minSection,maxSection] of
// the chunk at cp. An absent section is filled with a fresh air
// section (sky light 15 above the highest decoded section, 0 below).
// No padding sections are added and adjacent chunks are not read.
func (s *Store) CaptureSnapshot(cp ChunkPos, minSection, maxSection int32) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[cp]
	if !ok {
		return nil, mcerr.Newf(mcerr.ChunkShape, "capture_snapshot: chunk %v not loaded", cp)
	}

	snap := &Snapshot{MinSection: minSection, MaxSection: maxSection, Sections: make(map[int32]*Section)}
	for idx := minSection; idx <= maxSection; idx++ {
		if sec, ok := chunk.Sections[idx]; ok {
			snap.Sections[idx] = copySection(sec)
			continue
		}
		skyFill := byte(0)
		if highest, has := chunk.HighestDecodedSection(); !has || idx > highest {
			skyFill = 15
		}
		snap.Sections[idx] = NewSection(s.registry.InternalID(s.registry.AirBlock()), skyFill)
	}
	return snap, nil
}

func copySection(sec *Section) *Section {
	blocks := bitstore.NewBlockStorage(sec.Blocks.Len(), sec.Blocks.Get(0))
	for i := 1; i < sec.Blocks.Len(); i++ {
		blocks.Set(i, sec.Blocks.Get(i))
	}
	out := &Section{
		Blocks:     blocks,
		BlockLight: bitstore.NibbleArrayFrom(append([]byte(nil), sec.BlockLight.Bytes()...), sec.BlockLight.Len()),
		SkyLight:   bitstore.NibbleArrayFrom(append([]byte(nil), sec.SkyLight.Bytes()...), sec.SkyLight.Len()),
		CullInfo:   sec.CullInfo,
	}
	return out
}
