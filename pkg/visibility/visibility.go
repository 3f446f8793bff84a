// Package visibility implements spec component G: a BFS walk over
// loaded sections that produces the ordered draw list a renderer
// consumes each frame, pruning by per-frame visitation, frustum
// containment, intra-section cull info, and steep look-away angles.
//
// Grounded on original_source/src/world/mod.rs's compute_render_list:
// same BFS shape (queue seeded with the camera's section and an
// "Invalid" origin direction sentinel), the same four prune
// conditions in the same order, and the same per-chunk, per-y
// rendered_on marker that tracks visitation independent of whether a
// Section actually exists at that slot.
package visibility

import (
	"math"

	"github.com/voxelkiln/mccore/pkg/world"
)

// Direction is one of the 6 face-connected section neighbors, plus
// the reserved zero-direction sentinel (Origin) marking the BFS seed.
type Direction int

const (
	Origin Direction = iota
	Up
	Down
	North
	South
	East
	West
)

var sides = [6]Direction{Up, Down, North, South, East, West}

// Offset returns the section-coordinate delta Direction points toward.
func (d Direction) Offset() (dx, dy, dz int32) {
	switch d {
	case Up:
		return 0, 1, 0
	case Down:
		return 0, -1, 0
	case North:
		return 0, 0, -1
	case South:
		return 0, 0, 1
	case East:
		return 1, 0, 0
	case West:
		return -1, 0, 0
	default:
		return 0, 0, 0
	}
}

// Vector returns Direction's unit offset as floats, for the view-vector
// dot-product prune.
func (d Direction) Vector() (x, y, z float64) {
	dx, dy, dz := d.Offset()
	return float64(dx), float64(dy), float64(dz)
}

// Opposite returns the direction pointing back the way d came from,
// used to label the entry face when a neighbor is enqueued.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return Origin
	}
}

// CullInfo is a bitset over (entry face, exit face) pairs recording
// whether a section is visible from entry to exit by an internal
// flood fill over non-opaque cells, per spec §4.G: "derived during
// mesh building by flood fill over transparent/visible cells within a
// section, stored as a bitset of face pairs."
type CullInfo uint64

func pairBit(from, to Direction) uint {
	return uint((int(from)-1)*6 + (int(to) - 1))
}

// Visible reports whether exiting through to is reachable having
// entered through from. Origin is always visible (the BFS seed has no
// entry face to test against).
func (c CullInfo) Visible(from, to Direction) bool {
	if from == Origin {
		return true
	}
	return c&(1<<pairBit(from, to)) != 0
}

// SetVisible records that exiting through to is reachable from from.
func (c CullInfo) SetVisible(from, to Direction) CullInfo {
	return c | (1 << pairBit(from, to))
}

// AllVisibleCullInfo is the permissive default used for section slots
// with no built mesh yet (an empty/unloaded section still propagates
// the BFS through it, per spec).
func AllVisibleCullInfo() CullInfo {
	var c CullInfo
	for _, from := range sides {
		for _, to := range sides {
			c = c.SetVisible(from, to)
		}
	}
	return c
}

// Pose is the camera position and facing the BFS walks from.
type Pose struct {
	X, Y, Z    float64
	Yaw, Pitch float64 // radians
}

// viewVector is the camera's forward direction, standard Minecraft
// yaw/pitch convention (yaw 0 = south, increasing clockwise; pitch
// positive = looking down).
func (p Pose) viewVector() (x, y, z float64) {
	cosPitch := math.Cos(p.Pitch)
	return -math.Sin(p.Yaw) * cosPitch, -math.Sin(p.Pitch), math.Cos(p.Yaw) * cosPitch
}

// Relation is a frustum/AABB containment result.
type Relation int

const (
	Inside Relation = iota
	Outside
	Intersecting
)

// Frustum is supplied by the renderer collaborator (spec §6: the core
// consumes a containment test, it doesn't own projection/frustum math).
type Frustum interface {
	Contains(min, max [3]float64) Relation
}

// SectionCoord names one section by chunk column and section index.
type SectionCoord struct {
	Chunk   world.ChunkPos
	Section int32
}

const sectionSize = 16.0

func sectionBounds(c SectionCoord) (min, max [3]float64) {
	min = [3]float64{float64(c.Chunk.X) * sectionSize, float64(c.Section) * sectionSize, float64(c.Chunk.Z) * sectionSize}
	max = [3]float64{min[0] + sectionSize, min[1] + sectionSize, min[2] + sectionSize}
	return
}

type queueEntry struct {
	from Direction
	pos  SectionCoord
}

// Enumerate runs the BFS of spec §4.G against store, starting from the
// section containing pose, pruning by frustum and cull info, and
// returns the ordered list of sections to draw for frameID.
func Enumerate(store *world.Store, pose Pose, frustum Frustum, frameID uint64) []SectionCoord {
	var drawList []SectionCoord

	vx, vy, vz := pose.viewVector()
	var validDir [7]bool
	for _, d := range sides {
		dx, dy, dz := d.Vector()
		validDir[d] = vx*dx+vy*dy+vz*dz > -0.9
	}

	start := SectionCoord{
		Chunk:   world.ChunkPos{X: int32(math.Floor(pose.X / sectionSize)), Z: int32(math.Floor(pose.Z / sectionSize))},
		Section: int32(math.Floor(pose.Y / sectionSize)),
	}

	queue := []queueEntry{{from: Origin, pos: start}}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		loaded, exists, cullInfoBits := store.SectionRenderState(entry.pos.Chunk, entry.pos.Section)
		if !loaded {
			continue
		}
		if store.MarkSectionRendered(entry.pos.Chunk, entry.pos.Section, frameID) {
			continue
		}

		min, max := sectionBounds(entry.pos)
		if frustum != nil && frustum.Contains(min, max) == Outside && entry.from != Origin {
			continue
		}

		cull := CullInfo(cullInfoBits)
		if !exists {
			cull = AllVisibleCullInfo()
		}

		if exists {
			drawList = append(drawList, entry.pos)
		}

		for _, dir := range sides {
			dx, dy, dz := dir.Offset()
			npos := SectionCoord{
				Chunk:   world.ChunkPos{X: entry.pos.Chunk.X + dx, Z: entry.pos.Chunk.Z + dz},
				Section: entry.pos.Section + dy,
			}
			if entry.from == Origin || (validDir[dir] && cull.Visible(entry.from, dir)) {
				queue = append(queue, queueEntry{from: dir.Opposite(), pos: npos})
			}
		}
	}

	return drawList
}
