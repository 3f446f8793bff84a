package block

// DefaultCatalog returns a representative block catalog exercising
// every update_state/ID-assignment family spec §4.A calls out by name.
// It is not the full ~700-kind vanilla catalog (out of budget per
// DESIGN.md); the registry machine built from it is exactly the same
// general machine a full catalog would run through.
func DefaultCatalog() []KindDef {
	return []KindDef{
		airKind(),
		missingPadding("missing253"),
		missingPadding("missing254"),
		stoneKind(),
		logKind(),
		planksKind(),
		slabKind(),
		stairsKind(),
		doorKind(),
		fenceFamilyKind("fence"),
		fenceFamilyKind("glass_pane"),
		fenceFamilyKind("iron_bars"),
		wallKind(),
		redstoneWireKind(),
		fireKind(),
		snowyDirtKind("grass"),
		snowyDirtKind("mycelium"),
		snowyDirtKind("podzol"),
		moddedLampKind(),
	}
}

func airKind() KindDef {
	return KindDef{
		Name: "air",
		Material: func(idx []int) Material { return airMaterial },
	}
}

// missingPadding models the two historically-reserved-but-unassigned
// hierarchical slots (vanilla block IDs 253/254): an inert kind with
// no attributes and no flat-era presence. Like every kind it takes the
// next hier_block_id in catalog order (the two padding kinds sit right
// after air), not vanilla ids 253/254.
func missingPadding(name string) KindDef {
	return KindDef{
		Name: name,
		HierData: func(idx []int) (int, bool) { return 0, true },
		FlatOffset: func(idx []int) (int, bool) { return 0, false },
		Material: func(idx []int) Material { return airMaterial },
	}
}

func stoneKind() KindDef {
	variants := []string{"stone", "granite", "polished_granite", "diorite", "polished_diorite", "andesite", "polished_andesite"}
	return KindDef{
		Name:  "stone",
		Attrs: []AttrDef{{Name: "variant", Values: variants}},
	}
}

func logKind() KindDef {
	species := []string{"oak", "spruce", "birch", "jungle"}
	axes := []string{"x", "y", "z"}
	return KindDef{
		Name: "log",
		Attrs: []AttrDef{
			{Name: "species", Values: species},
			{Name: "axis", Values: axes},
		},
		// species*3+axis always fits in 4 bits (max 11), matching the
		// historical (data = species<<2 | axis) packing closely enough
		// for this representative catalog.
	}
}

func planksKind() KindDef {
	species := []string{"oak", "spruce", "birch", "jungle", "acacia", "dark_oak"}
	return KindDef{
		Name:  "planks",
		Attrs: []AttrDef{{Name: "species", Values: species}},
	}
}

// slabKind demonstrates the "offset" policy: the flat table groups
// top/bottom halves of one material contiguously, but the double-slab
// "type" family is a materially distinct concept the attribute schema
// does not attempt here (out of this catalog's representative scope).
func slabKind() KindDef {
	materials := []string{"stone", "sandstone", "oak", "cobblestone", "brick", "stone_brick", "nether_brick", "quartz"}
	halves := []string{"bottom", "top"}
	return KindDef{
		Name: "slab",
		Attrs: []AttrDef{
			{Name: "material", Values: materials},
			{Name: "half", Values: halves},
		},
	}
}

var stairFacings = []string{"north", "south", "east", "west"}
var stairHalves = []string{"bottom", "top"}
var stairShapes = []string{"straight", "inner_left", "inner_right", "outer_left", "outer_right"}
var boolValues = []string{"false", "true"}

func stairsKind() KindDef {
	return KindDef{
		Name: "stairs",
		Attrs: []AttrDef{
			{Name: "facing", Values: stairFacings},
			{Name: "half", Values: stairHalves},
			{Name: "shape", Values: stairShapes},
			{Name: "waterlogged", Values: boolValues},
		},
		// Only the canonical "straight, dry" combination had a pre-flat
		// meta slot; shape was computed client-side and waterlogging
		// did not exist yet.
		HierData: func(idx []int) (int, bool) {
			facing, half, shape, waterlogged := idx[0], idx[1], idx[2], idx[3]
			if shape != 0 || waterlogged != 0 {
				return 0, false
			}
			return half*4 + facing, true
		},
		UpdateState: stairsUpdateState,
	}
}

// stairsUpdateState implements spec §4.A's stair shape rule: straight
// unless the stair ahead (in facing direction) turns perpendicular
// (-> outer corner) or the stair behind turns perpendicular (-> inner
// corner).
func stairsUpdateState(b Block, w WorldView, pos Position) Block {
	facing := stairFacings[b.Attrs[0]]
	ahead := w.BlockAt(pos.step(facing))
	behind := w.BlockAt(pos.step(opposite(facing)))

	shapeIdx := 0 // straight
	if ahead.Kind == b.Kind && isPerpendicular(facing, stairFacings[ahead.Attrs[0]]) {
		if turnsRight(facing, stairFacings[ahead.Attrs[0]]) {
			shapeIdx = 4 // outer_right
		} else {
			shapeIdx = 3 // outer_left
		}
	} else if behind.Kind == b.Kind && isPerpendicular(facing, stairFacings[behind.Attrs[0]]) {
		if turnsRight(facing, stairFacings[behind.Attrs[0]]) {
			shapeIdx = 2 // inner_right
		} else {
			shapeIdx = 1 // inner_left
		}
	}

	out := b
	out.Attrs[2] = uint8(shapeIdx)
	return out
}

func doorKind() KindDef {
	halves := []string{"lower", "upper"}
	return KindDef{
		Name: "door",
		Attrs: []AttrDef{
			{Name: "half", Values: halves},
			{Name: "facing", Values: stairFacings},
			{Name: "hinge", Values: []string{"left", "right"}},
			{Name: "open", Values: boolValues},
			{Name: "powered", Values: boolValues},
		},
		// Pre-1.13 doors packed differently per half: the lower half
		// encoded facing+open, the upper half encoded hinge+powered.
		HierData: func(idx []int) (int, bool) {
			half, facing, hinge, open, powered := idx[0], idx[1], idx[2], idx[3], idx[4]
			if half == 0 { // lower
				if hinge != 0 || powered != 0 {
					return 0, false
				}
				return facing*2 + open, true
			}
			if facing != 0 || open != 0 {
				return 0, false
			}
			return 8 + hinge*2 + powered, true
		},
		UpdateState: doorUpdateState,
	}
}

// doorUpdateState implements spec §4.A's door linkage: the upper half
// inherits facing/hinge/open from the lower, the lower inherits
// powered from the upper.
func doorUpdateState(b Block, w WorldView, pos Position) Block {
	out := b
	if b.Attrs[0] == 0 { // lower: read powered from upper
		upper := w.BlockAt(Position{pos.X, pos.Y + 1, pos.Z})
		if upper.Kind == b.Kind {
			out.Attrs[4] = upper.Attrs[4]
		}
		return out
	}
	lower := w.BlockAt(Position{pos.X, pos.Y - 1, pos.Z})
	if lower.Kind == b.Kind {
		out.Attrs[1] = lower.Attrs[1] // facing
		out.Attrs[2] = lower.Attrs[2] // hinge
		out.Attrs[3] = lower.Attrs[3] // open
	}
	return out
}

// fenceFamilyKind builds fence/glass-pane/iron-bars: four horizontal
// connectivity flags, no vertical (walls add "up" separately).
func fenceFamilyKind(name string) KindDef {
	return KindDef{
		Name: name,
		Attrs: []AttrDef{
			{Name: "north", Values: boolValues},
			{Name: "south", Values: boolValues},
			{Name: "east", Values: boolValues},
			{Name: "west", Values: boolValues},
		},
		FlatOffset: func(idx []int) (int, bool) { return mixedRadixIndex(idx, []int{2, 2, 2, 2}), true },
		HierData:   func(idx []int) (int, bool) { return 0, false }, // no pre-flat connectivity slot
		UpdateState: connectivityUpdateState,
	}
}

func wallKind() KindDef {
	return KindDef{
		Name: "wall",
		Attrs: []AttrDef{
			{Name: "north", Values: boolValues},
			{Name: "south", Values: boolValues},
			{Name: "east", Values: boolValues},
			{Name: "west", Values: boolValues},
			{Name: "up", Values: boolValues},
		},
		HierData:    func(idx []int) (int, bool) { return 0, false },
		UpdateState: wallUpdateState,
	}
}

// connectivityUpdateState implements fence/pane/bars: connect to
// neighbors whose kind is in the same connectable family.
func connectivityUpdateState(b Block, w WorldView, pos Position) Block {
	out := b
	for i, dir := range []string{"north", "south", "east", "west"} {
		neighbor := w.BlockAt(pos.step(dir))
		out.Attrs[i] = boolIdx(isConnectable(neighbor))
	}
	return out
}

// wallUpdateState adds the "up" flag: set when the block above is
// non-air and the horizontal connections are not a simple straight
// pass-through (matching spec's wall rule).
func wallUpdateState(b Block, w WorldView, pos Position) Block {
	out := connectivityUpdateState(b, w, pos)
	above := w.BlockAt(Position{pos.X, pos.Y + 1, pos.Z})
	straightThrough := (out.Attrs[0] == 1 && out.Attrs[1] == 1 && out.Attrs[2] == 0 && out.Attrs[3] == 0) ||
		(out.Attrs[0] == 0 && out.Attrs[1] == 0 && out.Attrs[2] == 1 && out.Attrs[3] == 1)
	out.Attrs[4] = boolIdx(above.Kind != 0 && !straightThrough)
	return out
}

func isConnectable(b Block) bool {
	return b.Kind != 0 // any non-air neighbor connects, for this representative family
}

func redstoneWireKind() KindDef {
	sides := []string{"none", "side", "up"}
	return KindDef{
		Name: "redstone_wire",
		Attrs: []AttrDef{
			{Name: "power", Values: powerLevels()},
			{Name: "north", Values: sides},
			{Name: "south", Values: sides},
			{Name: "east", Values: sides},
			{Name: "west", Values: sides},
		},
		// Pre-1.13 meta was power level alone; sides were computed
		// client-side, so only the canonical all-"none" combo per
		// power level gets a hierarchical slot, avoiding collisions.
		HierData: func(idx []int) (int, bool) {
			if idx[1] != 0 || idx[2] != 0 || idx[3] != 0 || idx[4] != 0 {
				return 0, false
			}
			return idx[0], true
		},
		UpdateState: redstoneWireUpdateState,
	}
}

func powerLevels() []string {
	levels := make([]string, 16)
	for i := range levels {
		levels[i] = string(rune('0' + i))
		if i >= 10 {
			levels[i] = "1" + string(rune('0'+i-10))
		}
	}
	return levels
}

// redstoneWireUpdateState implements spec's connectivity rule: a wire
// neighbor -> side; a solid (here: any non-air) block with a wire above
// it -> up; otherwise -> none.
func redstoneWireUpdateState(b Block, w WorldView, pos Position) Block {
	out := b
	for i, dir := range []string{"north", "south", "east", "west"} {
		neighbor := w.BlockAt(pos.step(dir))
		above := w.BlockAt(pos.step(dir).up())
		switch {
		case neighbor.Kind == b.Kind:
			out.Attrs[1+i] = 1 // side
		case above.Kind == b.Kind && neighbor.Kind != 0:
			out.Attrs[1+i] = 2 // up
		default:
			out.Attrs[1+i] = 0 // none
		}
	}
	return out
}

func fireKind() KindDef {
	return KindDef{
		Name: "fire",
		Attrs: []AttrDef{
			{Name: "up", Values: boolValues},
			{Name: "north", Values: boolValues},
			{Name: "south", Values: boolValues},
			{Name: "east", Values: boolValues},
			{Name: "west", Values: boolValues},
		},
		HierData:    func(idx []int) (int, bool) { return 0, false },
		UpdateState: fireUpdateState,
		Material:    func(idx []int) Material { return airMaterial },
	}
}

// fireUpdateState: each of up/n/s/e/w is set when that neighbor is
// flammable, per spec.
func fireUpdateState(b Block, w WorldView, pos Position) Block {
	out := b
	dirs := []string{"up", "north", "south", "east", "west"}
	for i, dir := range dirs {
		var neighborPos Position
		if dir == "up" {
			neighborPos = pos.up()
		} else {
			neighborPos = pos.step(dir)
		}
		out.Attrs[i] = boolIdx(isFlammable(w.BlockAt(neighborPos)))
	}
	return out
}

func isFlammable(b Block) bool {
	return b.Kind != 0 // representative: treat any non-air as potentially flammable fuel
}

func snowyDirtKind(name string) KindDef {
	return KindDef{
		Name:        name,
		Attrs:       []AttrDef{{Name: "snowy", Values: boolValues}},
		HierData: func(idx []int) (int, bool) {
			if idx[0] != 0 {
				return 0, false // snowy is computed client-side pre-flat, no distinct meta
			}
			return 0, true
		},
		UpdateState: snowyUpdateState,
	}
}

// snowyUpdateState implements spec's grass/mycelium/podzol rule:
// snowy <- is there snow directly above.
func snowyUpdateState(b Block, w WorldView, pos Position) Block {
	above := w.BlockAt(pos.up())
	out := b
	out.Attrs[0] = boolIdx(isSnow(above))
	return out
}

func isSnow(b Block) bool {
	return false // no snow kind in this representative catalog; hook point for one
}

// moddedLampKind demonstrates the modded/offset family: a Forge-style
// block keyed by mod namespace rather than the vanilla hier/flat tables.
func moddedLampKind() KindDef {
	return KindDef{
		Name:  "lumen_lamp",
		Modid: "voxelkiln_extras",
		Attrs: []AttrDef{{Name: "lit", Values: boolValues}},
		Material: func(idx []int) Material {
			m := solidMaterial
			if idx[0] == 1 {
				m.EmittedLight = 15
			}
			return m
		},
	}
}

func boolIdx(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func (p Position) step(dir string) Position {
	switch dir {
	case "north":
		return Position{p.X, p.Y, p.Z - 1}
	case "south":
		return Position{p.X, p.Y, p.Z + 1}
	case "east":
		return Position{p.X + 1, p.Y, p.Z}
	case "west":
		return Position{p.X - 1, p.Y, p.Z}
	default:
		return p
	}
}

func (p Position) up() Position { return Position{p.X, p.Y + 1, p.Z} }

func opposite(dir string) string {
	switch dir {
	case "north":
		return "south"
	case "south":
		return "north"
	case "east":
		return "west"
	case "west":
		return "east"
	default:
		return dir
	}
}

func isPerpendicular(a, b string) bool {
	horiz := func(d string) bool { return d == "north" || d == "south" }
	return horiz(a) != horiz(b)
}

// turnsRight reports whether facing `to` is a clockwise turn from `from`.
func turnsRight(from, to string) bool {
	order := map[string]int{"north": 0, "east": 1, "south": 2, "west": 3}
	return (order[from]+1)%4 == order[to]
}
