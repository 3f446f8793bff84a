package block

import "github.com/voxelkiln/mccore/pkg/mcerr"

// AttrDef names one attribute and enumerates its value domain in
// declaration order; the domain index is what AttrSet stores.
type AttrDef struct {
	Name   string
	Values []string
}

// KindDef declares one block kind: its attribute schema and the pure
// metadata/ID functions spec §4.A requires. idx passed to the function
// fields is the per-attribute value-index slice, in Attrs declaration
// order. A nil function field falls back to the generic policy
// documented on each field.
type KindDef struct {
	Name  string
	Modid string // "" for vanilla kinds
	Attrs []AttrDef

	// HierData computes the pre-flat (id<<4)|meta sub-id, or (_, false)
	// if this attribute combination has no canonical hierarchical slot.
	// nil => generic mixed-radix index, but only if it fits in 0..16.
	HierData func(idx []int) (int, bool)

	// FlatOffset computes the dense flat-table offset relative to this
	// kind's base. nil => generic mixed-radix index over all attributes.
	FlatOffset func(idx []int) (int, bool)

	// UpdateState recomputes attribute values from world neighborhood.
	// nil => identity (no neighbor-sensitive attributes).
	UpdateState func(b Block, w WorldView, pos Position) Block

	Material func(idx []int) Material
	ModelKey func(idx []int) string
	ModelVariant func(idx []int) string
	Tint     func(idx []int) Tint
	Collision func(idx []int) []AABB
}

func radices(attrs []AttrDef) []int {
	r := make([]int, len(attrs))
	for i, a := range attrs {
		r[i] = len(a.Values)
	}
	return r
}

// mixedRadixIndex computes the position of idx within the cross
// product of dimensions with sizes radix, first dimension varying
// slowest — matching spec §4.A's "first attribute varies slowest".
func mixedRadixIndex(idx, radix []int) int {
	total := 0
	for i := 0; i < len(idx); i++ {
		total = total*radix[i] + idx[i]
	}
	return total
}

func totalCombos(radix []int) int {
	total := 1
	for _, r := range radix {
		total *= r
	}
	return total
}

func (k *KindDef) hierData(idx []int) (int, bool) {
	if k.HierData != nil {
		return k.HierData(idx)
	}
	r := radices(k.Attrs)
	if totalCombos(r) > 16 {
		return 0, false
	}
	return mixedRadixIndex(idx, r), true
}

func (k *KindDef) flatOffset(idx []int) (int, bool) {
	if k.FlatOffset != nil {
		return k.FlatOffset(idx)
	}
	return mixedRadixIndex(idx, radices(k.Attrs)), true
}

// Registry is the VanillaIDMap from spec §3: constructed once at
// startup from a Catalog, exposing the dual (hierarchical, flat)
// lookup plus the metadata functions.
type Registry struct {
	catalog []KindDef

	flat []Block // index: post-1.13 state id
	hier []Block // index: (type<<4)|meta

	modded map[string][16]Block

	airBlock Block

	// blockToFlat is the inverse of flat, letting InternalID resolve a
	// Block back to its storage ID without a linear scan. The flat
	// table doubles as the internal state-ID space bitstore.BlockStorage
	// persists. Every concrete block claims a flat slot except the two
	// missing-slot padding kinds, whose FlatOffset declines; InternalID
	// stores those as air.
	blockToFlat map[Block]int32
}

const maxHierSlots = 1 << 20 // generous bound for a catalog-sized registry

// NewRegistry builds a Registry from catalog, applying the ID
// assignment algorithm of spec §4.A. Panics (a registry-class error)
// on any ID collision, per spec's "construction fails loudly".
func NewRegistry(catalog []KindDef) *Registry {
	reg := &Registry{
		catalog: catalog,
		modded:  make(map[string][16]Block),
	}

	hierSet := make(map[int]Block)
	flatSet := make(map[int]Block)

	hierBlockID := -1
	prevKindForHier := KindID(-1)
	flatBase := 0

	for kindIdx := range catalog {
		kind := &catalog[kindIdx]
		kindID := KindID(kindIdx)
		r := radices(kind.Attrs)
		n := len(kind.Attrs)

		maxFlatOffset := -1
		combos := totalCombos(r)
		if n == 0 {
			combos = 1
		}

		for c := 0; c < combos; c++ {
			idx := unrankMixedRadix(c, r)
			b := Block{Kind: kindID}
			for i, v := range idx {
				b.Attrs[i] = uint8(v)
			}

			if kind.Modid != "" {
				if d, ok := kind.hierData(idx); ok {
					arr, seen := reg.modded[kind.Modid]
					if !seen {
						for i := range arr {
							arr[i] = Missing
						}
					}
					if !arr[d].IsMissing() {
						panic(mcerr.Newf(mcerr.Registry, "modded collision: %s[%d]", kind.Modid, d))
					}
					arr[d] = b
					reg.modded[kind.Modid] = arr
				}
			} else if d, ok := kind.hierData(idx); ok {
				if kindID != prevKindForHier {
					hierBlockID++
					prevKindForHier = kindID
				}
				slot := (hierBlockID << 4) | d
				if _, dup := hierSet[slot]; dup {
					panic(mcerr.Newf(mcerr.Registry, "hierarchical id collision at slot %d (kind %s)", slot, kind.Name))
				}
				hierSet[slot] = b
			}

			if o, ok := kind.flatOffset(idx); ok {
				slot := flatBase + o
				if _, dup := flatSet[slot]; dup {
					panic(mcerr.Newf(mcerr.Registry, "flat id collision at slot %d (kind %s)", slot, kind.Name))
				}
				flatSet[slot] = b
				if o > maxFlatOffset {
					maxFlatOffset = o
				}
			}
		}

		if maxFlatOffset >= 0 {
			flatBase += maxFlatOffset + 1
		}
	}

	maxFlat := -1
	for slot := range flatSet {
		if slot > maxFlat {
			maxFlat = slot
		}
	}
	maxHier := -1
	for slot := range hierSet {
		if slot > maxHier {
			maxHier = slot
		}
	}

	reg.flat = make([]Block, maxFlat+1)
	for i := range reg.flat {
		reg.flat[i] = Missing
	}
	reg.blockToFlat = make(map[Block]int32, len(flatSet))
	for slot, b := range flatSet {
		reg.flat[slot] = b
		reg.blockToFlat[b] = int32(slot)
	}

	reg.hier = make([]Block, maxHier+1)
	for i := range reg.hier {
		reg.hier[i] = Missing
	}
	for slot, b := range hierSet {
		reg.hier[slot] = b
	}

	if len(catalog) > 0 && catalog[0].Name == "air" {
		reg.airBlock = Block{Kind: 0}
	}

	return reg
}

// unrankMixedRadix inverts mixedRadixIndex: recovers the per-dimension
// indices for cross-product position c under radix.
func unrankMixedRadix(c int, radix []int) []int {
	n := len(radix)
	idx := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		idx[i] = c % radix[i]
		c /= radix[i]
	}
	return idx
}

// AirBlock returns the registry's Air variant.
func (r *Registry) AirBlock() Block { return r.airBlock }

// InternalID returns b's storage ID in the registry's internal state
// space (the flat table), for use as the bitstore.BlockStorage entry
// value. Unknown blocks resolve to Air's ID rather than panicking,
// since storage must always hold a valid entry.
func (r *Registry) InternalID(b Block) int32 {
	if id, ok := r.blockToFlat[b]; ok {
		return id
	}
	return r.blockToFlat[r.airBlock]
}

// FromInternalID is the inverse of InternalID, used when reading a
// section's BlockStorage back out as Block values.
func (r *Registry) FromInternalID(id int32) Block {
	if id >= 0 && int(id) < len(r.flat) {
		return r.flat[id]
	}
	return r.airBlock
}

// ByVanillaID implements spec §4.A's dual-era lookup: flat table for
// protocolVersion >= FlatEraProtocol, otherwise the hierarchical table
// falling back to the modded map via moddedIDs (type -> mod namespace).
func (r *Registry) ByVanillaID(id int32, protocolVersion int32, moddedIDs map[int32]string) Block {
	if protocolVersion >= FlatEraProtocol {
		if id >= 0 && int(id) < len(r.flat) {
			return r.flat[id]
		}
		return Missing
	}

	if id >= 0 && int(id) < len(r.hier) {
		if b := r.hier[id]; !b.IsMissing() {
			return b
		}
	}

	typ := id >> 4
	meta := id & 15
	modid, ok := moddedIDs[typ]
	if !ok {
		return Missing
	}
	arr, ok := r.modded[modid]
	if !ok {
		return Missing
	}
	return arr[meta]
}

// FlatEraProtocol is re-exported from pkg/protocol's constant by value
// to avoid pkg/block depending on pkg/protocol for one integer.
const FlatEraProtocol = 404

// Kind returns the KindDef backing b.Kind.
func (r *Registry) Kind(b Block) *KindDef {
	return &r.catalog[b.Kind]
}

// AttrValue returns the string value of the named attribute on b, or
// ErrUnknownAttr if the kind does not carry that attribute.
func (r *Registry) AttrValue(b Block, name string) (string, error) {
	kind := r.Kind(b)
	for i, a := range kind.Attrs {
		if a.Name == name {
			return a.Values[b.Attrs[i]], nil
		}
	}
	return "", ErrUnknownAttr
}

// WithAttr returns a copy of b with the named attribute set to value,
// or ErrUnknownAttr if name/value is not in the kind's schema.
func (r *Registry) WithAttr(b Block, name, value string) (Block, error) {
	kind := r.Kind(b)
	for i, a := range kind.Attrs {
		if a.Name != name {
			continue
		}
		for vi, v := range a.Values {
			if v == value {
				out := b
				out.Attrs[i] = uint8(vi)
				return out, nil
			}
		}
		return b, mcerr.Newf(mcerr.Registry, "unknown value %q for attribute %q", value, name)
	}
	return b, ErrUnknownAttr
}

// Material returns b's render/physics metadata.
func (r *Registry) Material(b Block) Material {
	kind := r.Kind(b)
	if kind.Material != nil {
		return kind.Material(b.attrIndices(len(kind.Attrs)))
	}
	if b.Kind == r.airBlock.Kind {
		return airMaterial
	}
	return solidMaterial
}

// CollisionBoxes returns b's collision geometry.
func (r *Registry) CollisionBoxes(b Block) []AABB {
	kind := r.Kind(b)
	if kind.Collision != nil {
		return kind.Collision(b.attrIndices(len(kind.Attrs)))
	}
	if r.Material(b).Collidable {
		return []AABB{FullCube}
	}
	return nil
}

// Tint returns b's tint selection.
func (r *Registry) Tint(b Block) Tint {
	kind := r.Kind(b)
	if kind.Tint != nil {
		return kind.Tint(b.attrIndices(len(kind.Attrs)))
	}
	return Tint{Kind: TintDefault}
}

// ModelKey and ModelVariant return the model lookup pair for b.
func (r *Registry) ModelKey(b Block) string {
	kind := r.Kind(b)
	if kind.ModelKey != nil {
		return kind.ModelKey(b.attrIndices(len(kind.Attrs)))
	}
	return kind.Name
}

func (r *Registry) ModelVariant(b Block) string {
	kind := r.Kind(b)
	if kind.ModelVariant != nil {
		return kind.ModelVariant(b.attrIndices(len(kind.Attrs)))
	}
	return "normal"
}

// UpdateState recomputes b's neighbor-sensitive attributes at pos
// using w, per spec §4.A's per-kind update_state rules. Identity if
// the kind declares none.
func (r *Registry) UpdateState(b Block, w WorldView, pos Position) Block {
	kind := r.Kind(b)
	if kind.UpdateState == nil {
		return b
	}
	return kind.UpdateState(b, w, pos)
}
