package protocol

// Internal packet IDs. These are stable across every protocol version
// this core supports; each version's PacketRemap translates the
// version's wire ID to one of these before chunkio/world ever sees a
// packet ID, per spec §4.I "a stable internal ID space... insulates the
// rest of the system from per-version churn".
const (
	PktJoinGame int32 = iota + 1
	PktRespawn
	PktChunkData
	PktUnloadChunk
	PktBlockChange
	PktMultiBlockChange
	PktUpdateLight
	PktBlockAction
	PktBlockEntityData
)

// clientboundPlay builds a clientbound-play PacketRemap for one
// protocol version's wire ID table.
func clientboundPlay(version int32, wireToInternal map[int32]int32) *PacketRemap {
	return NewPacketRemap(StatePlay, Clientbound, wireToInternal)
}

// remapTables indexes the concrete per-version tables built below by
// protocol version number.
var remapTables = map[int32]*PacketRemap{
	47:  remap47,
	340: remap340,
	477: remapFlatEra,
	490: remapFlatEra,
	498: remapFlatEra,
	757: remap118,
	758: remap118,
}

// RemapFor returns the clientbound-play PacketRemap for protocolVersion,
// or nil if this core ships no bespoke table for it (in which case
// chunkio.DecodeColumn's version-range dispatch still covers chunk/light
// decode without packet-id translation, per SPEC_FULL §4.I.1).
func RemapFor(protocolVersion int32) *PacketRemap {
	return remapTables[protocolVersion]
}

// remap47 is Minecraft 1.8.9, the teacher's native protocol version.
var remap47 = clientboundPlay(47, map[int32]int32{
	0x01: PktJoinGame,
	0x07: PktRespawn,
	0x21: PktChunkData,
	0x23: PktBlockAction,
	0x22: PktMultiBlockChange,
	0x20: PktBlockChange,
	0x1D: PktUnloadChunk,
	0x35: PktBlockEntityData,
})

// remap340 is Minecraft 1.12.2.
var remap340 = clientboundPlay(340, map[int32]int32{
	0x23: PktJoinGame,
	0x38: PktRespawn,
	0x20: PktChunkData,
	0x0A: PktBlockChange,
	0x0F: PktMultiBlockChange,
	0x1F: PktUnloadChunk,
	0x09: PktBlockEntityData,
})

// remapFlatEra covers Minecraft 1.14.x (protocols 477-498), which use
// flat state IDs (spec §3 VanillaIDMap.flat).
var remapFlatEra = clientboundPlay(477, map[int32]int32{
	0x25: PktJoinGame,
	0x38: PktRespawn,
	0x22: PktChunkData,
	0x0B: PktBlockChange,
	0x10: PktMultiBlockChange,
	0x1F: PktUnloadChunk,
	0x24: PktUpdateLight,
	0x0A: PktBlockEntityData,
})

// remap118 covers Minecraft 1.18.x (protocols 757/758), negative-Y
// worlds and dimension-type-NBT-derived section counts (spec §4.D).
var remap118 = clientboundPlay(757, map[int32]int32{
	0x26: PktJoinGame,
	0x3D: PktRespawn,
	0x22: PktChunkData,
	0x0B: PktBlockChange,
	0x3F: PktMultiBlockChange,
	0x1F: PktUnloadChunk,
	0x23: PktUpdateLight,
	0x0A: PktBlockEntityData,
})
