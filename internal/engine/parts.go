package engine

import "github.com/anotherworld-go/engine/internal/resource"

// firstPartID is the real engine's part-id base (§4.5.1's LOAD
// routing threshold, 0x3E80 / 16000); parts run 0x3E80..0x3E89 for
// the ten scenes.
const firstPartID = 0x3E80
const partCount = 10

// defaultParts is a structurally-correct part table: ten parts, each
// naming the four resource ids load_part binds (§3.2). The real
// game's exact id assignments are lost media, not recoverable from
// this pack or original_source/, so the ids here are placeholders
// following the real per-part layout (palette, bytecode, cinematic
// polygons, optional sub-cinematic polygons); a deployment pointed at
// genuine MEMLIST.BIN data should override this table via SetParts
// once the real ids are known.
func defaultParts() map[uint16]resource.Part {
	parts := make(map[uint16]resource.Part, partCount)
	for i := 0; i < partCount; i++ {
		id := uint16(firstPartID + i)
		base := uint16(0x10 + i*4)
		parts[id] = resource.Part{
			ID:                int(id),
			Palettes:          base,
			Bytecode:          base + 1,
			CinematicPolys:    base + 2,
			SubCinematicPolys: base + 3,
		}
	}
	return parts
}
