package engine

import "github.com/anotherworld-go/engine/internal/raster"

// defaultFont is the zero-valued 8x8 glyph table and empty id->string
// dictionary draw_string starts with. The original engine's font
// bitmap and per-language string table aren't present in this pack or
// original_source/, so a real deployment supplies one via SetFont
// once the genuine STRINGS resource format and glyph bitmap are
// known; with the zero value, PRINT opcodes resolve to "unknown
// string id" errors rather than silently drawing garbage.
func defaultFont() raster.Font {
	return raster.Font{Strings: map[uint16]string{}}
}
