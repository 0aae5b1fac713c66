package engine

import (
	"github.com/anotherworld-go/engine/internal/raster"
	"github.com/anotherworld-go/engine/internal/resource"
)

// SetParts overrides the part table built by defaultParts, for a
// deployment that knows the genuine MEMLIST-derived resource ids for
// each part (see parts.go).
func (e *Engine) SetParts(parts map[uint16]resource.Part) { e.parts = parts }

// SetFont overrides the placeholder glyph table and string dictionary
// built by defaultFont, for a deployment that has recovered the
// genuine font bitmap and STRINGS resource (see font.go).
func (e *Engine) SetFont(font raster.Font) { e.font = font }
