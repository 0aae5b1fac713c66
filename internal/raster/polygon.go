// Package raster decodes Another World's polygon segments and fills
// them into a Drawer (normally a *video.Framebuffer).
package raster

import (
	"fmt"

	"github.com/anotherworld-go/engine/internal/logging"
)

const (
	maxVertices  = 50
	maxDepth     = 10
	defaultZoom  = 0x40
	inheritColor = 0xFF
)

// Point is a pre-scaled polygon-local coordinate.
type Point struct{ X, Y int16 }

// Polygon is one flat, already zoom-scaled vertex list.
type Polygon struct {
	BBW, BBH uint8
	Points   []Point
}

// scale applies zoom/64 (Q6) to a raw coordinate byte, matching
// §4.4.1's "each coordinate is scaled by zoom/64 before use".
func scale(v uint8, zoom uint16) int16 {
	return int16((uint32(v) * uint32(zoom)) / 64)
}

// ParsePolygon decodes the flat polygon record at offset o in
// segment: bbw:u8, bbh:u8, n:u8, (x:u8, y:u8) x n, with n even and
// clamped to maxVertices. color is the value the caller should use
// to fill the polygon (0xFF means "inherit the caller's color",
// produced by the 0xFF-leading form; any other leading byte embeds
// its own color in the low 6 bits).
func ParsePolygon(segment []byte, offset int, zoom uint16) (Polygon, uint8, error) {
	if offset < 0 || offset >= len(segment) {
		return Polygon{}, 0, fmt.Errorf("raster: polygon offset %d out of range (len %d)", offset, len(segment))
	}

	lead := segment[offset]
	color := uint8(inheritColor)
	body := offset + 1
	if lead != 0xFF && lead != 0x02 {
		color = lead & 0x3F
	}

	poly, err := parseFlat(segment, body, zoom)
	return poly, color, err
}

func parseFlat(segment []byte, offset int, zoom uint16) (Polygon, error) {
	if offset+3 > len(segment) {
		return Polygon{}, fmt.Errorf("raster: truncated polygon header at %d", offset)
	}
	bbwRaw, bbhRaw, n := segment[offset], segment[offset+1], int(segment[offset+2])
	if n%2 != 0 {
		return Polygon{}, fmt.Errorf("raster: odd vertex count %d", n)
	}
	if n > maxVertices {
		logging.For(logging.Video).Warnf("raster: polygon vertex count %d clamped to %d", n, maxVertices)
		n = maxVertices
	}

	need := offset + 3 + n*2
	if need > len(segment) {
		return Polygon{}, fmt.Errorf("raster: truncated vertex list at %d", offset)
	}

	pts := make([]Point, n)
	cur := offset + 3
	for i := 0; i < n; i++ {
		pts[i] = Point{X: scale(segment[cur], zoom), Y: scale(segment[cur+1], zoom)}
		cur += 2
	}

	return Polygon{
		BBW:    uint8(scale(bbwRaw, zoom)),
		BBH:    uint8(scale(bbhRaw, zoom)),
		Points: pts,
	}, nil
}

// DrawShape recurses through the hierarchical form (leading byte
// 0x02) or draws a single polygon, calling into fb via Drawer.
// Recursion depth starts at 0 for the shape at offset, and a child
// nested deeper than maxDepth is rejected with an error.
func DrawShape(fb Drawer, segment []byte, offset int, pos Point, zoom uint16, color uint8) error {
	return drawShapeDepth(fb, segment, offset, pos, zoom, color, 0)
}

func drawShapeDepth(fb Drawer, segment []byte, offset int, pos Point, zoom uint16, color uint8, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("raster: shape recursion exceeded depth %d", maxDepth)
	}
	if offset < 0 || offset >= len(segment) {
		return fmt.Errorf("raster: shape offset %d out of range (len %d)", offset, len(segment))
	}

	if segment[offset] == 0x02 {
		return drawHierarchy(fb, segment, offset+1, pos, zoom, color, depth)
	}

	poly, embeddedColor, err := ParsePolygon(segment, offset, zoom)
	if err != nil {
		return err
	}
	if embeddedColor != inheritColor {
		color = embeddedColor
	}
	fillPolygon(fb, poly, pos, color)
	return nil
}

// drawHierarchy reads parent_x_offset, parent_y_offset,
// children_minus_one, then each (child_offset:u16 BE, child_x:u8,
// child_y:u8) entry, recursing into drawShapeDepth for each child.
// The parent offsets shift the local origin for every child (the
// zoom-scaled parent offset is subtracted from pos); see DESIGN.md
// for this resolved ambiguity.
func drawHierarchy(fb Drawer, segment []byte, offset int, pos Point, zoom uint16, color uint8, depth int) error {
	if offset+3 > len(segment) {
		return fmt.Errorf("raster: truncated hierarchy header at %d", offset)
	}
	parentX, parentY, childCount := segment[offset], segment[offset+1], int(segment[offset+2])+1
	origin := Point{
		X: pos.X - scale(parentX, zoom),
		Y: pos.Y - scale(parentY, zoom),
	}

	cur := offset + 3
	for c := 0; c < childCount; c++ {
		if cur+4 > len(segment) {
			return fmt.Errorf("raster: truncated hierarchy child %d at %d", c, cur)
		}
		childOffset := uint16(segment[cur])<<8 | uint16(segment[cur+1])
		childX, childY := segment[cur+2], segment[cur+3]
		cur += 4

		childColor := color
		if childOffset&0x8000 != 0 {
			if cur+2 > len(segment) {
				return fmt.Errorf("raster: truncated hierarchy child color at %d", cur)
			}
			colorWord := uint16(segment[cur])<<8 | uint16(segment[cur+1])
			cur += 2
			childColor = uint8(colorWord>>8) & 0x7F
		}

		childPos := Point{
			X: origin.X + scale(childX, zoom),
			Y: origin.Y + scale(childY, zoom),
		}
		childSegOffset := int(childOffset&0x7FFF) * 2
		if err := drawShapeDepth(fb, segment, childSegOffset, childPos, zoom, childColor, depth+1); err != nil {
			return err
		}
	}
	return nil
}
