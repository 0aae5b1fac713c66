package raster

// Drawer is the narrow Framebuffer surface the rasterizer needs,
// kept as an interface so raster has no import cycle on video and so
// tests can fake it.
type Drawer interface {
	FillScanline(xLeft, xRight, y int, color uint8)
	PixelAt(page int, x, y int) uint8
	WorkPage() int
	BlitPage(dstPage int, bitmap []byte)
}

// reciprocal[k] = 0x4000/k, used to turn a vertex-to-vertex delta
// into a Q16.16-ish per-scanline step without a division per row.
var reciprocal [1024]uint32

func init() {
	reciprocal[0] = 0x4000
	for k := 1; k < len(reciprocal); k++ {
		reciprocal[k] = 0x4000 / uint32(k)
	}
}

const (
	sourcePage = 0 // draw_line "copy" mode's source, per §4.4.3
)

// fillPolygon runs the dual-edge Q16.16 scanline walk described in
// §4.4.2. pos is the polygon's on-screen anchor (already zoom-scaled
// by the caller, same space as poly.Points).
func fillPolygon(fb Drawer, poly Polygon, pos Point, color uint8) {
	n := len(poly.Points)
	if n == 0 {
		return
	}

	if n == 4 && (poly.BBW <= 1 || poly.BBH <= 1) {
		drawLine(fb, int(pos.X), int(pos.X), int(pos.Y), color)
		return
	}

	x0 := int(pos.X) - int(poly.BBW)/2
	y0 := int(pos.Y) - int(poly.BBH)/2
	if x0+int(poly.BBW) < 0 || x0 > 319 || y0+int(poly.BBH) < 0 || y0 > 199 {
		return
	}

	i, j := 0, n-1
	cpt1x := int32(x0+int(poly.Points[i].X)) << 16
	cpt2x := int32(x0+int(poly.Points[j].X)) << 16
	y := y0
	prev1, prev2 := poly.Points[i], poly.Points[j]
	i++
	j--

	for i <= j {
		pt1, pt2 := poly.Points[i], poly.Points[j]

		step1, _ := stepFor(prev1, pt1)
		step2, h := stepFor(prev2, pt2) // h (the scanline count) comes from the
		// *second* edge's delta only, matching the real engine's reused
		// out-param: a zero-height segment on either edge still has its
		// step folded in below, it just contributes no drawn rows.

		prev1, prev2 = pt1, pt2
		i++
		j--

		cpt1x |= 0x8000
		cpt2x |= 0x7FFF

		if h == 0 {
			cpt1x += step1
			cpt2x += step2
			continue
		}
		for ; h > 0; h-- {
			drawLine(fb, int(cpt1x>>16), int(cpt2x>>16), y, color)
			cpt1x += step1
			cpt2x += step2
			y++
		}
	}
}

// stepFor computes the per-scanline x delta between two successive
// vertices of one edge walk, scaled the same way as §4.4.2 step 1,
// along with the edge's y delta.
func stepFor(a, b Point) (step int32, dy int) {
	dy = int(b.Y) - int(a.Y)
	if dy == 0 {
		return 0, 0
	}
	dx := int32(b.X) - int32(a.X)
	idx := dy
	if idx < 0 {
		idx = -idx
	}
	if idx >= len(reciprocal) {
		idx = len(reciprocal) - 1
	}
	step = dx * int32(reciprocal[idx]) * 4
	if dy < 0 {
		step = -step
	}
	return step, dy
}

// drawLine dispatches on color into the three §4.4.3 modes and
// clips to the page bounds; it is also used directly by DrawString's
// glyph cells (DrawBitmap goes through Drawer.BlitPage instead).
func drawLine(fb Drawer, xLeft, xRight, y int, color uint8) {
	if y < 0 || y > 199 {
		return
	}
	if xLeft > xRight {
		xLeft, xRight = xRight, xLeft
	}
	if xLeft < 0 {
		xLeft = 0
	}
	if xRight > 319 {
		xRight = 319
	}
	if xLeft > xRight {
		return
	}

	switch {
	case color < 0x10:
		fb.FillScanline(xLeft, xRight, y, color)
	case color == 0x10:
		drawBlendRun(fb, xLeft, xRight, y)
	default:
		drawCopyRun(fb, xLeft, xRight, y)
	}
}

// drawBlendRun ORs 0x08 into each destination nibble in the run,
// preserving the other nibble (the transparency-blend mode).
func drawBlendRun(fb Drawer, xLeft, xRight, y int) {
	page := fb.WorkPage()
	for x := xLeft; x <= xRight; x++ {
		cur := fb.PixelAt(page, x, y)
		fb.FillScanline(x, x, y, cur|0x08)
	}
}

// drawCopyRun copies each pixel from the source page (page 0) into
// the work page, one nibble at a time, for the "copy" color mode.
func drawCopyRun(fb Drawer, xLeft, xRight, y int) {
	for x := xLeft; x <= xRight; x++ {
		src := fb.PixelAt(sourcePage, x, y)
		fb.FillScanline(x, x, y, src)
	}
}
