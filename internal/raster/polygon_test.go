package raster

import "testing"

func TestParsePolygon_FlatFormDefaultZoom(t *testing.T) {
	seg := []byte{0xFF, 4, 4, 4, 0, 0, 4, 0, 4, 4, 0, 4}
	poly, color, err := ParsePolygon(seg, 0, defaultZoom)
	if err != nil {
		t.Fatalf("ParsePolygon: %v", err)
	}
	if color != inheritColor {
		t.Fatalf("color = %#x, want inherit (0xFF)", color)
	}
	if poly.BBW != 4 || poly.BBH != 4 {
		t.Fatalf("bbox = (%d,%d), want (4,4)", poly.BBW, poly.BBH)
	}
	want := []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	if len(poly.Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(poly.Points), len(want))
	}
	for i, p := range want {
		if poly.Points[i] != p {
			t.Fatalf("point %d = %v, want %v", i, poly.Points[i], p)
		}
	}
}

func TestParsePolygon_EmbeddedColor(t *testing.T) {
	seg := []byte{0x25, 2, 2, 2, 0, 0, 2, 2}
	_, color, err := ParsePolygon(seg, 0, defaultZoom)
	if err != nil {
		t.Fatalf("ParsePolygon: %v", err)
	}
	if color != 0x25&0x3F {
		t.Fatalf("color = %#x, want %#x", color, 0x25&0x3F)
	}
}

func TestParsePolygon_ZoomScalesCoordinates(t *testing.T) {
	seg := []byte{0xFF, 8, 8, 2, 8, 8, 0, 0}
	poly, _, err := ParsePolygon(seg, 0, 32) // half zoom
	if err != nil {
		t.Fatalf("ParsePolygon: %v", err)
	}
	if poly.BBW != 4 || poly.BBH != 4 {
		t.Fatalf("scaled bbox = (%d,%d), want (4,4)", poly.BBW, poly.BBH)
	}
	if poly.Points[0].X != 4 || poly.Points[0].Y != 4 {
		t.Fatalf("scaled point = %v, want (4,4)", poly.Points[0])
	}
}

func TestParsePolygon_RejectsOddVertexCount(t *testing.T) {
	seg := []byte{0xFF, 4, 4, 3, 0, 0, 1, 1, 2, 2}
	if _, _, err := ParsePolygon(seg, 0, defaultZoom); err == nil {
		t.Fatalf("expected error for odd vertex count")
	}
}

func TestDrawShape_HierarchyRecursesIntoChild(t *testing.T) {
	// Header (offset 0): 0x02 marker, parent_x=0, parent_y=0,
	// children_minus_one=0 (1 child). Child entry (offset 4..7):
	// child_offset=4 words (-> byte offset 8, no color flag),
	// child_x=0, child_y=0. Child polygon data starts at byte 8: the
	// same right-triangle-shaped quad used by the fill tests, with no
	// embedded color (inherits the parent's).
	seg := []byte{
		0x02, 0, 0, 0, // marker, parent_x, parent_y, children_minus_one
		0, 4, 0, 0, // child_offset=4 (BE u16), child_x=0, child_y=0
		0xFF, 4, 4, 4, 0, 0, 4, 0, 4, 4, 0, 0, // child polygon at byte offset 8
	}

	d := newFakeDrawer()
	if err := DrawShape(d, seg, 0, Point{X: 50, Y: 50}, defaultZoom, 5); err != nil {
		t.Fatalf("DrawShape: %v", err)
	}
	if d.countColor(0, 5) == 0 {
		t.Fatalf("hierarchy did not draw the child polygon with the inherited color")
	}
}
