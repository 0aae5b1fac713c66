package vm

// Polygon segment identifiers passed to Deps.DrawPolygon, resolving
// §6.4's "two byte arrays" to a small index the engine maps onto its
// cinematic/sub-cinematic buffers.
const (
	segmentCinematic    = 0
	segmentSubCinematic = 1
)

// opPoly1 decodes the 0x40..0x7F family: offset, x, y as plain bytes,
// a fixed zoom, always targeting the cinematic segment with the
// caller-inherited color. The two adjustment bits spec.md's prose
// mentions (op&0x20, op&0x10) describe byte-width variants of the
// original engine's decode that aren't pinned down precisely enough
// to reproduce without a reference trace; this repo commits to the
// simplest self-consistent reading — both bits are part of the opcode
// byte already consumed by dispatch's range test and carry no further
// decode effect here. See DESIGN.md.
func (v *VM) opPoly1(th *Thread, op uint8) error {
	offset := int(v.fetch16(th)) << 1
	x := int16(v.fetch8(th))
	y := int16(v.fetch8(th))
	const zoom = 0x40
	return v.deps.DrawPolygon(segmentCinematic, offset, x, y, zoom, inheritColor)
}

// opPoly2 decodes the 0x80..0xFF family: offset, x, y as plain bytes,
// then a zoom source chosen by op&0x03 (the four-case table resolved
// in DESIGN.md), then a target segment chosen by op&0x40. Color
// always defaults to 0xFF (inherit the polygon's own embedded color).
func (v *VM) opPoly2(th *Thread, op uint8) error {
	offset := int(v.fetch16(th)) << 1
	x := int16(v.fetch8(th))
	y := int16(v.fetch8(th))

	var zoom uint16
	switch op & 0x03 {
	case 0x00:
		zoom = uint16(v.fetch8(th))
	case 0x01:
		zoom = v.regs[v.fetch8(th)]
	case 0x02:
		zoom = 0x40
	case 0x03:
		zoom = v.fetch16(th)
	}

	segment := segmentCinematic
	if op&0x40 != 0 {
		segment = segmentSubCinematic
	}

	return v.deps.DrawPolygon(segment, offset, x, y, zoom, inheritColor)
}

const inheritColor = 0xFF
