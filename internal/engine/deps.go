package engine

import (
	"github.com/anotherworld-go/engine/internal/music"
	"github.com/anotherworld-go/engine/internal/raster"
	"github.com/anotherworld-go/engine/internal/resource"
)

// The methods below implement vm.Deps: Engine is the single wiring
// point §9 calls out as the opcode dispatch table's collaborator,
// forwarding each VM opcode's side effect to resources/fb/raster/mixer/music.

func (e *Engine) RequestLoad(resID uint16) {
	if err := e.resources.RequestLoad(resID); err != nil {
		e.log.Warnf("request_load %d: %v", resID, err)
	}
}

func (e *Engine) RequestPart(partID uint16) { e.requestedPart = int(partID) }

func (e *Engine) SelectPage(selector uint8) { e.fb.SelectPage(selector) }

func (e *Engine) FillPage(selector uint8, color uint8) { e.fb.FillPage(selector, color) }

func (e *Engine) CopyPage(dst, src uint8, vscroll int) { e.fb.CopyPage(dst, src, vscroll) }

func (e *Engine) SwapPages() { e.fb.SwapPages() }

func (e *Engine) ApplyPalette(index int) { e.fb.ApplyPalette(index) }

// DrawPolygon resolves segment (vm.segmentCinematic/segmentSubCinematic,
// 0/1) to the loaded polygon buffer and draws through raster.DrawShape.
func (e *Engine) DrawPolygon(segment int, offset int, x, y int16, zoom uint16, color uint8) error {
	buf := e.cinematic
	if segment == 1 {
		buf = e.subCinematic
	}
	pos := raster.Point{X: x, Y: y}
	return raster.DrawShape(e.fb, buf, offset, pos, zoom, color)
}

// DrawString warns and no-ops on an unresolved string id rather than
// propagating raster.DrawString's error into the VM's fatal
// InvalidInstructionError path: an unmapped string id is a
// resource-lookup failure, the same class PlaySound/PlayMusic recover
// from below, not a VM fault.
func (e *Engine) DrawString(strID uint16, x, y int, color uint8) error {
	if err := raster.DrawString(e.fb, e.font, strID, x, y, color); err != nil {
		e.log.Warnf("draw_string %d: %v", strID, err)
	}
	return nil
}

func (e *Engine) PlaySound(resID uint16, freq, vol, channel uint8) {
	raw, err := e.resources.Data(resID)
	if err != nil {
		e.log.Warnf("sound %d: %v", resID, err)
		return
	}
	res, err := resource.DecodeSound(raw)
	if err != nil {
		e.log.Warnf("sound %d: %v", resID, err)
		return
	}
	e.mixer.Play(res, freq, vol, channel)
}

func (e *Engine) PlayMusic(resID uint16, delay uint16, pos uint8) {
	raw, err := e.resources.Data(resID)
	if err != nil {
		e.log.Warnf("music %d: %v", resID, err)
		return
	}
	track := music.DecodeTrack(raw)
	e.music.Play(track, delay, pos)
}
