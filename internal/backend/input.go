package backend

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/anotherworld-go/engine/internal/engine"
)

// D-pad bitmask bits for HERO_POS_MASK/HERO_ACTION_POS_MASK (§6.5). No
// byte-level dump of the original mask convention survives in this
// pack or original_source/; this bit order (right/left/down/up/action)
// is a documented reconstruction, not a literal transcription.
const (
	maskRight  = 1 << 0
	maskLeft   = 1 << 1
	maskDown   = 1 << 2
	maskUp     = 1 << 3
	maskAction = 1 << 4
)

var actionKeys = []ebiten.Key{ebiten.KeySpace, ebiten.KeyEnter, ebiten.KeyShiftLeft, ebiten.KeyShiftRight}
var quitKeys = []ebiten.Key{ebiten.KeyEscape}
var pauseKeys = []ebiten.Key{ebiten.KeyP}

// pollKeyboard reads ebiten's key state into an InputState; it must be
// called from the ebiten-owned goroutine (inside Update), matching
// how the teacher's App.Update polls inpututil directly rather than
// from a separate goroutine.
func pollKeyboard() engine.InputState {
	var in engine.InputState

	left := ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA)
	right := ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD)
	up := ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW)
	down := ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS)

	switch {
	case left && !right:
		in.Horz, in.Mask = -1, in.Mask|maskLeft
	case right && !left:
		in.Horz, in.Mask = 1, in.Mask|maskRight
	}
	switch {
	case up && !down:
		in.Vert, in.Mask = -1, in.Mask|maskUp
	case down && !up:
		in.Vert, in.Mask = 1, in.Mask|maskDown
	}

	for _, k := range actionKeys {
		if ebiten.IsKeyPressed(k) {
			in.Button = true
			in.Mask |= maskAction
			break
		}
	}
	for _, k := range quitKeys {
		if inpututil.IsKeyJustPressed(k) {
			in.Quit = true
		}
	}
	for _, k := range pauseKeys {
		if inpututil.IsKeyJustPressed(k) {
			in.Pause = true
		}
	}

	in.Key = lastTypedKey()
	return in
}

// lastTypedKey resolves one ASCII-ish byte for VAR_INPUT_KEY (§6.5)
// from the keys ebiten reports as just pressed this tick, preferring
// digits and letters the way the original engine's keyboard-code input
// screens expect.
func lastTypedKey() uint8 {
	for k := ebiten.Key0; k <= ebiten.Key9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			return '0' + uint8(k-ebiten.Key0)
		}
	}
	for k := ebiten.KeyA; k <= ebiten.KeyZ; k++ {
		if inpututil.IsKeyJustPressed(k) {
			return 'A' + uint8(k-ebiten.KeyA)
		}
	}
	return 0
}
