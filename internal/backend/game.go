package backend

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/anotherworld-go/engine/internal/engine"
	"github.com/anotherworld-go/engine/internal/logging"
	"github.com/anotherworld-go/engine/internal/video"
)

// game is the ebiten.Game adapter: its Update/Draw/Layout run on
// ebiten's own goroutine, matching the teacher's App. It exchanges
// mutex-guarded snapshots with Backend's engine.Backend methods, which
// run on Engine.Run's separate goroutine (§2's "Process shape").
type game struct {
	mu sync.Mutex

	input engine.InputState
	quit  chan struct{}

	pendingPage *video.Page
	pendingPal  *video.Palette
	tex         *ebiten.Image

	log *logrus.Entry
}

func newGame() *game {
	return &game{log: logging.For(logging.Backend), quit: make(chan struct{})}
}

// Update polls the keyboard each ebiten tick, and signals a clean
// shutdown once Backend.Run's context is cancelled by returning
// ebiten.Termination, which RunGame turns into a nil return instead of
// a reported error.
func (g *game) Update() error {
	select {
	case <-g.quit:
		return ebiten.Termination
	default:
	}
	g.mu.Lock()
	g.input = pollKeyboard()
	g.mu.Unlock()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	page, pal := g.pendingPage, g.pendingPal
	g.mu.Unlock()
	if page == nil || pal == nil {
		return
	}

	if g.tex == nil {
		g.tex = ebiten.NewImage(video.PageW, video.PageH)
	}
	g.tex.WritePixels(rgbaFromPage(page, pal))
	screen.DrawImage(g.tex, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return video.PageW, video.PageH
}

func (g *game) snapshotInput() engine.InputState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.input
}

func (g *game) setPresented(page *video.Page, pal *video.Palette) {
	g.mu.Lock()
	firstFrame := g.pendingPage == nil
	g.pendingPage, g.pendingPal = page, pal
	g.mu.Unlock()
	if firstFrame {
		g.log.Debug("first frame presented")
	}
}

// rgbaFromPage expands a 320x200 4bpp paletted page into the RGBA byte
// stream ebiten.Image.WritePixels expects, the Go rendering of the
// original's palette-lookup present step (§3.4).
func rgbaFromPage(page *video.Page, pal *video.Palette) []byte {
	out := make([]byte, video.PageW*video.PageH*4)
	for y := 0; y < video.PageH; y++ {
		for x := 0; x < video.PageW; x++ {
			i := y*video.PageW + x
			b := page[i/2]
			var nibble uint8
			if i%2 == 0 {
				nibble = b >> 4
			} else {
				nibble = b & 0x0F
			}
			c := pal[nibble]
			o := i * 4
			out[o], out[o+1], out[o+2], out[o+3] = c.R, c.G, c.B, 0xFF
		}
	}
	return out
}
