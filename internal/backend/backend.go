// Package backend implements the §6.6 Backend interface on top of
// ebiten: a window presenting the paletted framebuffer, keyboard
// input translated into hero-position registers, and an audio player
// pulling stereo frames from the mixer, the same shape the teacher's
// internal/ui package gives the Game Boy's PPU/APU.
package backend

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anotherworld-go/engine/internal/engine"
	"github.com/anotherworld-go/engine/internal/logging"
	"github.com/anotherworld-go/engine/internal/video"
)

// Backend is the ebiten-backed implementation of engine.Backend. Its
// methods are called from Engine.Run's goroutine; its embedded game
// is driven by ebiten's own goroutine from inside Run (§2's "Process
// shape").
type Backend struct {
	cfg   Config
	game  *game
	start time.Time

	audioCtx    *audio.Context
	audioPlayer *audio.Player
	log         *logrus.Entry
}

// New builds a Backend and sets the window title/size; it does not
// open a window or start ebiten's loop until Run is called.
func New(cfg Config) *Backend {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(video.PageW*cfg.Scale, video.PageH*cfg.Scale)
	return &Backend{
		cfg:   cfg,
		game:  newGame(),
		start: time.Now(),
		log:   logging.For(logging.Backend),
	}
}

func (b *Backend) NowMs() uint32 {
	return uint32(time.Since(b.start).Milliseconds())
}

func (b *Backend) SleepMs(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }

func (b *Backend) PollInput() engine.InputState { return b.game.snapshotInput() }

func (b *Backend) Present(pageIndex int, palette *video.Palette, page *video.Page) {
	b.game.setPresented(page, palette)
}

// StartAudio opens an ebiten audio context at sampleRate and starts a
// player pulling stereo frames from pull, mirroring the teacher's
// apuStream/audio.Context.NewPlayer pairing in ui/audio.go.
func (b *Backend) StartAudio(sampleRate int, pull func(out []int16)) error {
	b.audioCtx = audio.NewContext(sampleRate)
	src := &pullStream{pull: pull}
	p, err := b.audioCtx.NewPlayer(src)
	if err != nil {
		return err
	}
	b.audioPlayer = p
	b.audioPlayer.Play()
	b.log.Debugf("audio started at %d Hz", sampleRate)
	return nil
}

func (b *Backend) StopAudio() {
	if b.audioPlayer != nil {
		b.audioPlayer.Pause()
	}
}

// Run blocks the calling goroutine (the OS-level main goroutine —
// ebiten requires it) pumping the window and input. An errgroup member
// watches ctx and signals game.Update to stop ebiten's loop cleanly;
// ebiten.RunGame itself still has to run inline on this goroutine, so
// it is not one of the group's members.
func (b *Backend) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	ebitenDone := make(chan struct{})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			close(b.game.quit)
		case <-ebitenDone:
		}
		return nil
	})

	runErr := ebiten.RunGame(b.game)
	close(ebitenDone)

	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil {
		return &engine.BackendError{Op: "run_game", Err: runErr}
	}
	return nil
}

// pullStream adapts the mixer's push-style Render callback to the
// io.Reader ebiten's audio.Player expects, the same inversion the
// teacher's apuStream performs for the Game Boy's APU.
type pullStream struct {
	pull func(out []int16)
}

func (s *pullStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	frames := len(p) / 4
	out := make([]int16, frames*2)
	s.pull(out)
	for i, v := range out {
		p[i*2] = byte(v)
		p[i*2+1] = byte(v >> 8)
	}
	return frames * 4, nil
}
