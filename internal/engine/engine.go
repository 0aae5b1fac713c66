// Package engine wires the resource manager, framebuffer, rasterizer,
// VM, mixer, and music sequencer into the single-threaded, frame-driven
// loop described in the system overview: each frame the engine polls
// input, runs the VM for one cooperative slice, and asks the backend
// to present a page (§2).
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/anotherworld-go/engine/internal/audio"
	"github.com/anotherworld-go/engine/internal/logging"
	"github.com/anotherworld-go/engine/internal/music"
	"github.com/anotherworld-go/engine/internal/raster"
	"github.com/anotherworld-go/engine/internal/resource"
	"github.com/anotherworld-go/engine/internal/video"
	"github.com/anotherworld-go/engine/internal/vm"
	"github.com/sirupsen/logrus"
)

const (
	sampleRate  = 44100
	msPerSlice  = 20 // one VM pause "slice" unit, §4.5.4
)

// InputState is one frame's polled input (§6.6).
type InputState struct {
	Mask   uint16
	Horz   int8
	Vert   int8
	Button bool
	Key    uint8
	Quit   bool
	Pause  bool
}

// Backend is the platform surface the engine drives each frame (§6.6).
type Backend interface {
	NowMs() uint32
	SleepMs(ms uint32)
	PollInput() InputState
	Present(pageIndex int, palette *video.Palette, page *video.Page)
	StartAudio(sampleRate int, pull func(out []int16)) error
	StopAudio()
}

// Engine owns every subsystem and drives the per-frame control flow
// named in §2: Engine -> VM.StepFrame -> (opcodes) -> Resources /
// Framebuffer / Rasterizer / Audio.
type Engine struct {
	cfg       Config
	resources *resource.Manager
	fb        *video.Framebuffer
	vm        *vm.VM
	mixer     *audio.Mixer
	music     *music.Player
	backend   Backend
	font      raster.Font
	parts     map[uint16]resource.Part

	currentPart, requestedPart int
	randState                  uint32
	cinematic, subCinematic    []byte
	paused                     bool

	log *logrus.Entry
}

// New loads MEMLIST.BIN from cfg.DataDir and wires every subsystem
// together, ready for Run.
func New(cfg Config, backend Backend) (*Engine, error) {
	cfg.Defaults()

	mgr, err := resource.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	fb := video.New()
	mgr.SetBitmapSink(func(pixels []byte) {
		if err := raster.DrawBitmap(fb, pixels, 0); err != nil {
			logging.For(logging.Engine).Warnf("bitmap resource: %v", err)
		}
	})

	e := &Engine{
		cfg:       cfg,
		resources: mgr,
		fb:        fb,
		mixer:     audio.New(sampleRate),
		backend:   backend,
		font:      defaultFont(),
		parts:     defaultParts(),
		randState: 0x2463,
		log:       logging.For(logging.Engine),
	}
	e.music = music.NewPlayer(e.mixer, e.setMusicMark, e.resolveInstrument)

	initial := cfg.InitialPart
	if cfg.SkipProtection && initial == 0 {
		initial = defaultPart
	}
	if err := e.transitionPart(uint16(firstPartID + initial)); err != nil {
		mgr.Close()
		return nil, err
	}

	return e, nil
}

// Run executes the frame loop until ctx is cancelled, the backend
// reports quit, or a fatal error occurs.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.backend.StartAudio(sampleRate, e.mixer.Render); err != nil {
		return &BackendError{Op: "start_audio", Err: err}
	}
	defer e.backend.StopAudio()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frameStart := e.backend.NowMs()

		input := e.backend.PollInput()
		if input.Quit {
			return nil
		}
		if input.Pause {
			e.paused = !e.paused
		}

		if !e.paused {
			e.applyInput(input)

			if err := e.vm.StepFrame(); err != nil {
				return &InvalidInstructionError{Err: err}
			}

			if err := e.afterStep(); err != nil {
				return err
			}

			e.music.Tick()
		}
		e.present()

		if elapsed := e.backend.NowMs() - frameStart; elapsed < msPerSlice {
			e.backend.SleepMs(msPerSlice - elapsed)
		}
	}
}

func (e *Engine) afterStep() error {
	if e.requestedPart != e.currentPart {
		if err := e.transitionPart(uint16(e.requestedPart)); err != nil {
			var mre *MissingResourceError
			if errors.As(err, &mre) {
				e.log.Warnf("LOAD: %v, ignoring", mre)
				e.requestedPart = e.currentPart
				return nil
			}
			return err
		}
		return nil
	}
	if err := e.resources.Update(); err != nil {
		var le *resource.LoadError
		if errors.As(err, &le) {
			return &CorruptAssetError{ResourceID: le.ResourceID, Err: le}
		}
		return &CorruptAssetError{Err: err}
	}

	if pause := e.vm.Reg(vm.VarPauseSlices); pause > 0 {
		e.backend.SleepMs(uint32(pause) * msPerSlice)
		e.vm.SetReg(vm.VarPauseSlices, 0)
	}
	return nil
}

func (e *Engine) present() {
	idx := e.fb.ResolvePage(0xFE) // front/display selector, §3.4
	page, pal := e.fb.DisplaySnapshot()
	e.backend.Present(idx, pal, page)
}

func (e *Engine) applyInput(in InputState) {
	e.randState = e.randState*1103515245 + 12345
	e.vm.SetReg(vm.VarRandomSeed, uint16(e.randState>>16))

	e.vm.SetReg(vm.VarInputKey, uint16(in.Key))
	e.vm.SetReg(vm.VarHeroPosUpDown, uint16(int16(in.Vert)))
	e.vm.SetReg(vm.VarHeroPosJumpDown, uint16(int16(in.Vert)))
	e.vm.SetReg(vm.VarHeroPosLeftRight, uint16(int16(in.Horz)))

	var action uint16
	if in.Button {
		action = 1
	}
	e.vm.SetReg(vm.VarHeroAction, action)
	e.vm.SetReg(vm.VarHeroPosMask, in.Mask)
	e.vm.SetReg(vm.VarHeroActionPosMask, in.Mask|action)
}

// transitionPart purges all resources and loads the four named by
// partID, rebuilding the VM and rasterizer segments around the fresh
// bytecode and polygon buffers (§3.2, §4.2's load_part).
func (e *Engine) transitionPart(partID uint16) error {
	part, ok := e.parts[partID]
	if !ok {
		return &MissingResourceError{ResourceID: partID, Err: fmt.Errorf("engine: no such part")}
	}

	res, err := e.resources.LoadPart(part)
	if err != nil {
		var le *resource.LoadError
		if errors.As(err, &le) {
			return &CorruptAssetError{ResourceID: le.ResourceID, Err: le}
		}
		return &CorruptAssetError{Err: err}
	}

	if err := e.fb.SetPalettes(res.Palettes); err != nil {
		return &CorruptAssetError{Err: err}
	}

	e.cinematic = res.CinematicSegment
	e.subCinematic = res.SubCinematicSegment
	e.vm = vm.New(res.Bytecode, e)

	e.currentPart = int(partID)
	e.requestedPart = int(partID)
	return nil
}

func (e *Engine) setMusicMark(v uint16) { e.vm.SetReg(vm.VarMusicMark, v) }

func (e *Engine) resolveInstrument(resID uint16) audio.Resource {
	raw, err := e.resources.Data(resID)
	if err != nil {
		e.log.Warnf("music instrument %d: %v", resID, err)
		return audio.Resource{}
	}
	res, err := resource.DecodeSound(raw)
	if err != nil {
		e.log.Warnf("music instrument %d: %v", resID, err)
		return audio.Resource{}
	}
	return res
}
