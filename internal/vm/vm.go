// Package vm implements Another World's bytecode virtual machine: a
// fixed register file, 64 cooperative thread slots, and a dispatcher
// over the opcode set in §4.5.1. It never imports resource, video,
// raster, or audio directly — Deps mediates, the same way the
// teacher's CPU never imports ppu/cart and instead goes through
// bus.Bus.
package vm

import (
	"fmt"

	"github.com/anotherworld-go/engine/internal/logging"
)

const (
	numThreads   = 64
	stackSize    = 256
	threadPaused = 1
	// threadRunning is the zero value of Thread.State/StateNext.
	threadRunning = 0
	deadPC        = 0xFFFF
)

// Thread is one cooperative bytecode execution context multiplexed
// on the engine thread; it is not an OS thread.
type Thread struct {
	PC, PCNext       uint16
	State, StateNext uint8 // Running=0, Paused=1
	Active           bool
}

// Deps is the narrow set of collaborator calls opcodes make into the
// rest of the engine, kept as an interface so vm stays import-free of
// resource/video/raster/audio and unit-testable with fakes.
type Deps interface {
	RequestLoad(resID uint16)
	RequestPart(partID uint16)
	SelectPage(selector uint8)
	FillPage(selector uint8, color uint8)
	CopyPage(dst, src uint8, vscroll int)
	SwapPages()
	ApplyPalette(index int)
	DrawPolygon(segment int, offset int, x, y int16, zoom uint16, color uint8) error
	DrawString(strID uint16, x, y int, color uint8) error
	PlaySound(resID uint16, freq, vol, channel uint8)
	PlayMusic(resID uint16, delay uint16, pos uint8)
}

// VM holds the full interpreter state for one running part.
type VM struct {
	regs    [256]uint16
	threads [numThreads]Thread
	stack   [stackSize]uint16
	sp      [numThreads]uint8 // per-thread count of entries this thread has pushed
	top     uint16            // shared stack depth, across all threads
	cur     int               // currently executing thread index

	bytecode []byte
	deps     Deps

	log interface {
		Errorf(format string, args ...interface{})
		Warnf(format string, args ...interface{})
	}
}

// New builds a VM over bytecode, with thread 0 running from address
// 0 and the rest inactive until a START opcode wakes them.
func New(bytecode []byte, deps Deps) *VM {
	v := &VM{bytecode: bytecode, deps: deps, log: logging.For(logging.VM)}
	v.threads[0].Active = true
	return v
}

// Reg and SetReg are the only sanctioned way to read or write a named
// special register (§6.5); VM never exposes the raw array.
func (v *VM) Reg(name SpecialVar) uint16 { return v.regs[name] }

func (v *VM) SetReg(name SpecialVar, val uint16) { v.regs[name] = val }

func (v *VM) fetch8(t *Thread) uint8 {
	b := v.bytecode[t.PC]
	t.PC++
	return b
}

func (v *VM) fetch16(t *Thread) uint16 {
	hi := uint16(v.fetch8(t))
	lo := uint16(v.fetch8(t))
	return hi<<8 | lo
}

func (v *VM) pushCall(retPC uint16) error {
	if v.top >= stackSize {
		return fmt.Errorf("vm: call stack overflow (>%d unmatched calls)", stackSize)
	}
	v.stack[v.top] = retPC
	v.top++
	v.sp[v.cur]++
	return nil
}

func (v *VM) popCall() (uint16, error) {
	if v.sp[v.cur] == 0 {
		return 0, fmt.Errorf("vm: RET with empty call stack on thread %d", v.cur)
	}
	v.top--
	v.sp[v.cur]--
	return v.stack[v.top], nil
}

func (v *VM) checkJump(addr uint16) error {
	if int(addr) >= len(v.bytecode) {
		return fmt.Errorf("vm: jump target %#04x outside bytecode (len %d)", addr, len(v.bytecode))
	}
	return nil
}

// yielded is returned by an opcode handler to tell runThread to stop
// executing this thread for the current frame.
type yielded struct{}

func (yielded) Error() string { return "vm: thread yielded" }

// StepFrame runs one full engine frame: commit phase, then the run
// phase over all 64 thread slots in order (§4.5.3).
func (v *VM) StepFrame() error {
	// Commit phase: PCNext/StateNext are written eagerly by opcodes
	// (START, RESET) and mirrored into PC/State here so a
	// mid-frame write from one thread never affects another thread's
	// execution until the next frame.
	for t := 0; t < numThreads; t++ {
		th := &v.threads[t]
		th.PC = th.PCNext
		th.State = th.StateNext
	}

	// Pause-slice sleeping (§4.5.3 step 3) is the engine's
	// responsibility: it reads Reg(VarPauseSlices) around StepFrame
	// and clears it after sleeping, since only the engine knows
	// wall-clock tick duration.

	// Freeze which threads are eligible to run this frame before any of
	// them execute: a START or RESET issued by one thread this frame
	// must not let its target run in this same pass, only from the
	// next commit phase onward.
	var runnable [numThreads]bool
	for t := 0; t < numThreads; t++ {
		th := &v.threads[t]
		runnable[t] = th.Active && th.State != threadPaused
	}

	for t := 0; t < numThreads; t++ {
		th := &v.threads[t]
		if !runnable[t] {
			continue
		}
		v.cur = t
		err := v.runThread(th)
		// A thread's own PC/State changes take effect immediately within
		// its own slice; mirror them into PCNext/StateNext so next
		// frame's commit phase is a no-op unless some other thread's
		// START/RESET this frame scheduled a different value for t.
		th.PCNext = th.PC
		th.StateNext = th.State
		if err != nil {
			if _, ok := err.(yielded); ok {
				continue
			}
			return fmt.Errorf("vm: thread %d: %w", t, err)
		}
	}
	return nil
}

// runThread executes opcodes from th.PC until it yields or faults.
func (v *VM) runThread(th *Thread) error {
	for {
		if int(th.PC) >= len(v.bytecode) {
			return fmt.Errorf("pc %#04x outside bytecode (len %d)", th.PC, len(v.bytecode))
		}
		op := v.fetch8(th)
		err := v.dispatch(th, op)
		if err != nil {
			return err
		}
	}
}
