package engine

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/anotherworld-go/engine/internal/resource"
	"github.com/anotherworld-go/engine/internal/video"
)

// fakeBackend is a minimal Backend that quits after a fixed number of
// frames, so Run returns instead of looping forever.
type fakeBackend struct {
	framesLeft   int
	presented    int
	startAudioOK bool
	audioPull    func(out []int16)

	calls       int
	pauseOnCall int // 0 means never; PollInput sets Pause on this call number
}

func (b *fakeBackend) NowMs() uint32 { return 0 }
func (b *fakeBackend) SleepMs(ms uint32) {}
func (b *fakeBackend) PollInput() InputState {
	b.calls++
	b.framesLeft--
	return InputState{Quit: b.framesLeft < 0, Pause: b.calls == b.pauseOnCall}
}
func (b *fakeBackend) Present(pageIndex int, palette *video.Palette, page *video.Page) {
	b.presented++
}
func (b *fakeBackend) StartAudio(sampleRate int, pull func(out []int16)) error {
	b.startAudioOK = true
	b.audioPull = pull
	return nil
}
func (b *fakeBackend) StopAudio() {}

// memlistEntry mirrors the fields writeFixture needs to build one
// 20-byte MEMLIST record (§6.1); state/rank/unused fields are zeroed,
// matching resource/memlist_test.go's buildMemlist helper.
type memlistEntry struct {
	kind                     resource.Kind
	bankID                   uint8
	bankOffset               uint32
	packedSize, unpackedSize uint16
}

const memlistRecordLen = 20

func writeFixture(t *testing.T, dir string, entries []memlistEntry, bank []byte) {
	t.Helper()

	var buf []byte
	for _, e := range entries {
		var rec [memlistRecordLen]byte
		rec[0] = byte(resource.StateNotNeeded)
		rec[1] = byte(e.kind)
		rec[5] = e.bankID
		binary.BigEndian.PutUint32(rec[6:10], e.bankOffset)
		binary.BigEndian.PutUint16(rec[12:14], e.packedSize)
		binary.BigEndian.PutUint16(rec[16:18], e.unpackedSize)
		buf = append(buf, rec[:]...)
	}
	var sentinel [memlistRecordLen]byte
	sentinel[0] = 0xFF // StateEndOfList
	buf = append(buf, sentinel[:]...)

	if err := os.WriteFile(filepath.Join(dir, "MEMLIST.BIN"), buf, 0o644); err != nil {
		t.Fatalf("writing MEMLIST.BIN: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "BANK00"), bank, 0o644); err != nil {
		t.Fatalf("writing BANK00: %v", err)
	}
}

// newFixtureDataDir builds a data directory matching defaultParts'
// index-1 entry (Config{InitialPart: 1} resolves to part id
// firstPartID+1, base 0x14): the four real resources land at MEMLIST
// positions 0x14-0x17, so positions 0-19 are padded with empty,
// NotNeeded placeholder records (resource ids are purely positional,
// §6.1, not a field in the record itself).
func newFixtureDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	const padCount = 0x14
	entries := make([]memlistEntry, padCount)
	for i := range entries {
		entries[i] = memlistEntry{kind: resource.KindUnused}
	}

	palette := make([]byte, 32*32) // 32 palettes * 16 colors * 2 bytes
	bytecode := []byte{0x06}       // single YIELD opcode, never faults
	cinematic := []byte{0x00, 0x00, 0x00, 0x00}
	subCinematic := []byte{0x00, 0x00, 0x00, 0x00}

	var bank []byte
	off := func() uint32 { return uint32(len(bank)) }

	entries = append(entries, memlistEntry{kind: resource.KindPalette, bankOffset: off(),
		packedSize: uint16(len(palette)), unpackedSize: uint16(len(palette))})
	bank = append(bank, palette...)

	entries = append(entries, memlistEntry{kind: resource.KindBytecode, bankOffset: off(),
		packedSize: uint16(len(bytecode)), unpackedSize: uint16(len(bytecode))})
	bank = append(bank, bytecode...)

	entries = append(entries, memlistEntry{kind: resource.KindPolyBank, bankOffset: off(),
		packedSize: uint16(len(cinematic)), unpackedSize: uint16(len(cinematic))})
	bank = append(bank, cinematic...)

	entries = append(entries, memlistEntry{kind: resource.KindPolyBankAlt, bankOffset: off(),
		packedSize: uint16(len(subCinematic)), unpackedSize: uint16(len(subCinematic))})
	bank = append(bank, subCinematic...)

	writeFixture(t, dir, entries, bank)
	return dir
}

func TestNew_BootsFirstPartAndAppliesPalette(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{framesLeft: 0}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	if e.currentPart != firstPartID+1 {
		t.Fatalf("currentPart = %#x, want %#x", e.currentPart, firstPartID+1)
	}
	if e.requestedPart != e.currentPart {
		t.Fatalf("requestedPart = %#x, want %#x", e.requestedPart, e.currentPart)
	}
	if e.vm == nil {
		t.Fatalf("vm not built")
	}
	if len(e.cinematic) == 0 {
		t.Fatalf("cinematic segment not bound")
	}
}

func TestRun_StepsUntilBackendQuits(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{framesLeft: 3}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !backend.startAudioOK {
		t.Fatalf("StartAudio not called")
	}
	if backend.presented != 3 { // framesLeft starts at 3; the poll that finally reports Quit never presents
		t.Fatalf("presented = %d frames, want 3", backend.presented)
	}
}

func TestRun_StopsImmediatelyWhenContextCancelled(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{framesLeft: 1000}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if backend.presented != 0 {
		t.Fatalf("presented = %d frames, want 0 (cancelled before first poll)", backend.presented)
	}
}

func TestTransitionPart_UnknownPartIsMissingResourceError(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	err = e.transitionPart(0x9999)
	if err == nil {
		t.Fatalf("expected error for unknown part id")
	}
	var mre *MissingResourceError
	if !asMissingResourceError(err, &mre) {
		t.Fatalf("error %v is not a *MissingResourceError", err)
	}
}

// asMissingResourceError avoids importing "errors" just for this one
// type switch in the test.
func asMissingResourceError(err error, target **MissingResourceError) bool {
	if mre, ok := err.(*MissingResourceError); ok {
		*target = mre
		return true
	}
	return false
}

// TestAfterStep_UnknownRequestedPartIsRecoverable exercises the full
// LOAD-of-unknown-part path through afterStep, not just transitionPart
// in isolation: a LOAD naming a part id absent from e.parts must warn
// and reset the request rather than aborting the frame loop (§7).
func TestAfterStep_UnknownRequestedPartIsRecoverable(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	e.RequestPart(0x9999)
	if err := e.afterStep(); err != nil {
		t.Fatalf("afterStep: %v, want nil (recoverable)", err)
	}
	if e.requestedPart != e.currentPart {
		t.Fatalf("requestedPart = %#x, want reset to currentPart %#x", e.requestedPart, e.currentPart)
	}
}

// TestDrawString_UnknownIDIsNoOp matches PlaySound/PlayMusic's
// recover-and-warn behavior: an unmapped string id must not surface as
// a fatal InvalidInstructionError through the VM's dispatch.
func TestDrawString_UnknownIDIsNoOp(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	if err := e.DrawString(0xFFFF, 0, 0, 0); err != nil {
		t.Fatalf("DrawString: %v, want nil for an unresolved string id", err)
	}
}

// TestRun_PauseSkipsSteppingButKeepsPresenting toggles pause on the
// first polled frame and never toggles it back: the VM must never
// step (randState, written only by applyInput, stays at its seed)
// while every frame -- paused or not -- still reaches Present so the
// window keeps drawing and stays responsive to unpause/quit.
func TestRun_PauseSkipsSteppingButKeepsPresenting(t *testing.T) {
	dir := newFixtureDataDir(t)
	backend := &fakeBackend{framesLeft: 3, pauseOnCall: 1}

	e, err := New(Config{DataDir: dir, InitialPart: 1}, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.resources.Close()

	seed := e.randState
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !e.paused {
		t.Fatalf("engine should still be paused after a single toggle")
	}
	if e.randState != seed {
		t.Fatalf("randState changed to %#x while paused, applyInput should not have run", e.randState)
	}
	if backend.presented != 3 {
		t.Fatalf("presented = %d frames, want 3 (paused frames still present)", backend.presented)
	}
}
