package music

import (
	"testing"

	"github.com/anotherworld-go/engine/internal/audio"
)

func TestTick_WaitsFullDelayBeforeFirstEvent(t *testing.T) {
	var marks []uint16
	p := NewPlayer(audio.New(44100), func(v uint16) { marks = append(marks, v) }, nil)

	track := NewTrack([]byte{eventMark, 0x00, 0x2A}, [15]*InstrumentRef{})
	p.Play(track, 3, 0)

	p.Tick()
	p.Tick()
	if len(marks) != 0 {
		t.Fatalf("event fired early: marks = %v", marks)
	}
	p.Tick()
	if len(marks) != 1 || marks[0] != 0x2A {
		t.Fatalf("marks = %v, want [42]", marks)
	}
}

func TestConsumeEvent_SetsMark(t *testing.T) {
	var got uint16
	p := NewPlayer(audio.New(44100), func(v uint16) { got = v }, nil)
	p.Play(NewTrack([]byte{eventMark, 0x01, 0x00}, [15]*InstrumentRef{}), 1, 0)

	p.Tick()
	if got != 0x0100 {
		t.Fatalf("mark = %#04x, want 0x0100", got)
	}
}

func TestConsumeEvent_PlayInstrumentResolvesAndCallsMixer(t *testing.T) {
	var calledRes uint16
	resolve := func(resID uint16) audio.Resource {
		calledRes = resID
		return audio.Resource{Length: 1, PCM: []int8{1}}
	}
	m := audio.New(44100)
	p := NewPlayer(m, nil, resolve)

	instruments := [15]*InstrumentRef{}
	instruments[2] = &InstrumentRef{ResID: 0x99}
	// instrument=3 (low nibble), channel override=1 (high nibble), note=10
	p.Play(NewTrack([]byte{eventPlay, 0x13, 0x0A}, instruments), 1, 0)

	p.Tick()
	if calledRes != 0x99 {
		t.Fatalf("resolve called with %#04x, want 0x0099", calledRes)
	}
}

func TestConsumeEvent_JumpAdvancesCursor(t *testing.T) {
	var marks []uint16
	p := NewPlayer(audio.New(44100), func(v uint16) { marks = append(marks, v) }, nil)

	patterns := []byte{
		eventJump, 0x00, 0x03, // offset 0: jump to offset 3
		eventMark, 0x00, 0x07, // offset 3: set mark 7
	}
	p.Play(NewTrack(patterns, [15]*InstrumentRef{}), 1, 0)

	p.Tick() // consumes jump
	p.Tick() // consumes mark at new cursor
	if len(marks) != 1 || marks[0] != 7 {
		t.Fatalf("marks = %v, want [7]", marks)
	}
}

func TestConsumeEvent_JumpFFFFStopsTrack(t *testing.T) {
	p := NewPlayer(audio.New(44100), nil, nil)
	p.Play(NewTrack([]byte{eventJump, 0xFF, 0xFF}, [15]*InstrumentRef{}), 1, 0)

	p.Tick()
	if p.track.running {
		t.Fatalf("track still running after 0xFFFF jump")
	}
	// further ticks must be no-ops, not panics
	p.Tick()
}

func TestPlay_StartPosSeeksToEventBoundary(t *testing.T) {
	var marks []uint16
	p := NewPlayer(audio.New(44100), func(v uint16) { marks = append(marks, v) }, nil)

	patterns := []byte{
		eventMark, 0x00, 0x01, // pattern slot 0
		eventMark, 0x00, 0x02, // pattern slot 1
	}
	p.Play(NewTrack(patterns, [15]*InstrumentRef{}), 1, 1)

	p.Tick()
	if len(marks) != 1 || marks[0] != 2 {
		t.Fatalf("marks = %v, want [2] (started from slot 1)", marks)
	}
}

func TestTick_RunsPastEndOfPatternsStopsTrack(t *testing.T) {
	p := NewPlayer(audio.New(44100), nil, nil)
	p.Play(NewTrack([]byte{eventMark, 0x00}, [15]*InstrumentRef{}), 1, 0) // truncated, < eventSize

	p.Tick()
	if p.track.running {
		t.Fatalf("track still running after truncated stream")
	}
}
