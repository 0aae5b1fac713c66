// Package music plays Another World's pattern-based music tracks: a
// stream of 3-byte events consumed on a fixed tick timer, each one
// either triggering an instrument through the mixer, stamping the
// VM-visible music_mark register, or advancing to the next pattern
// (§4.7). The sequencer never mixes audio itself.
package music

import "github.com/anotherworld-go/engine/internal/audio"

const (
	eventPlay = 0x00 // instrument:u4 | channel_override:u4, note:u8
	eventMark = 0x01 // mark:u16 BE
	eventJump = 0x02 // next_offset:u16 BE, 0xFFFF stops the track
)

const eventSize = 3

// InstrumentRef names the sound resource an instrument slot plays.
type InstrumentRef struct{ ResID uint16 }

// Track is one music resource: a flat byte stream of 3-byte events
// plus its 15 instrument slots (§6.1's music resource layout).
type Track struct {
	patterns    []byte
	instruments [15]*InstrumentRef
	cursor      int
	delayTicks  uint16
	running     bool
}

// NewTrack builds a Track from a decoded music resource.
func NewTrack(patterns []byte, instruments [15]*InstrumentRef) Track {
	return Track{patterns: patterns, instruments: instruments}
}

// Player ties a Track to a Mixer and the VM's MUSIC_MARK register.
// resolve looks up the PCM data for an instrument's resource id; it
// is an added field beyond SPEC_FULL.md's literal struct, needed so
// the sequencer can call Mixer.Play without importing
// internal/resource's loading machinery itself (the same decoupling
// §4.6 gives audio.Resource).
type Player struct {
	track     Track
	mixer     *audio.Mixer
	markSet   func(val uint16)
	resolve   func(resID uint16) audio.Resource
	ticksLeft uint16
}

// NewPlayer builds a Player. resolve is used to turn an
// InstrumentRef's ResID into playable PCM data on each Play event.
func NewPlayer(mixer *audio.Mixer, markSet func(uint16), resolve func(resID uint16) audio.Resource) *Player {
	return &Player{mixer: mixer, markSet: markSet, resolve: resolve}
}

// Play starts (or restarts) track from pattern startPos, ticking
// every delay ticks per event (§4.5.1's MUSIC opcode operands).
func (p *Player) Play(track Track, delay uint16, startPos uint8) {
	p.track = track
	p.track.cursor = int(startPos) * eventSize
	p.track.delayTicks = delay
	p.track.running = true
	p.ticksLeft = delay
}

// Tick consumes one tick of wall-clock time; when delayTicks have
// elapsed since the last event, it processes exactly one 3-byte event
// and resets the countdown.
func (p *Player) Tick() {
	if !p.track.running {
		return
	}
	if p.ticksLeft > 0 {
		p.ticksLeft--
	}
	if p.ticksLeft > 0 {
		return
	}
	p.ticksLeft = p.track.delayTicks
	p.consumeEvent()
}

func (p *Player) consumeEvent() {
	t := &p.track
	if t.cursor+eventSize > len(t.patterns) {
		t.running = false
		return
	}
	b0, b1, b2 := t.patterns[t.cursor], t.patterns[t.cursor+1], t.patterns[t.cursor+2]
	t.cursor += eventSize

	switch b0 {
	case eventPlay:
		instrument := b1 & 0x0F
		channel := b1 >> 4
		note := b2
		if instrument == 0 || int(instrument) > len(t.instruments) {
			return
		}
		ref := t.instruments[instrument-1]
		if ref == nil || p.resolve == nil {
			return
		}
		res := p.resolve(ref.ResID)
		p.mixer.Play(res, note, 64, channel&0x03)

	case eventMark:
		mark := uint16(b1)<<8 | uint16(b2)
		if p.markSet != nil {
			p.markSet(mark)
		}

	case eventJump:
		next := uint16(b1)<<8 | uint16(b2)
		if next == 0xFFFF {
			t.running = false
			return
		}
		t.cursor = int(next)

	default:
		t.running = false
	}
}
