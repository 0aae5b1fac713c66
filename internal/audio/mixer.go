// Package audio implements the four-channel PCM mixer the backend's
// audio callback drives (§4.6). It is invoked from the audio thread
// and must stay safe against VM-issued play/stop calls arriving from
// the engine thread; per §5, the mutex is never held across a call
// back into VM or engine code — Render only ever touches its own
// Channel state.
package audio

import "sync"

const numChannels = 4

// Resource is the decoded form of a sound bank entry, independent of
// how internal/resource loaded and unpacked it, so this package never
// imports resource's loading machinery.
type Resource struct {
	Length  uint16
	LoopLen uint16
	PCM     []int8
}

// Mixer owns the four playback channels and renders them into an
// interleaved stereo output buffer.
type Mixer struct {
	mu         sync.Mutex
	channels   [numChannels]Channel
	sampleRate int
}

// New returns a Mixer rendering at sampleRate Hz.
func New(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate}
}

// Play starts res playing on channel at the given Paula frequency
// index and volume (§4.6's play()).
func (m *Mixer) Play(res Resource, freqIndex, volume uint8, channel uint8) {
	if int(channel) >= numChannels {
		return
	}
	idx := int(freqIndex)
	if idx >= len(freqTable) {
		idx = len(freqTable) - 1
	}

	loopStart := uint32(0)
	if res.LoopLen > 0 && uint32(res.LoopLen) <= uint32(res.Length) {
		loopStart = uint32(res.Length) - uint32(res.LoopLen)
	}

	step := (uint64(freqTable[idx]) << 16) / uint64(m.sampleRate)

	m.mu.Lock()
	defer m.mu.Unlock()
	c := &m.channels[channel]
	c.sample = Sample{Data: res.PCM, LoopStart: loopStart, LoopLen: uint32(res.LoopLen)}
	c.position = 0
	c.step = uint32(step)
	c.volume = clampVolume(volume)
	c.active = true
}

// Stop silences channel.
func (m *Mixer) Stop(channel uint8) {
	if int(channel) >= numChannels {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channel].active = false
}

// SetVolume clamps vol to 0..64 and applies it to channel.
func (m *Mixer) SetVolume(channel uint8, vol uint8) {
	if int(channel) >= numChannels {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channel].volume = clampVolume(vol)
}

// Render fills out (interleaved stereo int16) with the sum of all
// active channels, each scaled by volume/64 and clamped to int16.
func (m *Mixer) Render(out []int16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i+1 < len(out); i += 2 {
		var sum int32
		for c := range m.channels {
			ch := &m.channels[c]
			if !ch.active {
				continue
			}
			v := int32(ch.advance())
			sum += (v * int32(ch.volume)) / 64
		}

		sample := int16(clampSample(sum))
		out[i] = sample
		out[i+1] = sample
	}
}

func clampVolume(v uint8) uint8 {
	if v > 64 {
		return 64
	}
	return v
}

func clampSample(v int32) int32 {
	const scale = 256 // int8 PCM -> int16 range headroom
	v *= scale
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return v
	}
}
