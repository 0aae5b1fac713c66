package audio

import (
	"math"
	"testing"
)

func TestRender_ClampNeverExceedsInt16Range(t *testing.T) {
	m := New(44100)
	data := make([]int8, 4)
	for i := range data {
		data[i] = 127
	}
	for c := 0; c < numChannels; c++ {
		m.Play(Resource{Length: uint16(len(data)), PCM: data}, 39, 64, uint8(c))
	}

	out := make([]int16, 8)
	m.Render(out)
	for _, s := range out {
		if s > 32767 || s < -32768 {
			t.Fatalf("sample %d out of int16 range", s)
		}
	}
}

func TestRender_SawWaveCorrelatesWithSource(t *testing.T) {
	const n = 100
	saw := make([]int8, n)
	for i := range saw {
		saw[i] = int8(i - n/2)
	}

	m := New(44100)
	m.channels[0] = Channel{
		sample: Sample{Data: saw},
		step:   1 << 16, // Q16.16 1.0: one source sample per output frame
		volume: 64,
		active: true,
	}

	out := make([]int16, n*2)
	m.Render(out)

	var dot, magOut, magSrc float64
	for i := 0; i < n; i++ {
		o := float64(out[i*2])
		s := float64(saw[i])
		dot += o * s
		magOut += o * o
		magSrc += s * s
	}
	if magOut == 0 || magSrc == 0 {
		t.Fatalf("degenerate signal, correlation undefined")
	}
	corr := dot / (math.Sqrt(magOut) * math.Sqrt(magSrc))
	if corr < 0.99 {
		t.Fatalf("correlation = %f, want > 0.99", corr)
	}
}

func TestSetVolume_Clamps(t *testing.T) {
	m := New(44100)
	m.SetVolume(0, 200)
	if m.channels[0].volume != 64 {
		t.Fatalf("volume = %d, want clamped to 64", m.channels[0].volume)
	}
}

func TestStop_DeactivatesChannel(t *testing.T) {
	m := New(44100)
	m.channels[1].active = true
	m.Stop(1)
	if m.channels[1].active {
		t.Fatalf("channel still active after Stop")
	}
}

func TestFreqTable_MonotonicAscending(t *testing.T) {
	for i := 1; i < len(freqTable); i++ {
		if freqTable[i] <= freqTable[i-1] {
			t.Fatalf("freqTable[%d]=%d not greater than freqTable[%d]=%d", i, freqTable[i], i-1, freqTable[i-1])
		}
	}
}

