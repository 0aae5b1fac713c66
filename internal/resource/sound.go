package resource

import (
	"encoding/binary"
	"fmt"

	"github.com/anotherworld-go/engine/internal/audio"
)

// soundHeaderLen is the 8-byte header every KindSound payload carries
// before its raw 8-bit PCM body (§4.6): length:u16 BE, loop_len:u16 BE,
// reserved:4 bytes. No authoritative byte-level dump of this header
// survives in this pack, so the reserved bytes are parsed but ignored
// rather than guessed at.
const soundHeaderLen = 8

// DecodeSound turns a loaded KindSound payload into the audio
// package's decoupled Resource shape, so audio never needs to import
// resource's loading machinery.
func DecodeSound(raw []byte) (audio.Resource, error) {
	if len(raw) < soundHeaderLen {
		return audio.Resource{}, fmt.Errorf("resource: sound payload is %d bytes, want at least %d", len(raw), soundHeaderLen)
	}
	length := binary.BigEndian.Uint16(raw[0:2])
	loopLen := binary.BigEndian.Uint16(raw[2:4])

	body := raw[soundHeaderLen:]
	pcm := make([]int8, len(body))
	for i, b := range body {
		pcm[i] = int8(b)
	}
	return audio.Resource{Length: length, LoopLen: loopLen, PCM: pcm}, nil
}
