package music

import "encoding/binary"

const instrumentTableLen = 15 * 2

// DecodeTrack parses a loaded music resource payload into a Track: a
// 30-byte header of 15 big-endian u16 instrument resource ids (0 means
// an unused slot) followed by the pattern event stream. No
// authoritative byte dump of this resource kind survives in this pack
// or original_source/, so this layout is a documented reconstruction
// rather than a literal transcription, matching the
// instrument-table-plus-events shape §3.5/§4.8 describe.
func DecodeTrack(raw []byte) Track {
	var instruments [15]*InstrumentRef
	if len(raw) >= instrumentTableLen {
		for i := 0; i < 15; i++ {
			id := binary.BigEndian.Uint16(raw[i*2 : i*2+2])
			if id != 0 {
				instruments[i] = &InstrumentRef{ResID: id}
			}
		}
	}

	var patterns []byte
	if len(raw) > instrumentTableLen {
		patterns = raw[instrumentTableLen:]
	}
	return NewTrack(patterns, instruments)
}
