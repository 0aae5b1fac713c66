package resource

import (
	"encoding/binary"
	"fmt"
	"io"
)

const memlistRecordLen = 20

// parseMemlist decodes sequential 20-byte records (§6.1) until a
// sentinel with state 0xFF. Field layout, big-endian multi-byte:
//
//	state:u8 type:u8 buf_ptr:u16 unused:u16
//	rank:u8 bank_id:u8 bank_offset:u32
//	unused2:u16 packed_size:u16 unused3:u16 unpacked_size:u16
func parseMemlist(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var rec [memlistRecordLen]byte
	for id := uint16(0); ; id++ {
		_, err := io.ReadFull(r, rec[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("resource: memlist truncated before sentinel: %w", err)
		}
		if err != nil {
			return nil, fmt.Errorf("resource: reading memlist record %d: %w", id, err)
		}

		state := State(rec[0])
		if state == StateEndOfList {
			break
		}

		e := Entry{
			ID:           id,
			Kind:         Kind(rec[1]),
			BankID:       rec[5],
			BankOffset:   binary.BigEndian.Uint32(rec[6:10]),
			PackedSize:   binary.BigEndian.Uint16(rec[12:14]),
			UnpackedSize: binary.BigEndian.Uint16(rec[16:18]),
			State:        state,
		}
		if e.PackedSize > e.UnpackedSize {
			return nil, fmt.Errorf("resource %d: packed_size %d exceeds unpacked_size %d", id, e.PackedSize, e.UnpackedSize)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
