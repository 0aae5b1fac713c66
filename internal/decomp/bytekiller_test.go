package decomp

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// bitSeqBuilder accumulates a flat sequence of control/data bits in
// the exact order Decompress's bit reader will return them, then
// packs them into the 32-bit words the trailer format expects.
//
// Decompress's bit reader returns, word by word, bit 0 then bit 1 ...
// then bit 31 of each fetched word, in fetch order; bitsInit=1 makes
// the very first nextBit() call trigger an immediate, lossless fetch
// of the first real word (the stale bit it would otherwise have
// returned is discarded by the refill branch). So bit i of word k
// holds the (32*k+i)-th desired bit.
type bitSeqBuilder struct {
	bits []uint32 // 0 or 1, in consumption order
}

func (b *bitSeqBuilder) pushBit(v uint32) { b.bits = append(b.bits, v&1) }

// pushBits appends n bits of v, most-significant first, matching how
// Decompress's nextBits(n) reassembles them (v = v<<1 | bit).
func (b *bitSeqBuilder) pushBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		b.pushBit((v >> uint(i)) & 1)
	}
}

// pushLiteralRun emits a "0 0" op copying the given bytes as literals.
// Decompress's copyLiteral writes bytes back-to-front (each writeByte
// decrements dst before storing), so the bytes must be pushed in
// reverse order for the segment to land forward in the final output.
func (b *bitSeqBuilder) pushLiteralRun(data []byte) {
	b.pushBit(0)
	b.pushBit(0)
	b.pushBits(uint32(len(data)-1), 3)
	for i := len(data) - 1; i >= 0; i-- {
		b.pushBits(uint32(data[i]), 8)
	}
}

// build packs the accumulated bit sequence into fetch-ordered 32-bit
// words (word i holds desired bits [32*i, 32*i+32) with bit j of the
// word equal to desired bit 32*i+j), and returns those words plus the
// XOR checksum a correct trailer must carry.
func (b *bitSeqBuilder) build() (words []uint32, checksum uint32) {
	n := len(b.bits)
	numWords := (n + 31) / 32
	words = make([]uint32, numWords)
	for i, bit := range b.bits {
		word := i / 32
		pos := uint(i % 32)
		words[word] |= bit << pos
	}
	for _, w := range words {
		checksum ^= w
	}
	return words, checksum
}

// pack assembles a full ByteKiller buffer (payload words + 12-byte
// trailer) using only "0 0" literal-run ops, split into chunks of at
// most 8 bytes (the op's 3-bit count field). Decompress consumes ops
// back-to-front (each op fills the output segment just below the
// previous one), so chunks are emitted in reverse order here to land
// back in the original forward arrangement. This exercises the core
// bit-unpacking and checksum/trailer handling without needing a
// functioning compressor, which the source format doesn't require.
func pack(data []byte) []byte {
	var chunks [][]byte
	for i := 0; i < len(data); {
		n := len(data) - i
		if n > 8 {
			n = 8
		}
		chunks = append(chunks, data[i:i+n])
		i += n
	}

	b := &bitSeqBuilder{}
	for i := len(chunks) - 1; i >= 0; i-- {
		b.pushLiteralRun(chunks[i])
	}
	words, checksum := b.build()

	var buf bytes.Buffer
	for i := len(words) - 1; i >= 0; i-- { // fetch order is last-word-first
		var w [4]byte
		binary.BigEndian.PutUint32(w[:], words[i])
		buf.Write(w[:])
	}

	var trailer [12]byte
	binary.BigEndian.PutUint32(trailer[0:4], uint32(len(data)))
	binary.BigEndian.PutUint32(trailer[4:8], checksum)
	binary.BigEndian.PutUint32(trailer[8:12], 1) // bitsInit=1 forces an immediate, lossless first fetch
	buf.Write(trailer[:])
	return buf.Bytes()
}

func TestDecompress_RoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x01},
		bytes.Repeat([]byte{0xAB}, 5),
		[]byte("another world bytecode payload exercised across many literal runs"),
	}
	for _, data := range cases {
		packed := pack(data)
		got, err := Decompress(packed)
		if err != nil {
			t.Fatalf("Decompress(%d bytes): %v", len(data), err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("round-trip mismatch: got %x want %x", got, data)
		}
	}
}

func TestDecompress_BadChecksum(t *testing.T) {
	packed := pack([]byte("hello"))
	packed[len(packed)-8] ^= 0xFF // flip a checksum byte
	if _, err := Decompress(packed); err != ErrCorruptInput {
		t.Fatalf("got err=%v, want ErrCorruptInput", err)
	}
}

func TestDecompress_ShortInputRejected(t *testing.T) {
	if _, err := Decompress([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for input shorter than trailer")
	}
}
