package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Digest hashes the authoritative state in row-major order. Equal
// networks and cursors always give equal digests.
func (w *World) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteI64(h, &tmp, int64(w.bounds.W))
	digestWriteI64(h, &tmp, int64(w.bounds.H))
	digestWriteI64(h, &tmp, int64(w.cursor.X))
	digestWriteI64(h, &tmp, int64(w.cursor.Y))

	for _, p := range w.net.Positions() {
		s := w.net.segments[p]
		digestWriteI64(h, &tmp, int64(p.X))
		digestWriteI64(h, &tmp, int64(p.Y))
		h.Write([]byte{byte(s.Kind), byte(s.Dir)})
		if s.Token != nil {
			h.Write([]byte{1, byte(s.Token.Resource)})
		} else {
			h.Write([]byte{0, 0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}
