package otexport

import (
	"bytes"
	"compress/zlib"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font/opentype/ot"
)

// WOFF 1.0 container; see https://www.w3.org/TR/WOFF/. Every table is
// compressed with zlib individually, but the compressed variant is used
// only if it actually is smaller than the raw table.

type buffer struct {
	bytes.Buffer
}

func (b *buffer) u8(v byte) {
	b.WriteByte(v)
}

func (b *buffer) u16(v uint16) {
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

func (b *buffer) u32(v uint32) {
	b.WriteByte(byte(v >> 24))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

func (b *buffer) pad4() {
	for b.Len()&3 != 0 {
		b.WriteByte(0)
	}
}

// EncodeWOFF wraps an sfnt binary in a WOFF 1.0 container.
func EncodeWOFF(font []byte) ([]byte, error) {
	flavor, recs, err := sfntTables(font)
	if err != nil {
		return nil, err
	}
	n := len(recs)
	totalSfntSize := 12 + 16*n
	for _, rec := range recs {
		totalSfntSize += (len(rec.data) + 3) &^ 3
	}
	// compress tables up front, so that directory offsets are known
	packed := make([][]byte, n)
	for i, rec := range recs {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		if _, err := zw.Write(rec.data); err != nil {
			return nil, core.WrapError(err, core.EEXPORT, "zlib compression failed")
		}
		if err := zw.Close(); err != nil {
			return nil, core.WrapError(err, core.EEXPORT, "zlib compression failed")
		}
		if zbuf.Len() < len(rec.data) {
			packed[i] = zbuf.Bytes()
		} else {
			packed[i] = rec.data
		}
	}
	totalLength := 44 + 20*n
	for _, data := range packed {
		totalLength += (len(data) + 3) &^ 3
	}
	var buf buffer
	buf.u32(uint32(ot.T("wOFF")))
	buf.u32(flavor)
	buf.u32(uint32(totalLength))
	buf.u16(uint16(n))
	buf.u16(0) // reserved
	buf.u32(uint32(totalSfntSize))
	buf.u16(1) // majorVersion
	buf.u16(0) // minorVersion
	buf.u32(0) // metaOffset
	buf.u32(0) // metaLength
	buf.u32(0) // metaOrigLength
	buf.u32(0) // privOffset
	buf.u32(0) // privLength
	offset := 44 + 20*n
	for i, rec := range recs {
		buf.u32(uint32(rec.tag))
		buf.u32(uint32(offset))
		buf.u32(uint32(len(packed[i])))
		buf.u32(uint32(len(rec.data)))
		buf.u32(rec.checksum)
		offset += (len(packed[i]) + 3) &^ 3
	}
	for _, data := range packed {
		buf.Write(data)
		buf.pad4()
	}
	return buf.Bytes(), nil
}
