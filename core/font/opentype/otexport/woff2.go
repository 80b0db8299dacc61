package otexport

import (
	"github.com/andybalholm/brotli"
	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font/opentype/ot"
)

// WOFF 2.0 container; see https://www.w3.org/TR/WOFF2/. The table data is
// concatenated and compressed as a single Brotli stream. WOFF2 defines an
// optional re-packing transform for the glyf and loca tables; we write both
// with the null transform (version 3) instead, keeping the original bytes.
// The WOFF2 transform would shave off a few more percent, but decoding
// null-transformed tables is universally supported and the glyph records
// are position-critical input to the GSUB rules, so they travel verbatim.

// knownWoff2Tags is the fixed tag list of the WOFF2 spec; a table whose tag
// is in this list is identified in the directory by its index instead of a
// 4-byte tag.
var knownWoff2Tags = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fond",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

func knownTableIndex(tag ot.Tag) int {
	for i, t := range knownWoff2Tags {
		if tag == ot.T(t) {
			return i
		}
	}
	return -1
}

// EncodeWOFF2 wraps an sfnt binary in a WOFF 2.0 container.
func EncodeWOFF2(font []byte) ([]byte, error) {
	flavor, recs, err := sfntTables(font)
	if err != nil {
		return nil, err
	}
	recs = locaAfterGlyf(recs)
	n := len(recs)
	totalSfntSize := 12 + 16*n
	for _, rec := range recs {
		totalSfntSize += (len(rec.data) + 3) &^ 3
	}
	var directory buffer
	for _, rec := range recs {
		idx := knownTableIndex(rec.tag)
		flags := byte(0x3F) // arbitrary tag follows
		if idx >= 0 {
			flags = byte(idx)
		}
		if rec.tag == ot.T("glyf") || rec.tag == ot.T("loca") {
			flags |= 3 << 6 // null transform
		}
		directory.u8(flags)
		if idx < 0 {
			directory.u32(uint32(rec.tag))
		}
		uintBase128(&directory, uint32(len(rec.data)))
		// no transformLength: none of the tables is transformed
	}
	var stream buffer
	for _, rec := range recs {
		stream.Write(rec.data)
	}
	var compressed buffer
	bw := brotli.NewWriterLevel(&compressed, brotli.BestCompression)
	if _, err := bw.Write(stream.Bytes()); err != nil {
		return nil, core.WrapError(err, core.EEXPORT, "brotli compression failed")
	}
	if err := bw.Close(); err != nil {
		return nil, core.WrapError(err, core.EEXPORT, "brotli compression failed")
	}
	totalLength := 48 + directory.Len() + compressed.Len()
	var buf buffer
	buf.u32(uint32(ot.T("wOF2")))
	buf.u32(flavor)
	buf.u32(uint32(totalLength))
	buf.u16(uint16(n))
	buf.u16(0) // reserved
	buf.u32(uint32(totalSfntSize))
	buf.u32(uint32(compressed.Len()))
	buf.u16(1) // majorVersion
	buf.u16(0) // minorVersion
	buf.u32(0) // metaOffset
	buf.u32(0) // metaLength
	buf.u32(0) // metaOrigLength
	buf.u32(0) // privOffset
	buf.u32(0) // privLength
	buf.Write(directory.Bytes())
	buf.Write(compressed.Bytes())
	return buf.Bytes(), nil
}

// locaAfterGlyf reorders the table records so that loca immediately follows
// glyf, which WOFF2 requires.
func locaAfterGlyf(recs []tableRec) []tableRec {
	var loca tableRec
	haveLoca := false
	out := make([]tableRec, 0, len(recs))
	for _, rec := range recs {
		if rec.tag == ot.T("loca") {
			loca, haveLoca = rec, true
			continue
		}
		out = append(out, rec)
	}
	if !haveLoca {
		return recs
	}
	for i, rec := range out {
		if rec.tag == ot.T("glyf") {
			out = append(out[:i+1], append([]tableRec{loca}, out[i+1:]...)...)
			return out
		}
	}
	return append(out, loca)
}

// uintBase128 writes a value in the variable-length encoding of the WOFF2
// spec: big-endian base 128, high bit marking continuation.
func uintBase128(buf *buffer, v uint32) {
	var tmp [5]byte
	n := 0
	for {
		tmp[n] = byte(v & 0x7F)
		v >>= 7
		n++
		if v == 0 {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		b := tmp[i]
		if i > 0 {
			b |= 0x80
		}
		buf.u8(b)
	}
}
