/*
Package otexport writes a generated font to disk in its distribution
formats: plain TTF, WOFF and WOFF2.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package otexport

import (
	"os"
	"path/filepath"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font/opentype/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'emojitext.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.fonts")
}

// WriteAll writes an sfnt font binary to dir in all distribution formats,
// as basename.ttf, basename.woff and basename.woff2. It returns the paths
// of the files written. On error, files written so far are left in place.
func WriteAll(dir string, basename string, font []byte) ([]string, error) {
	outputs := []struct {
		ext    string
		encode func([]byte) ([]byte, error)
	}{
		{"ttf", func(b []byte) ([]byte, error) { return b, nil }},
		{"woff", EncodeWOFF},
		{"woff2", EncodeWOFF2},
	}
	var paths []string
	for _, out := range outputs {
		data, err := out.encode(font)
		if err != nil {
			return paths, core.WrapError(err, core.EEXPORT, "cannot encode %s", out.ext)
		}
		path := filepath.Join(dir, basename+"."+out.ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, core.WrapError(err, core.EEXPORT, "cannot write %s", path)
		}
		tracer().Infof("wrote %s (%.1f KB)", path, float64(len(data))/1024)
		paths = append(paths, path)
	}
	return paths, nil
}

// tableRec is one entry of an sfnt table directory, with its data slice.
type tableRec struct {
	tag      ot.Tag
	checksum uint32
	data     []byte
}

// sfntTables reads the table directory of an sfnt binary. The container
// formats need table boundaries and original checksums, which the ot parser
// does not retain, so the directory is read directly.
func sfntTables(font []byte) (flavor uint32, recs []tableRec, err error) {
	if len(font) < 12 {
		return 0, nil, core.Error(core.EINVALID, "sfnt too short")
	}
	flavor = be32(font)
	n := int(be16(font[4:]))
	if len(font) < 12+16*n {
		return 0, nil, core.Error(core.EINVALID, "sfnt table directory truncated")
	}
	for i := 0; i < n; i++ {
		entry := font[12+16*i:]
		off, size := be32(entry[8:]), be32(entry[12:])
		if int(off)+int(size) > len(font) {
			return 0, nil, core.Error(core.EINVALID, "sfnt table out of bounds")
		}
		recs = append(recs, tableRec{
			tag:      ot.Tag(be32(entry)),
			checksum: be32(entry[4:]),
			data:     font[off : off+size],
		})
	}
	return flavor, recs, nil
}

func be16(b []byte) uint16 {
	_ = b[1]
	return uint16(b[0])<<8 | uint16(b[1])
}

func be32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
