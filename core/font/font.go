/*
Package font handles the base font of the generator.

The generated emoji font does not draw glyph outlines of its own. Instead it
borrows the outlines for the label alphabet from a base font, which has to be
an OpenType font with TrueType outlines. This package loads and wraps base
fonts; low-level table access lives in package opentype/ot.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package font

import (
	"os"
	"strings"
	"sync"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'emojitext.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.fonts")
}

// ScalableFont is an OpenType font to borrow glyphs from.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// LoadOpenTypeFont loads an OpenType font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	tracer().Infof("loaded font %s from %s", f.Fontname, fontfile)
	return f, nil
}

// ParseOpenTypeFont wraps a font given as binary data.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "base font is not a parseable OpenType font")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return
}

// Version returns the version string of the font, if present.
func (sf *ScalableFont) Version() string {
	v, err := sf.SFNT.Name(nil, sfnt.NameIDVersion)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(v, "Version ")
}

// GlyphIndex returns the glyph index of rune r in the font, 0 (= .notdef)
// if the font does not cover r.
func (sf *ScalableFont) GlyphIndex(r rune) uint16 {
	var buf sfnt.Buffer
	gid, err := sf.SFNT.GlyphIndex(&buf, r)
	if err != nil {
		return 0
	}
	return uint16(gid)
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Regular.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Regular",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}

// NormalizeFontname converts a font name to a canonical form: lower case,
// underscores for spaces, file extension stripped.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fname
}
