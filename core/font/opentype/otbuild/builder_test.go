package otbuild

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/emojitext/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/font/sfnt"
)

func TestBuilderCopyGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b := newTestBuilder(t)
	gid, err := b.CopyBaseGlyph('a')
	if err != nil {
		t.Fatal(err)
	}
	if gid == 0 {
		t.Fatal("copy of 'a' must not land on .notdef")
	}
	again, err := b.CopyBaseGlyph('a')
	if err != nil {
		t.Fatal(err)
	}
	if again != gid {
		t.Errorf("expected repeated copy to be a no-op, have glyphs %d and %d", gid, again)
	}
	if mapped, ok := b.GlyphFor('a'); !ok || mapped != gid {
		t.Errorf("expected 'a' to be mapped to glyph %d, have %d", gid, mapped)
	}
}

func TestBuilderTextGlyphAdvance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b := newTestBuilder(t)
	var want uint16
	for _, r := range "abc" {
		gid, err := b.CopyBaseGlyph(r)
		if err != nil {
			t.Fatal(err)
		}
		want += b.glyphs[gid].advance
	}
	gid, err := b.TextGlyph("comp0001", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if have := b.glyphs[gid].advance; have != want {
		t.Errorf("expected composed advance %d, have %d", want, have)
	}
	if b.glyphs[gid].components != 3 {
		t.Errorf("expected 3 components, have %d", b.glyphs[gid].components)
	}
}

func TestBuilderTextGlyphTruncation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b := newTestBuilder(t)
	if _, err := b.CopyBaseGlyph('m'); err != nil {
		t.Fatal(err)
	}
	gid, err := b.TextGlyph("comp0001", strings.Repeat("m", 200))
	if err != nil {
		t.Fatal(err)
	}
	if b.TruncatedLabels() != 1 {
		t.Errorf("expected 1 truncated label, have %d", b.TruncatedLabels())
	}
	if adv := b.glyphs[gid].advance; adv > math.MaxInt16 {
		t.Errorf("advance %d exceeds metrics ceiling", adv)
	}
}

func TestBuilderRejectsUnknownLabelChar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b := newTestBuilder(t)
	if _, err := b.TextGlyph("comp0001", "xyz"); err == nil {
		t.Error("expected label with uncopied characters to be an error")
	}
}

func TestBuildAndReparse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b, bin := buildTestFont(t)
	otf, err := sfnt.Parse(bin)
	if err != nil {
		t.Fatalf("generated font does not parse: %v", err)
	}
	var sbuf sfnt.Buffer
	if otf.NumGlyphs() != b.NumGlyphs() {
		t.Errorf("expected %d glyphs after reparse, have %d", b.NumGlyphs(), otf.NumGlyphs())
	}
	gid, err := otf.GlyphIndex(&sbuf, 'a')
	if err != nil || gid == 0 {
		t.Errorf("expected 'a' to be mapped in generated font, have glyph %d", gid)
	}
	name, err := otf.Name(&sbuf, sfnt.NameIDFamily)
	if err != nil || name != "Emoji Text" {
		t.Errorf("expected family name 'Emoji Text', have %q", name)
	}
}

func TestBuildReproducible(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	_, bin1 := buildTestFont(t)
	_, bin2 := buildTestFont(t)
	if !bytes.Equal(bin1, bin2) {
		t.Error("expected two builds of identical input to be byte-identical")
	}
}

// ---------------------------------------------------------------------------

func newTestBuilder(t *testing.T) *Builder {
	b, err := NewBuilder(font.FallbackFont())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// buildTestFont builds a small font: glyphs for a, b, c, a composition glyph
// for label "abc", and a substitution rule mapping the glyph sequence of
// "abc" to the composition glyph.
func buildTestFont(t *testing.T) (*Builder, []byte) {
	b := newTestBuilder(t)
	var seq []GlyphID
	for _, r := range "abc" {
		gid, err := b.CopyBaseGlyph(r)
		if err != nil {
			t.Fatal(err)
		}
		seq = append(seq, gid)
	}
	comp, err := b.TextGlyph("comp0001", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLigature(seq, comp); err != nil {
		t.Fatal(err)
	}
	b.SetMetadata(Metadata{
		FontName: "EmojiText-Regular",
		Family:   "Emoji Text",
		FullName: "Emoji Text Regular",
		Version:  "1.0",
	})
	bin, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return b, bin
}
