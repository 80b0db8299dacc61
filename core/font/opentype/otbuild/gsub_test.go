package otbuild

import (
	"bytes"
	"testing"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestAddLigatureValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b := newTestBuilder(t)
	a, err := b.CopyBaseGlyph('a')
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLigature([]GlyphID{a}, a); err == nil {
		t.Error("expected single-glyph input sequence to be an error")
	}
	if err := b.AddLigature([]GlyphID{a, 999}, a); err == nil {
		t.Error("expected out-of-range glyph reference to be an error")
	}
}

func TestAddLigatureFirstWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b := newTestBuilder(t)
	a, _ := b.CopyBaseGlyph('a')
	c, err := b.CopyBaseGlyph('b')
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLigature([]GlyphID{a, c}, c); err != nil {
		t.Fatal(err)
	}
	if err := b.AddLigature([]GlyphID{a, c}, a); err != nil {
		t.Fatal(err) // duplicate is dropped, not an error
	}
	if b.LigatureCount() != 1 {
		t.Errorf("expected duplicate rule to be dropped, have %d rules", b.LigatureCount())
	}
	if b.ligs[a][0].target != c {
		t.Error("expected first registered rule to win")
	}
}

// TestShapeLigature runs the generated font through the HarfBuzz shaper and
// checks that the character sequence "abc" comes out as the single
// composition glyph.
func TestShapeLigature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b, bin := buildTestFont(t)
	comp, ok := b.byName["comp0001"]
	if !ok {
		t.Fatal("composition glyph missing")
	}
	face, err := hbtt.Parse(bytes.NewReader(bin), true)
	if err != nil {
		t.Fatalf("HarfBuzz cannot parse generated font: %v", err)
	}
	hbFont := hb.NewFont(face)
	buf := hb.NewBuffer()
	buf.Props = hb.SegmentProperties{
		Direction: hb.LeftToRight,
		Script:    hblang.Latin,
		Language:  hblang.NewLanguage("en"),
	}
	runes := []rune("abc")
	buf.AddRunes(runes, 0, len(runes))
	buf.Shape(hbFont, nil)
	if len(buf.Info) != 1 {
		t.Fatalf("expected 'abc' to shape to a single glyph, have %d", len(buf.Info))
	}
	if GlyphID(buf.Info[0].Glyph) != comp {
		t.Errorf("expected composition glyph %d, have %d", comp, buf.Info[0].Glyph)
	}
}

// TestShapeUnrelatedText checks that characters without substitution rules
// pass through the shaper unchanged.
func TestShapeUnrelatedText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	b, bin := buildTestFont(t)
	face, err := hbtt.Parse(bytes.NewReader(bin), true)
	if err != nil {
		t.Fatal(err)
	}
	hbFont := hb.NewFont(face)
	buf := hb.NewBuffer()
	buf.Props = hb.SegmentProperties{
		Direction: hb.LeftToRight,
		Script:    hblang.Latin,
		Language:  hblang.NewLanguage("en"),
	}
	runes := []rune("cba")
	buf.AddRunes(runes, 0, len(runes))
	buf.Shape(hbFont, nil)
	if len(buf.Info) != 3 {
		t.Fatalf("expected 'cba' to shape to 3 glyphs, have %d", len(buf.Info))
	}
	a, _ := b.GlyphFor('a')
	if GlyphID(buf.Info[2].Glyph) != a {
		t.Errorf("expected glyph %d for trailing 'a', have %d", a, buf.Info[2].Glyph)
	}
}
