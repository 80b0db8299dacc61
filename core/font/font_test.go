package font

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFallbackFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	f := FallbackFont()
	if f == nil || f.SFNT == nil {
		t.Fatal("expected fallback font to be present")
	}
	if f.SFNT.NumGlyphs() == 0 {
		t.Error("expected fallback font to contain glyphs")
	}
}

func TestFallbackCoversLabelAlphabet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	f := FallbackFont()
	for _, r := range "#()*0123456789_abcdefghijklmnopqrstuvwxyz" {
		if gid := f.GlyphIndex(r); gid == 0 {
			t.Errorf("expected fallback font to cover %q", r)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	if _, err := ParseOpenTypeFont([]byte("not a font at all")); err == nil {
		t.Error("expected parsing of garbage data to fail")
	}
}

func TestNormalizeFontname(t *testing.T) {
	if n := NormalizeFontname("Source Code Pro.otf"); n != "source_code_pro" {
		t.Errorf("expected normalized name 'source_code_pro', is %q", n)
	}
}
