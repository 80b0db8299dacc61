package names

import (
	"strings"
	"testing"

	"github.com/npillmayer/emojitext/core/unicode/emoji"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	cases := []struct{ raw, label string }{
		{"grinning face", "grinning_face"},
		{"flag: Germany", "flag_germany"},
		{"flag: Congo - Kinshasa", "flag_congo_kinshasa"},
		{"keycap: #", "keycap_#"},
		{"keycap: *", "keycap_*"},
		{"keycap: 10", "keycap_10"},
		{"water polo: person", "water_polo"},
		{"piñata", "pinata"},
		{"Côte d’Ivoire", "cote_d_ivoire"},
		{"A.B.C.", "a_b_c"},
		{"  ", ""},
		{"", ""},
	}
	for _, c := range cases {
		if have := Normalize(c.raw); have != c.label {
			t.Errorf("expected %q to normalize to %q, is %q", c.raw, c.label, have)
		}
	}
}

func TestNormalizeAlphabetClosed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	raws := []string{
		"grinning face", "flag: São Tomé & Príncipe", "keycap: #", "family: man, woman, boy",
		"woman’s boot", "T-Rex", "1st place medal", "Þórshöfn", "日本", "☀︎",
	}
	for _, raw := range raws {
		label := Normalize(raw)
		for _, r := range label {
			if !InAlphabet(r) {
				t.Errorf("label %q for %q contains foreign character %q", label, raw, r)
			}
		}
		if strings.Contains(label, "__") {
			t.Errorf("label %q contains consecutive underscores", label)
		}
	}
}

func TestNormalizeLengthCeiling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	long := strings.Repeat("family man woman ", 8) // normalizes way past the cap
	label := Normalize(long)
	if len(label) > MaxLabelLen {
		t.Errorf("expected label to be capped at %d runes, has %d", MaxLabelLen, len(label))
	}
	if strings.HasSuffix(label, "_") {
		t.Errorf("truncated label %q ends in underscore", label)
	}
}

func TestAlphabet(t *testing.T) {
	alpha := Alphabet()
	assert.Equal(t, 41, len(alpha), "expected alphabet to have 41 members")
	for _, r := range alpha {
		assert.True(t, InAlphabet(r))
	}
}

func TestSpecialMappings(t *testing.T) {
	if label, ok := Special(emoji.ZWJ); !ok || label != "_" {
		t.Errorf("expected ZWJ to map to '_', is %q", label)
	}
	if label, ok := Special(emoji.RegionalIndicatorA); !ok || label != "regional_indicator_a" {
		t.Errorf("expected U+1F1E6 to map to 'regional_indicator_a', is %q", label)
	}
	if label, ok := Special(emoji.RegionalIndicatorZ); !ok || label != "regional_indicator_z" {
		t.Errorf("expected U+1F1FF to map to 'regional_indicator_z', is %q", label)
	}
	if _, ok := Special(emoji.VS16); ok {
		t.Error("expected VS16 to have no special label")
	}
}

func TestRegistryUniqueness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	rg := NewRegistry()
	a := rg.Label([]rune{0x1F3C6}, "trophy")
	b := rg.Label([]rune{0x1F3C5}, "trophy") // same raw name, distinct sequence
	c := rg.Label([]rune{0x1F3C6}, "trophy") // same sequence again
	if a != "trophy" {
		t.Errorf("expected first claimant to keep bare label, has %q", a)
	}
	if b == a {
		t.Error("expected distinct sequences to receive distinct labels")
	}
	if b != "trophy_2" {
		t.Errorf("expected deterministic suffixing, have %q", b)
	}
	if c != a {
		t.Errorf("expected repeated lookup to be stable, have %q vs %q", c, a)
	}
	if rg.Collisions() != 1 {
		t.Errorf("expected 1 recorded collision, have %d", rg.Collisions())
	}
}

func TestRegistryPrefixSearch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	rg := NewRegistry()
	rg.Label([]rune{0x1F1E9, 0x1F1EA}, "flag: Germany")
	rg.Label([]rune{0x1F1EB, 0x1F1F7}, "flag: France")
	rg.Label([]rune{0x1F600}, "grinning face")
	flags := rg.WithPrefix("flag_")
	assert.Equal(t, []string{"flag_france", "flag_germany"}, flags)
}
