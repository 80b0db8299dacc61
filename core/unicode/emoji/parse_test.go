package emoji

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const sampleData = `# emoji-test.txt
# Date: 2024-08-14
# group: Smileys & Emotion
# subgroup: face-smiling
1F600                                                  ; fully-qualified     # 😀 E1.0 grinning face
263A FE0F                                              ; fully-qualified     # ☺️ E0.6 smiling face
263A                                                   ; unqualified         # ☺ E0.6 smiling face

# subgroup: keycaps
0023 FE0F 20E3                                         ; fully-qualified     # #️⃣ E0.6 keycap: #
0023 20E3                                              ; unqualified         # #⃣ E0.6 keycap: #

# group: People & Body
# subgroup: hand-fingers-open
1F44B 1F3FB                                            ; fully-qualified     # 👋🏻 E1.0 waving hand: light skin tone
1F3FB                                                  ; component           # 🏻 E1.0 light skin tone

# group: Flags
# subgroup: country-flag
1F1E9 1F1EA                                            ; fully-qualified     # 🇩🇪 E2.0 flag: Germany

# subgroup: subdivision-flag
1F3F4 E0067 E0062 E0073 E0063 E0074 E007F              ; fully-qualified     # 🏴󠁧󠁢󠁳󠁣󠁴󠁿 E5.0 flag: Scotland

# group: Odds & Ends
# the next three lines are malformed and must be skipped
1F600 fully-qualified grinning face
ZZZZ                                                   ; fully-qualified     # ? E1.0 bogus
1F600                                                  ; somewhat-qualified  # 😀 E1.0 grinning face
1F937 200D 2642                                        ; minimally-qualified # 🤷‍♂ E4.0 man shrugging
`

func TestParseTestFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	entries, err := ParseTestFile(strings.NewReader(sampleData))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries to be parsed, have %d", len(entries))
	}
	first := entries[0]
	if len(first.Sequence) != 1 || first.Sequence[0] != 0x1F600 {
		t.Errorf("expected first entry to be U+1F600, is %v", first.Sequence)
	}
	if first.Name != "grinning face" {
		t.Errorf("expected name 'grinning face', is %q", first.Name)
	}
	if first.Version != "E1.0" {
		t.Errorf("expected version tag 'E1.0', is %q", first.Version)
	}
	if first.Group != "Smileys & Emotion" || first.Subgroup != "face-smiling" {
		t.Errorf("group/subgroup not captured: %q / %q", first.Group, first.Subgroup)
	}
}

func TestParseQualificationVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	entries, err := ParseTestFile(strings.NewReader(sampleData))
	if err != nil {
		t.Fatal(err)
	}
	var fq, uq *Entry
	for i, e := range entries {
		if e.Name == "smiling face" {
			switch e.Status {
			case FullyQualified:
				fq = &entries[i]
			case Unqualified:
				uq = &entries[i]
			}
		}
	}
	if fq == nil || uq == nil {
		t.Fatal("expected both qualification variants of 'smiling face' to be captured")
	}
	if len(fq.Sequence) != 2 || fq.Sequence[1] != VS16 {
		t.Errorf("expected fully-qualified variant to carry VS16, is %v", fq.Sequence)
	}
	if len(uq.Sequence) != 1 {
		t.Errorf("expected unqualified variant to be a single code-point, is %v", uq.Sequence)
	}
}

func TestParsePreservesOrdering(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	entries, _ := ParseTestFile(strings.NewReader(sampleData))
	prev := 0
	for _, e := range entries {
		if e.Line <= prev {
			t.Fatalf("entry ordering does not follow source ordering at line %d", e.Line)
		}
		prev = e.Line
	}
}

func TestStatusStrings(t *testing.T) {
	if Component.String() != "component" {
		t.Errorf("expected status 0 to be 'component', is %s", Component)
	}
	if Unqualified.String() != "unqualified" {
		t.Errorf("expected status 3 to be 'unqualified', is %s", Unqualified)
	}
}

func TestClassify(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.data")
	defer teardown()
	//
	cases := []struct {
		seq []rune
		t   SequenceType
	}{
		{[]rune{0x1F600}, SequenceSimple},
		{[]rune{0x263A, VS16}, SequencePresentation},
		{[]rune{'#', VS16, CombiningKeycap}, SequenceKeycap},
		{[]rune{0x1F1E9, 0x1F1EA}, SequenceFlag},
		{[]rune{0x1F3F4, 0xE0067, 0xE0062, 0xE0073, 0xE0063, 0xE0074, CancelTag}, SequenceTag},
		{[]rune{0x1F44B, SkinToneLight}, SequenceModified},
		{[]rune{0x1F469, ZWJ, 0x2695, VS16}, SequenceZWJ},
		{[]rune{0x1F937, SkinToneDark, ZWJ, 0x2642, VS16}, SequenceZWJ},
	}
	for _, c := range cases {
		if have := Classify(c.seq); have != c.t {
			t.Errorf("expected %v to classify as %s, is %s", c.seq, c.t, have)
		}
	}
}

func TestSequenceTypeStrings(t *testing.T) {
	if SequenceSimple.String() != "Simple" {
		t.Errorf("expected sequence type 0 to be 'Simple', is %s", SequenceSimple)
	}
	if SequenceZWJ.String() != "ZWJ" {
		t.Errorf("expected last sequence type to be 'ZWJ', is %s", SequenceZWJ)
	}
}
