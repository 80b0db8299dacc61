/*
Package emoji reads Unicode emoji data, as published in the UTS #51 data
file `emoji-test.txt`.

The data file is line-oriented. Every non-comment line describes one emoji:
either a single code-point or a sequence of code-points (ZWJ sequences,
keycaps, flags, skin-tone modified emoji), together with a qualification
status and a descriptive name:

	1F600                     ; fully-qualified  # 😀 E1.0 grinning face
	1F3F4 E0067 … E007F       ; fully-qualified  # 🏴󠁧󠁢󠁥󠁮󠁧󠁿 E5.0 flag: England

Clients will usually call ParseTestFile and work with the resulting
sequence of entries, which preserves the ordering of the data file.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package emoji

import (
	"github.com/npillmayer/schuko/tracing"
	uaxemoji "github.com/npillmayer/uax/emoji"
)

// tracer traces with key 'emojitext.data'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.data")
}

// Code-points with a special role in emoji sequences.
const (
	ZWJ             rune = 0x200D  // zero width joiner
	VS16            rune = 0xFE0F  // variation selector-16, forces emoji style
	CombiningKeycap rune = 0x20E3  // combining enclosing keycap
	CancelTag       rune = 0xE007F // terminates tag sequences
)

// Regional indicator symbols A–Z; pairs of them form country flags.
const (
	RegionalIndicatorA rune = 0x1F1E6
	RegionalIndicatorZ rune = 0x1F1FF
)

// Tag Latin small letters, used in subdivision flag sequences.
const (
	TagLatinSmallA rune = 0xE0061
	TagLatinSmallZ rune = 0xE007A
)

// Skin-tone modifiers (Fitzpatrick scale).
const (
	SkinToneLight rune = 0x1F3FB
	SkinToneDark  rune = 0x1F3FF
)

// IsModifier returns true if r is a skin tone modifier.
func IsModifier(r rune) bool {
	return r >= SkinToneLight && r <= SkinToneDark
}

// IsRegionalIndicator returns true if r is a regional indicator symbol.
func IsRegionalIndicator(r rune) bool {
	return r >= RegionalIndicatorA && r <= RegionalIndicatorZ
}

// IsTag returns true if r belongs to the tag character block used in
// subdivision flags.
func IsTag(r rune) bool {
	return r >= TagLatinSmallA && r <= TagLatinSmallZ || r == CancelTag
}

// --- Qualification status --------------------------------------------------

// Status is the qualification status of a data file entry.
//
// A fully-qualified sequence carries every variation selector the standard
// mandates; minimally-qualified and unqualified variants are shorter spellings
// of the same emoji which occur in the wild. Component entries are sequence
// building blocks (modifiers, hair styles) which are not emoji by themselves.
type Status int8

const (
	Component Status = iota
	FullyQualified
	MinimallyQualified
	Unqualified
)

const statusNames = "component|fully-qualified|minimally-qualified|unqualified|"

var statusInx = [...]int{0, 10, 26, 46, 58}

func (s Status) String() string {
	if s >= Component && s <= Unqualified {
		return statusNames[statusInx[s] : statusInx[s+1]-1]
	}
	return "unknown"
}

// parseStatus maps the status field of a data file line onto a Status.
// ok is false for unrecognized field content.
func parseStatus(field string) (Status, bool) {
	switch field {
	case "component":
		return Component, true
	case "fully-qualified":
		return FullyQualified, true
	case "minimally-qualified":
		return MinimallyQualified, true
	case "unqualified":
		return Unqualified, true
	}
	return 0, false
}

// --- Entries ---------------------------------------------------------------

// Entry is one parsed line of the emoji data file. Entries are immutable
// once parsed.
type Entry struct {
	Sequence []rune // ordered code-point sequence
	Status   Status // qualification status
	Name     string // raw descriptive name, e.g. "grinning face"
	Version  string // Unicode emoji version tag, e.g. "E1.0"
	Group    string // group heading from the data file
	Subgroup string // subgroup heading from the data file
	Line     int    // source line number, for deterministic ordering
}

// IsSingle returns true for entries consisting of a single code-point.
func (e Entry) IsSingle() bool {
	return len(e.Sequence) == 1
}

// String returns the entry's sequence as a (displayable) string.
func (e Entry) String() string {
	return string(e.Sequence)
}

// --- Sequence taxonomy -----------------------------------------------------

// SequenceType indicates the kind of an emoji sequence.
type SequenceType int

const (
	SequenceSimple       SequenceType = iota // a single emoji code-point
	SequencePresentation                     // base character + VS16
	SequenceKeycap                           // keycap, e.g. '#' + VS16 + U+20E3
	SequenceFlag                             // two regional indicators
	SequenceTag                              // subdivision flag with tag characters
	SequenceModified                         // base emoji + skin tone modifier
	SequenceZWJ                              // code-points joined by ZWJ
)

const sequenceTypeNames = "Simple|Presentation|Keycap|Flag|Tag|Modified|ZWJ|"

var sequenceTypeInx = [...]int{0, 7, 20, 27, 32, 36, 45, 49}

func (t SequenceType) String() string {
	if t >= SequenceSimple && t <= SequenceZWJ {
		return sequenceTypeNames[sequenceTypeInx[t] : sequenceTypeInx[t+1]-1]
	}
	return "Unknown"
}

// Classify determines the type of an emoji code-point sequence.
// ZWJ takes precedence: any sequence containing a joiner is a ZWJ sequence,
// whatever its parts are.
func Classify(seq []rune) SequenceType {
	if len(seq) <= 1 {
		return SequenceSimple
	}
	for _, r := range seq {
		if r == ZWJ {
			return SequenceZWJ
		}
	}
	if seq[len(seq)-1] == CombiningKeycap {
		return SequenceKeycap
	}
	if len(seq) == 2 && IsRegionalIndicator(seq[0]) && IsRegionalIndicator(seq[1]) {
		return SequenceFlag
	}
	for _, r := range seq[1:] {
		if IsTag(r) {
			return SequenceTag
		}
	}
	for _, r := range seq[1:] {
		if IsModifier(r) {
			return SequenceModified
		}
	}
	return SequencePresentation
}

// IsPictographic returns true if r carries one of the UTS #51 emoji classes.
// Used as a sanity check on parsed data; see ParseTestFile.
func IsPictographic(r rune) bool {
	uaxemoji.SetupEmojisClasses()
	return uaxemoji.EmojisClassForRune(r) >= 0
}
