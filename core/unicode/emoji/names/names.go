/*
Package names maps descriptive emoji names onto font-safe text labels.

Labels are restricted to the alphabet `#()*0-9a-z_`, i.e. the set of
characters the generated font carries glyphs for. A label never exceeds
MaxLabelLen runes; longer labels would compose into glyphs whose advance
width overflows the 16-bit glyph metrics of the font format.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package names

import (
	"strings"
	"unicode"

	"github.com/npillmayer/emojitext/core/unicode/emoji"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tracer traces with key 'emojitext.data'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.data")
}

// MaxLabelLen is the maximum length of a label in runes. Labels compose into
// glyphs of roughly 600 font units advance per character; 54 characters stay
// below the int16 ceiling of the glyph-width field.
const MaxLabelLen = 54

// InAlphabet returns true if r is a member of the label alphabet.
func InAlphabet(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '#' || r == '(' || r == ')' || r == '*' || r == '_':
		return true
	}
	return false
}

// Alphabet returns all members of the label alphabet, in code-point order.
func Alphabet() []rune {
	rs := make([]rune, 0, 41)
	rs = append(rs, '#', '(', ')', '*')
	for r := '0'; r <= '9'; r++ {
		rs = append(rs, r)
	}
	rs = append(rs, '_')
	for r := 'a'; r <= 'z'; r++ {
		rs = append(rs, r)
	}
	return rs
}

// foldDiacritics strips combining marks after canonical decomposition,
// mapping e.g. 'ñ' (piñata) onto 'n'.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize maps a raw descriptive name from the Unicode data file onto a
// snake_case label drawn from the label alphabet.
//
// Names with a `flag:` or `keycap:` annotation keep their suffix
// ("flag: Germany" becomes "flag_germany"); for any other annotation only
// the part before the colon survives ("water polo: person" becomes
// "water_polo"). The result is capped at MaxLabelLen runes and may be empty.
func Normalize(raw string) string {
	name := raw
	if prefix, suffix, found := strings.Cut(name, ":"); found {
		switch prefix {
		case "flag", "keycap":
			name = prefix + "_" + strings.TrimSpace(suffix)
		default:
			name = strings.TrimSpace(prefix)
		}
	}
	name = strings.ToLower(name)
	if folded, _, err := transform.String(foldDiacritics, name); err == nil {
		name = folded
	}
	var b strings.Builder
	pending := false // a run of foreign characters becomes a single '_'
	for _, r := range name {
		if !InAlphabet(r) {
			pending = b.Len() > 0
			continue
		}
		if r == '_' {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	label := b.String()
	if len(label) > MaxLabelLen {
		label = truncate(label, MaxLabelLen)
		tracer().Debugf("label for %q truncated to %q", raw, label)
	}
	return label
}

// truncate cuts a label down to limit runes, avoiding a dangling underscore.
// Labels are ASCII, so rune count equals byte count.
func truncate(label string, limit int) string {
	if len(label) <= limit {
		return label
	}
	return strings.TrimRight(label[:limit], "_")
}

// Special returns the hard-wired label for code-points which have no entry of
// their own in the data file but occur as sequence components.
func Special(r rune) (string, bool) {
	if r == emoji.ZWJ {
		return "_", true
	}
	if emoji.IsRegionalIndicator(r) {
		letter := byte(r-emoji.RegionalIndicatorA) + 'a'
		return "regional_indicator_" + string(letter), true
	}
	return "", false
}
