/*
Package fontgen generates a font which renders emoji as readable text names.

The generation is a one-shot batch transform: parse the Unicode emoji
inventory, derive a unique text label per emoji sequence, assemble a font
whose glyphs render those labels, and wire ligature substitution rules so
that a shaper replaces each emoji sequence with its label glyph. Outlines
for the label characters are copied from a base font.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontgen

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font"
	"github.com/npillmayer/emojitext/core/font/opentype/otbuild"
	"github.com/npillmayer/emojitext/core/font/opentype/otexport"
	"github.com/npillmayer/emojitext/core/locate/resources"
	"github.com/npillmayer/emojitext/core/unicode/emoji"
	"github.com/npillmayer/emojitext/core/unicode/emoji/names"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'emojitext.gen'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.gen")
}

// DefaultFontName is the name of the generated font family.
const DefaultFontName = "Emoji2Text"

// Config parametrizes a font generation run.
type Config struct {
	FontSource string // base font, as file path or system font name; empty selects the packaged fallback
	DataSource string // emoji data file; empty selects cache or download
	OutputDir  string // target directory for the generated font files
	FontName   string // font family name, defaults to DefaultFontName
	Version    string // font version, defaults to "1.0"
}

// Report summarizes a generation run.
type Report struct {
	Entries      int      // emoji entries parsed from the data file
	Singles      int      // glyphs for single code-point emoji
	Components   int      // extra glyphs created for sequence components
	Compositions int      // composition glyphs with substitution rules
	Truncated    int      // labels cut short by the glyph metrics ceiling
	Collisions   int      // labels needing numeric disambiguation
	Glyphs       int      // total glyph count of the generated font
	Files        []string // font files written
}

// Generate runs the full generation pipeline and writes the font in all
// distribution formats. Any error aborts the batch; partial output files
// may remain. Re-running with the same inputs overwrites them and yields
// byte-identical fonts.
func Generate(cfg Config) (*Report, error) {
	if cfg.FontName == "" {
		cfg.FontName = DefaultFontName
	}
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	base, err := resources.ResolveFont(cfg.FontSource).Font()
	if err != nil {
		return nil, err
	}
	datapath, err := resources.ResolveEmojiData(cfg.DataSource).Path()
	if err != nil {
		return nil, err
	}
	entries, err := emoji.LoadTestFile(datapath)
	if err != nil {
		return nil, err
	}
	tracer().Infof("generating %s from %d emoji entries, base font %s",
		cfg.FontName, len(entries), base.Fontname)
	builder, err := otbuild.NewBuilder(base)
	if err != nil {
		return nil, err
	}
	report := &Report{Entries: len(entries)}
	registry := names.NewRegistry()
	if err := copyBaseGlyphs(builder); err != nil {
		return nil, err
	}
	if err := createSingleGlyphs(builder, registry, entries, report); err != nil {
		return nil, err
	}
	if err := createComponentGlyphs(builder, registry, entries, report); err != nil {
		return nil, err
	}
	if err := createCompositions(builder, registry, entries, report); err != nil {
		return nil, err
	}
	builder.SetMetadata(metadata(cfg, base))
	report.Truncated = builder.TruncatedLabels()
	report.Collisions = registry.Collisions()
	report.Glyphs = builder.NumGlyphs()
	bin, err := builder.Build()
	if err != nil {
		return nil, err
	}
	report.Files, err = otexport.WriteAll(cfg.OutputDir, cfg.FontName, bin)
	if err != nil {
		return report, err
	}
	tracer().Infof("created %d single glyphs, %d compositions, %d truncated labels",
		report.Singles, report.Compositions, report.Truncated)
	return report, nil
}

// copyBaseGlyphs copies the glyphs of the label alphabet from the base font.
func copyBaseGlyphs(b *otbuild.Builder) error {
	for _, r := range names.Alphabet() {
		if _, err := b.CopyBaseGlyph(r); err != nil {
			return err
		}
	}
	return nil
}

// createSingleGlyphs creates a label glyph for every single code-point emoji
// and maps the code-point to it. Code-points already present in the font,
// i.e. the label alphabet itself, are skipped.
func createSingleGlyphs(b *otbuild.Builder, registry *names.Registry,
	entries []emoji.Entry, report *Report) error {
	//
	for _, entry := range entries {
		if !entry.IsSingle() {
			continue
		}
		r := entry.Sequence[0]
		label := registry.Label(entry.Sequence, entry.Name)
		if _, ok := b.GlyphFor(r); ok {
			continue
		}
		gid, err := b.TextGlyph(glyphName(r), label)
		if err != nil {
			return err
		}
		if err := b.MapRune(r, gid); err != nil {
			return err
		}
		report.Singles++
	}
	return nil
}

// createComponentGlyphs creates glyphs for code-points which occur inside
// multi-code-point sequences but have no glyph yet. The code-points are
// collected into an ordered set first; without it, the same glyph would be
// requested thousands of times (most notably the ZWJ), and iteration order
// would depend on map ordering.
//
// A component's label is the hard-wired special label if one exists, the
// label of its single-emoji entry otherwise, or empty: unmapped components
// get no visual representation but still need a glyph for substitution.
func createComponentGlyphs(b *otbuild.Builder, registry *names.Registry,
	entries []emoji.Entry, report *Report) error {
	//
	needed := treeset.NewWith(utils.Int32Comparator)
	for _, entry := range entries {
		if entry.IsSingle() {
			continue
		}
		for _, r := range entry.Sequence {
			needed.Add(int32(r))
		}
	}
	it := needed.Iterator()
	for it.Next() {
		r := rune(it.Value().(int32))
		if _, ok := b.GlyphFor(r); ok {
			continue
		}
		label, ok := names.Special(r)
		if !ok {
			label, _ = registry.Assigned([]rune{r})
		}
		gid, err := b.TextGlyph(glyphName(r), label)
		if err != nil {
			return err
		}
		if err := b.MapRune(r, gid); err != nil {
			return err
		}
		report.Components++
	}
	return nil
}

// createCompositions creates one composition glyph per multi-code-point
// entry and registers the substitution rule replacing the entry's glyph
// sequence with it. Entries whose glyph sequences coincide (qualification
// variants mapping onto identical glyphs) share a single composition.
func createCompositions(b *otbuild.Builder, registry *names.Registry,
	entries []emoji.Entry, report *Report) error {
	//
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsSingle() {
			continue
		}
		label := registry.Label(entry.Sequence, entry.Name)
		seq := make([]otbuild.GlyphID, len(entry.Sequence))
		key := ""
		for i, r := range entry.Sequence {
			gid, ok := b.GlyphFor(r)
			if !ok {
				return core.Error(core.EINTERNAL, "no glyph for sequence component %#U", r)
			}
			seq[i] = gid
			key += fmt.Sprintf("%d|", gid)
		}
		if seen[key] {
			tracer().Debugf("glyph sequence of %q coincides with earlier entry, skipped", entry.Name)
			continue
		}
		seen[key] = true
		comp, err := b.TextGlyph(fmt.Sprintf("comp_%04d", report.Compositions), label)
		if err != nil {
			return err
		}
		if err := b.AddLigature(seq, comp); err != nil {
			return err
		}
		report.Compositions++
	}
	return nil
}

func metadata(cfg Config, base *font.ScalableFont) otbuild.Metadata {
	fullname := cfg.FontName + " Regular"
	return otbuild.Metadata{
		FontName:  cfg.FontName,
		Family:    cfg.FontName,
		FullName:  fullname,
		Version:   cfg.Version,
		Copyright: "© 2025 yukidaruma. All rights reserved, with Reserved Font Name 'Emoji2Text'.",
		UniqueID: fmt.Sprintf("%s %s from %s %s", fullname, cfg.Version,
			base.Fontname, base.Version()),
		License:      "SIL Open Font License",
		LicenseURL:   "http://scripts.sil.org/OFL",
		Manufacturer: "Yuki.games",
		VendorURL:    "https://yuki.games",
	}
}

// glyphName builds a glyph name in the conventional uniXXXX form.
func glyphName(r rune) string {
	return fmt.Sprintf("uni%04X", r)
}
