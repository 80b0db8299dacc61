package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/fontgen"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'emojitext.gen'
func tracer() tracing.Trace {
	return tracing.Select("emojitext.gen")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontsrc := flag.String("font", "", "Base font to copy glyphs from (path or system font name)")
	datasrc := flag.String("data", "", "emoji-test.txt to use (default: cache or download)")
	outdir := flag.String("out", ".", "Output directory")
	name := flag.String("name", fontgen.DefaultFontName, "Name of the generated font")
	version := flag.String("version", "1.0", "Version of the generated font")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"app-key":                   "emojitext",
		"tracing.adapter":           "go",
		"trace.emojitext.gen":       *tlevel,
		"trace.emojitext.fonts":     *tlevel,
		"trace.emojitext.data":      *tlevel,
		"trace.emojitext.resources": *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	pterm.Info.Println("Generating emoji-to-text font") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	report, err := fontgen.Generate(fontgen.Config{
		FontSource: *fontsrc,
		DataSource: *datasrc,
		OutputDir:  *outdir,
		FontName:   *name,
		Version:    *version,
	})
	if err != nil {
		pterm.Error.Println(core.UserMessage(err))
		os.Exit(2)
	}
	pterm.Printfln("%d emoji entries processed", report.Entries)
	pterm.Printfln("%d glyphs (%d single emoji, %d components, %d compositions)",
		report.Glyphs, report.Singles, report.Components, report.Compositions)
	if report.Collisions > 0 {
		pterm.Printfln("%d label collisions disambiguated", report.Collisions)
	}
	if report.Truncated > 0 {
		pterm.Printfln("%d over-long labels truncated", report.Truncated)
	}
	for _, path := range report.Files {
		pterm.Printfln("wrote %s", path)
	}
	pterm.Info.Println("Done")
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
