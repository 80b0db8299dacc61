package resources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font"
)

type resourceType int

// resource types
const (
	unknownResourceType resourceType = iota
	fontResourceType
	dataResourceType
)

// NotFound returns an application error for a missing resource.
func NotFound(res string, rtype resourceType) error {
	e := fmt.Errorf("resource missing: %v", res)
	var s string
	switch rtype {
	case fontResourceType:
		s = fmt.Sprintf("font not found: %s", res)
	case dataResourceType:
		s = fmt.Sprintf("emoji data not found: %s", res)
	default:
		s = fmt.Sprintf("resource not found: %s", res)
	}
	err := core.WrapError(e, core.EMISSING, s)
	return err
}

// --- Fonts -----------------------------------------------------------------

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

// FontPromise is the deferred result of ResolveFont.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
}

type fontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader fontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

// ResolveFont resolves a base font by file path or by font name.
// A name containing a path separator, or naming an existing file, is loaded
// from disk. Otherwise the name is searched among the installed system
// fonts. The empty name resolves to the packaged fallback font.
func ResolveFont(name string) FontPromise {
	ch := make(chan fontPlusErr)
	go func(ch chan<- fontPlusErr) {
		result := fontPlusErr{}
		switch {
		case name == "":
			tracer().Debugf("no font given, using fallback font")
			result.font = font.FallbackFont()
		case isFilepath(name):
			result.font, result.err = font.LoadOpenTypeFont(name)
		default:
			fpath, err := findfont.Find(name) // try to find as system font
			if err != nil || fpath == "" {
				result.err = NotFound(name, fontResourceType)
			} else {
				tracer().Debugf("%s is a system font", name)
				result.font, result.err = font.LoadOpenTypeFont(fpath)
			}
		}
		ch <- result
		close(ch)
	}(ch)
	return fontLoader{
		await: func(ctx context.Context) (*font.ScalableFont, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}

func isFilepath(name string) bool {
	if strings.ContainsAny(name, "/\\") {
		return true
	}
	_, err := os.Stat(name)
	return err == nil
}
