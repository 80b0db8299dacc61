package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/emojitext/core/font"
	"github.com/npillmayer/schuko/testconfig"
)

func TestResolveFallbackFont(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	loader := ResolveFont("")
	f, err := loader.Font()
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.SFNT == nil {
		t.Fatal("expected fallback font, is nil")
	}
	if f.Fontname != font.FallbackFont().Fontname {
		t.Errorf("expected fallback font, have %s", f.Fontname)
	}
}

func TestResolveFontByPath(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	dir := t.TempDir()
	fpath := filepath.Join(dir, "base.ttf")
	if err := os.WriteFile(fpath, font.FallbackFont().Binary, 0644); err != nil {
		t.Fatal(err)
	}
	loader := ResolveFont(fpath)
	f, err := loader.Font()
	if err != nil {
		t.Fatal(err)
	}
	if f == nil {
		t.Fatal("font is nil, should not be")
	}
	if f.Filepath != fpath {
		t.Errorf("expected font loaded from %s, have %s", fpath, f.Filepath)
	}
}

func TestResolveMissingFont(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	loader := ResolveFont("no-such-font-anywhere")
	if _, err := loader.Font(); err == nil {
		t.Error("expected unresolvable font name to be an error")
	}
}

func TestResolveEmojiDataByPath(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	dir := t.TempDir()
	fpath := filepath.Join(dir, "emoji-test.txt")
	if err := os.WriteFile(fpath, []byte("# test data\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := ResolveEmojiData(fpath).Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != fpath {
		t.Errorf("expected path %s, have %s", fpath, p)
	}
	if _, err := ResolveEmojiData(filepath.Join(dir, "missing.txt")).Path(); err == nil {
		t.Error("expected missing data file to be an error")
	}
}

func TestCacheDirPath(t *testing.T) {
	teardown := testconfig.QuickConfig(t, map[string]string{
		"app-key": "emojitext-test",
	})
	defer teardown()
	//
	cachedir, err := CacheDirPath("unicode")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cachedir); err != nil {
		t.Errorf("expected cache dir %s to exist: %v", cachedir, err)
	}
}
