package otexport

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/npillmayer/emojitext/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestWriteAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	dir := t.TempDir()
	paths, err := WriteAll(dir, "testfont", font.FallbackFont().Binary)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 output files, have %d", len(paths))
	}
	for _, ext := range []string{".ttf", ".woff", ".woff2"} {
		path := filepath.Join(dir, "testfont"+ext)
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("expected %s to be non-empty", path)
		}
	}
}

func TestEncodeWOFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	sfnt := font.FallbackFont().Binary
	woff, err := EncodeWOFF(sfnt)
	if err != nil {
		t.Fatal(err)
	}
	if string(woff[0:4]) != "wOFF" {
		t.Fatalf("expected wOFF signature, have %q", woff[0:4])
	}
	if be32(woff[4:]) != be32(sfnt) {
		t.Error("flavor does not match wrapped sfnt")
	}
	if int(be32(woff[8:])) != len(woff) {
		t.Errorf("stated length %d, actual %d", be32(woff[8:]), len(woff))
	}
	numTables := int(be16(woff[12:]))
	if numTables != int(be16(sfnt[4:])) {
		t.Errorf("expected %d tables, have %d", be16(sfnt[4:]), numTables)
	}
	if len(woff) >= len(sfnt) {
		t.Errorf("expected compression to help, %d >= %d", len(woff), len(sfnt))
	}
	// round-trip the first table
	entry := woff[44:]
	offset, compLen, origLen := be32(entry[4:]), be32(entry[8:]), be32(entry[12:])
	data := woff[offset : offset+compLen]
	if compLen < origLen {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		if data, err = io.ReadAll(zr); err != nil {
			t.Fatal(err)
		}
	}
	if uint32(len(data)) != origLen {
		t.Errorf("expected table to decompress to %d bytes, have %d", origLen, len(data))
	}
}

func TestEncodeWOFF2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	sfnt := font.FallbackFont().Binary
	woff2, err := EncodeWOFF2(sfnt)
	if err != nil {
		t.Fatal(err)
	}
	if string(woff2[0:4]) != "wOF2" {
		t.Fatalf("expected wOF2 signature, have %q", woff2[0:4])
	}
	if int(be32(woff2[8:])) != len(woff2) {
		t.Errorf("stated length %d, actual %d", be32(woff2[8:]), len(woff2))
	}
	if len(woff2) >= len(sfnt) {
		t.Errorf("expected compression to help, %d >= %d", len(woff2), len(sfnt))
	}
	// the compressed stream is the trailing totalCompressedSize bytes
	compSize := int(be32(woff2[20:]))
	stream := woff2[len(woff2)-compSize:]
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(stream)))
	if err != nil {
		t.Fatalf("brotli stream does not decode: %v", err)
	}
	_, recs, err := sfntTables(sfnt)
	if err != nil {
		t.Fatal(err)
	}
	want := 0
	for _, rec := range recs {
		want += len(rec.data)
	}
	if len(plain) != want {
		t.Errorf("expected %d bytes of table data, have %d", want, len(plain))
	}
}

func TestUIntBase128(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "emojitext.fonts")
	defer teardown()
	//
	cases := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x00}},
		{16384, []byte{0x81, 0x80, 0x00}},
	}
	for _, c := range cases {
		var buf buffer
		uintBase128(&buf, c.v)
		if !bytes.Equal(buf.Bytes(), c.want) {
			t.Errorf("encoding of %d: expected % x, have % x", c.v, c.want, buf.Bytes())
		}
	}
}
