package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

func TestLoadRepoPalette(t *testing.T) {
	c, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Digest == "" {
		t.Fatalf("empty digest")
	}
	if got := c.InitialDir(modelpkg.KindConveyor); got != modelpkg.Down {
		t.Fatalf("InitialDir=%s, want DOWN", got)
	}
}

func TestLoadMissingFallsBackToDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Digest != Defaults().Digest {
		t.Fatalf("expected builtin palette")
	}
}

func TestLoadRejectsBadPalette(t *testing.T) {
	dir := t.TempDir()
	bad := `{"buildings":[{"kind":"CONVEYOR","initial_dir":"DOWN","fg":"#ffff00","bg":"#a9a9a9","glyphs":{"UP":"^"}}],"resources":[{"id":"COAL","glyph":"c","fg":"#000000"}]}`
	if err := os.WriteFile(filepath.Join(dir, "palette.json"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for missing glyphs")
	}
}

func TestHint(t *testing.T) {
	c := Defaults()
	cases := []struct {
		seg   modelpkg.Segment
		glyph rune
		fg    string
	}{
		{modelpkg.Segment{Dir: modelpkg.Up}, '^', "#ffff00"},
		{modelpkg.Segment{Dir: modelpkg.Down}, 'v', "#ffff00"},
		{modelpkg.Segment{Dir: modelpkg.Left}, '<', "#ffff00"},
		{modelpkg.Segment{Dir: modelpkg.Right}, '>', "#ffff00"},
		{modelpkg.Segment{Dir: modelpkg.Right, Token: &modelpkg.Token{Resource: modelpkg.Coal}}, 'c', "#000000"},
	}
	for _, tc := range cases {
		h := c.Hint(tc.seg)
		if h.Glyph != tc.glyph || h.FG.String() != tc.fg || h.BG.String() != "#a9a9a9" {
			t.Fatalf("Hint(%+v)=%q fg=%s bg=%s", tc.seg, h.Glyph, h.FG, h.BG)
		}
	}
}
