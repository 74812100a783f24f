package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

// Catalogs holds the per-kind lookup tables. Kind-specific behavior is
// data here, not code in the world.
type Catalogs struct {
	Buildings map[modelpkg.BuildingKind]BuildingDef
	Resources map[modelpkg.Resource]ResourceDef

	Digest string
}

type BuildingDef struct {
	Kind       modelpkg.BuildingKind
	InitialDir modelpkg.Direction
	FG         modelpkg.Color
	BG         modelpkg.Color
	Glyphs     map[modelpkg.Direction]rune
}

type ResourceDef struct {
	Resource modelpkg.Resource
	Glyph    rune
	FG       modelpkg.Color
}

type paletteFile struct {
	Buildings []buildingJSON `json:"buildings"`
	Resources []resourceJSON `json:"resources"`
}

type buildingJSON struct {
	Kind       string            `json:"kind"`
	InitialDir string            `json:"initial_dir"`
	FG         string            `json:"fg"`
	BG         string            `json:"bg"`
	Glyphs     map[string]string `json:"glyphs"`
}

type resourceJSON struct {
	ID    string `json:"id"`
	Glyph string `json:"glyph"`
	FG    string `json:"fg"`
}

// defaultPalette matches the prototype's terminal colors.
const defaultPalette = `{
  "buildings": [
    {"kind": "CONVEYOR", "initial_dir": "DOWN", "fg": "#ffff00", "bg": "#a9a9a9",
     "glyphs": {"UP": "^", "DOWN": "v", "LEFT": "<", "RIGHT": ">"}}
  ],
  "resources": [
    {"id": "COAL", "glyph": "c", "fg": "#000000"}
  ]
}`

// Defaults returns the built-in palette.
func Defaults() *Catalogs {
	c, err := parse([]byte(defaultPalette))
	if err != nil {
		panic(fmt.Sprintf("catalogs: builtin palette: %v", err))
	}
	return c
}

// Load reads palette.json from configDir. A missing file falls back to
// the built-in palette.
func Load(configDir string) (*Catalogs, error) {
	raw, err := os.ReadFile(filepath.Join(configDir, "palette.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, err
	}
	c, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("palette.json: %w", err)
	}
	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func parse(raw []byte) (*Catalogs, error) {
	var f paletteFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	c := &Catalogs{
		Buildings: map[modelpkg.BuildingKind]BuildingDef{},
		Resources: map[modelpkg.Resource]ResourceDef{},
		Digest:    sha256Hex(raw),
	}
	for _, b := range f.Buildings {
		def, err := b.decode()
		if err != nil {
			return nil, err
		}
		if _, dup := c.Buildings[def.Kind]; dup {
			return nil, fmt.Errorf("duplicate building kind %s", def.Kind)
		}
		c.Buildings[def.Kind] = def
	}
	for _, r := range f.Resources {
		def, err := r.decode()
		if err != nil {
			return nil, err
		}
		if _, dup := c.Resources[def.Resource]; dup {
			return nil, fmt.Errorf("duplicate resource %s", def.Resource)
		}
		c.Resources[def.Resource] = def
	}
	if _, ok := c.Buildings[modelpkg.KindConveyor]; !ok {
		return nil, fmt.Errorf("missing CONVEYOR building")
	}
	if _, ok := c.Resources[modelpkg.Coal]; !ok {
		return nil, fmt.Errorf("missing COAL resource")
	}
	return c, nil
}

func (b buildingJSON) decode() (BuildingDef, error) {
	var def BuildingDef
	switch b.Kind {
	case "CONVEYOR":
		def.Kind = modelpkg.KindConveyor
	default:
		return def, fmt.Errorf("unknown building kind %q", b.Kind)
	}
	var err error
	if def.InitialDir, err = modelpkg.ParseDirection(b.InitialDir); err != nil {
		return def, fmt.Errorf("%s: %w", b.Kind, err)
	}
	if def.FG, err = modelpkg.ParseColor(b.FG); err != nil {
		return def, fmt.Errorf("%s fg: %w", b.Kind, err)
	}
	if def.BG, err = modelpkg.ParseColor(b.BG); err != nil {
		return def, fmt.Errorf("%s bg: %w", b.Kind, err)
	}
	def.Glyphs = map[modelpkg.Direction]rune{}
	for name, g := range b.Glyphs {
		d, err := modelpkg.ParseDirection(name)
		if err != nil {
			return def, fmt.Errorf("%s glyphs: %w", b.Kind, err)
		}
		r, err := singleRune(g)
		if err != nil {
			return def, fmt.Errorf("%s glyph %s: %w", b.Kind, name, err)
		}
		def.Glyphs[d] = r
	}
	for _, d := range []modelpkg.Direction{modelpkg.Up, modelpkg.Down, modelpkg.Left, modelpkg.Right} {
		if _, ok := def.Glyphs[d]; !ok {
			return def, fmt.Errorf("%s: missing glyph for %s", b.Kind, d)
		}
	}
	return def, nil
}

func (r resourceJSON) decode() (ResourceDef, error) {
	var def ResourceDef
	var err error
	if def.Resource, err = modelpkg.ParseResource(r.ID); err != nil {
		return def, err
	}
	if def.Glyph, err = singleRune(r.Glyph); err != nil {
		return def, fmt.Errorf("%s glyph: %w", r.ID, err)
	}
	if def.FG, err = modelpkg.ParseColor(r.FG); err != nil {
		return def, fmt.Errorf("%s fg: %w", r.ID, err)
	}
	return def, nil
}

func singleRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("want exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// InitialDir is the direction a freshly built kind faces.
func (c *Catalogs) InitialDir(kind modelpkg.BuildingKind) modelpkg.Direction {
	return c.Buildings[kind].InitialDir
}

// Hint derives what the renderer draws for s. A token overrides the
// directional glyph and foreground; the background stays the building's.
func (c *Catalogs) Hint(s modelpkg.Segment) modelpkg.Hint {
	b := c.Buildings[s.Kind]
	h := modelpkg.Hint{Glyph: b.Glyphs[s.Dir], FG: b.FG, BG: b.BG}
	if s.Token != nil {
		if r, ok := c.Resources[s.Token.Resource]; ok {
			h.Glyph = r.Glyph
			h.FG = r.FG
		}
	}
	return h
}
