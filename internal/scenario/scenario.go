package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"factermio.ai/internal/sim/world"
	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

//go:embed schema/scenario.schema.json
var schemaJSON string

const schemaURL = "scenario.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Scenario is a starting layout plus a request script.
type Scenario struct {
	Name     string        `yaml:"name"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Cursor   *[2]int       `yaml:"cursor"`
	Segments []SegmentSpec `yaml:"segments"`
	Lines    []LineSpec    `yaml:"lines"`
	Script   []Batch       `yaml:"script"`
}

type SegmentSpec struct {
	Pos   [2]int `yaml:"pos"`
	Dir   string `yaml:"dir"`
	Token string `yaml:"token,omitempty"`
}

// LineSpec is a straight horizontal or vertical run, endpoints inclusive.
type LineSpec struct {
	From  [2]int `yaml:"from"`
	To    [2]int `yaml:"to"`
	Dir   string `yaml:"dir"`
	Token string `yaml:"token,omitempty"`
}

// Batch is delivered to the world just before step AtStep.
type Batch struct {
	AtStep   uint64          `yaml:"at_step"`
	Requests []world.Request `yaml:"requests"`
}

// Load reads a YAML (or JSON) scenario and validates it against the
// embedded schema before decoding.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

func Parse(raw []byte) (*Scenario, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// Round-trip through JSON so the validator sees JSON-typed values.
	jb, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// CursorOr returns the scenario cursor, or def when none is set.
func (s *Scenario) CursorOr(def world.Vec2i) world.Vec2i {
	if s.Cursor == nil {
		return def
	}
	return modelpkg.Vec2iFromArray(*s.Cursor)
}

// RequestsAt returns every request scheduled for step, in file order.
func (s *Scenario) RequestsAt(step uint64) []world.Request {
	var out []world.Request
	for _, b := range s.Script {
		if b.AtStep == step {
			out = append(out, b.Requests...)
		}
	}
	return out
}

// LastStep is the highest step any batch is scheduled for.
func (s *Scenario) LastStep() uint64 {
	var last uint64
	for _, b := range s.Script {
		if b.AtStep > last {
			last = b.AtStep
		}
	}
	return last
}

// Apply seeds w with the scenario layout. Overlapping or off-grid cells
// are configuration errors.
func (s *Scenario) Apply(w *world.World) error {
	if (s.Width != 0 && s.Width != w.Bounds().W) || (s.Height != 0 && s.Height != w.Bounds().H) {
		return fmt.Errorf("scenario %q is %dx%d, world is %dx%d", s.Name, s.Width, s.Height, w.Bounds().W, w.Bounds().H)
	}
	n := w.Network()
	for _, sp := range s.Segments {
		if err := place(n, modelpkg.Vec2iFromArray(sp.Pos), sp.Dir, sp.Token); err != nil {
			return err
		}
	}
	for _, ln := range s.Lines {
		cells, err := ln.cells()
		if err != nil {
			return err
		}
		for _, p := range cells {
			if err := place(n, p, ln.Dir, ln.Token); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ln LineSpec) cells() ([]world.Vec2i, error) {
	from, to := modelpkg.Vec2iFromArray(ln.From), modelpkg.Vec2iFromArray(ln.To)
	if from.X != to.X && from.Y != to.Y {
		return nil, fmt.Errorf("line %v-%v is not straight", ln.From, ln.To)
	}
	step := world.Vec2i{X: sign(to.X - from.X), Y: sign(to.Y - from.Y)}
	out := []world.Vec2i{from}
	for p := from; p != to; {
		p = p.Add(step)
		out = append(out, p)
	}
	return out, nil
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func place(n *world.Network, p world.Vec2i, dir, token string) error {
	d, err := modelpkg.ParseDirection(dir)
	if err != nil {
		return fmt.Errorf("segment %v: %w", p.ToArray(), err)
	}
	seg := world.Segment{Kind: world.KindConveyor, Dir: d}
	if token != "" {
		r, err := modelpkg.ParseResource(token)
		if err != nil {
			return fmt.Errorf("segment %v: %w", p.ToArray(), err)
		}
		seg.Token = &world.Token{Resource: r}
	}
	if !n.InsertIfAbsent(p, seg) {
		return fmt.Errorf("segment %v: cell occupied or off grid", p.ToArray())
	}
	return nil
}
