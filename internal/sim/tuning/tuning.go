package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`

	// TickIntervalMs is the minimum wall-clock spacing between propagation ticks.
	TickIntervalMs int `yaml:"tick_interval_ms"`
	// PollIntervalMs is how often the world loop polls the tick gate.
	PollIntervalMs int `yaml:"poll_interval_ms"`

	TickLog bool `yaml:"tick_log"`
	// TickLogIdle also logs polls where the gate was not due and nothing changed.
	TickLogIdle bool `yaml:"tick_log_idle"`

	InboxSize int `yaml:"inbox_size"`
}

func Defaults() Tuning {
	return Tuning{
		GridWidth:      80,
		GridHeight:     50,
		TickIntervalMs: 500,
		PollIntervalMs: 33,
		InboxSize:      256,
	}
}

// Load reads a tuning file on top of Defaults, so a partial file only
// overrides what it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.GridWidth <= 0 || t.GridHeight <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%d", t.GridWidth, t.GridHeight)
	}
	if t.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %d", t.TickIntervalMs)
	}
	if t.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", t.PollIntervalMs)
	}
	if t.InboxSize < 0 {
		return fmt.Errorf("inbox_size must not be negative, got %d", t.InboxSize)
	}
	return nil
}

func (t Tuning) TickInterval() time.Duration { return time.Duration(t.TickIntervalMs) * time.Millisecond }
func (t Tuning) PollInterval() time.Duration { return time.Duration(t.PollIntervalMs) * time.Millisecond }
