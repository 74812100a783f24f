package model

import (
	"fmt"
	"strings"
)

// Resource is the kind of material a token represents.
type Resource uint8

const (
	Coal Resource = iota
)

var resourceNames = [...]string{
	Coal: "COAL",
}

func (r Resource) String() string {
	if int(r) >= len(resourceNames) {
		return "?"
	}
	return resourceNames[r]
}

func ParseResource(s string) (Resource, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range resourceNames {
		if name == up {
			return Resource(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", s)
}

// BuildingKind tags what occupies a tile. Kind-specific data (initial
// direction, palette) lives in catalogs, keyed by kind.
type BuildingKind uint8

const (
	KindConveyor BuildingKind = iota
)

func (k BuildingKind) String() string {
	switch k {
	case KindConveyor:
		return "CONVEYOR"
	default:
		return "?"
	}
}

// Token is one unit of material carried by a segment.
type Token struct {
	Resource Resource
}

// Segment is a conveyor tile: a direction and at most one token.
type Segment struct {
	Kind  BuildingKind
	Dir   Direction
	Token *Token
}

func (s *Segment) Loaded() bool { return s != nil && s.Token != nil }

// Downstream is the cell s feeds into when it sits at pos. It may lie
// outside the grid; callers filter.
func (s Segment) Downstream(pos Vec2i) Vec2i { return pos.Step(s.Dir) }
