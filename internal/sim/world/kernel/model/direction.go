package model

import (
	"fmt"
	"strings"
)

type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionDeltas = [...]Vec2i{
	Up:    {X: 0, Y: -1},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

var directionNames = [...]string{
	Up:    "UP",
	Down:  "DOWN",
	Left:  "LEFT",
	Right: "RIGHT",
}

func (d Direction) Valid() bool { return int(d) < len(directionDeltas) }

// Delta is the unit vector for d; invalid directions map to the zero vector.
func (d Direction) Delta() Vec2i {
	if !d.Valid() {
		return Vec2i{}
	}
	return directionDeltas[d]
}

// Rotate turns d a quarter clockwise: UP -> RIGHT -> DOWN -> LEFT -> UP.
func (d Direction) Rotate() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	default:
		return Up
	}
}

func (d Direction) String() string {
	if !d.Valid() {
		return "?"
	}
	return directionNames[d]
}

func ParseDirection(s string) (Direction, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range directionNames {
		if name == up {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
