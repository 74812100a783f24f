package model

import "sort"

// Vec2i is a tile coordinate. Y grows downward (screen order).
type Vec2i struct {
	X int
	Y int
}

func (v Vec2i) ToArray() [2]int { return [2]int{v.X, v.Y} }

func (v Vec2i) Add(o Vec2i) Vec2i { return Vec2i{X: v.X + o.X, Y: v.Y + o.Y} }

// Step returns the neighbor of v one cell toward d.
func (v Vec2i) Step(d Direction) Vec2i { return v.Add(d.Delta()) }

func Vec2iFromArray(a [2]int) Vec2i { return Vec2i{X: a[0], Y: a[1]} }

// Bounds is the W x H grid rectangle anchored at the origin.
type Bounds struct {
	W int
	H int
}

func (b Bounds) Contains(p Vec2i) bool {
	return p.X >= 0 && p.X < b.W && p.Y >= 0 && p.Y < b.H
}

// Clamp pulls p inside the grid. Empty bounds clamp to the origin.
func (b Bounds) Clamp(p Vec2i) Vec2i {
	p.X = clampInt(p.X, 0, b.W-1)
	p.Y = clampInt(p.Y, 0, b.H-1)
	return p
}

// Index is the row-major cell index y*W + x. Only meaningful for contained points.
func (b Bounds) Index(p Vec2i) int { return p.Y*b.W + p.X }

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LessRowMajor orders by Y, then X.
func LessRowMajor(a, b Vec2i) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// SortRowMajor sorts ps in place by Y, then X and returns it.
func SortRowMajor(ps []Vec2i) []Vec2i {
	sort.Slice(ps, func(i, j int) bool { return LessRowMajor(ps[i], ps[j]) })
	return ps
}

// SortedPositions returns the keys of m in row-major order.
func SortedPositions[T any](m map[Vec2i]T) []Vec2i {
	if len(m) == 0 {
		return nil
	}
	out := make([]Vec2i, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	return SortRowMajor(out)
}
